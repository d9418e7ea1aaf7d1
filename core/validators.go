package core

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	dateKeyTag   = "datekey"
	dateKeyText  = "must be a calendar date in YYYY-MM-DD format"
	dateKeyRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	rollNumberTag   = "rollnum"
	rollNumberText  = "only alphanumeric roll numbers are allowed"
	rollNumberRegex = regexp.MustCompile(`^[0-9A-Z]+$`)

	requiredTag  = "required"
	requiredText = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(dateKeyTag, dateKeyValidation)
	RegisterCustomTranslation(validate, translator, dateKeyTag, dateKeyText)

	_ = validate.RegisterValidation(rollNumberTag, rollNumberValidation)
	RegisterCustomTranslation(validate, translator, rollNumberTag, rollNumberText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// dateKeyValidation enforces the canonical storage date key: a timezone-naive
// UTC calendar date formatted YYYY-MM-DD.
func dateKeyValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if !dateKeyRegex.MatchString(val) {
		return false
	}
	_, err := time.Parse("2006-01-02", val)
	return err == nil
}

// rollNumberValidation only allows upper-case alphanumeric roll numbers.
func rollNumberValidation(fl validator.FieldLevel) bool {
	return rollNumberRegex.MatchString(fl.Field().String())
}

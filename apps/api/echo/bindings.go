package echoapi

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/classb/rollcall/core"
	"github.com/classb/rollcall/core/attendance"
)

type (
	ToggleRequest struct {
		RollNumber string `json:"roll_number" validate:"required,rollnum"`
	}

	StatusEntry struct {
		RollNumber string `json:"roll_number" validate:"required,rollnum"`
		Status     string `json:"status" validate:"required,oneof=present absent"`
	}

	CommitRequest struct {
		Entries []StatusEntry `json:"entries" validate:"required,min=1,dive"`
	}

	// DateRange selects the dates of an export; empty means every
	// committed date.
	DateRange struct {
		Dates []string
	}

	DateParam struct {
		Date string `param:"date" json:"date" validate:"required,datekey"`
	}

	CompareRequest struct {
		From string `query:"from" json:"from" validate:"required,datekey"`
		To   string `query:"to" json:"to" validate:"required,datekey"`
	}
)

func (tr *ToggleRequest) Validate(validate *validator.Validate) error {
	tr.RollNumber = strings.ToUpper(core.CleanString(tr.RollNumber))
	return validate.Struct(tr)
}

func (cr *CommitRequest) Validate(validate *validator.Validate) error {
	for i := range cr.Entries {
		cr.Entries[i].RollNumber = strings.ToUpper(core.CleanString(cr.Entries[i].RollNumber))
		cr.Entries[i].Status = core.CleanString(cr.Entries[i].Status, true /* lower */)
	}
	return validate.Struct(cr)
}

func (dr *DateRange) Bind(ctx echo.Context) error {
	raw := ctx.QueryParam("dates")
	if raw == "" {
		return nil
	}
	for _, date := range strings.Split(raw, ",") {
		date = strings.TrimSpace(date)
		if date == "" {
			continue
		}
		if _, err := attendance.ParseDateKey(date); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "dates", Error: "invalid date key " + strconv.Quote(date)})
		}
		dr.Dates = append(dr.Dates, date)
	}
	return nil
}

// bindDateParam validates the :date path parameter with the datekey tag.
func (api *attendanceApi) bindDateParam(ctx echo.Context) (string, error) {
	d := DateParam{Date: ctx.Param("date")}
	if err := api.validate.Struct(&d); err != nil {
		return "", err
	}
	return d.Date, nil
}

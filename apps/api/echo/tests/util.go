package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/classb/rollcall/apps/api/echo"
	"github.com/classb/rollcall/core"
	"github.com/classb/rollcall/core/attendance"
	emailsvc "github.com/classb/rollcall/services/email"
	sheetssvc "github.com/classb/rollcall/services/sheets"
	"github.com/classb/rollcall/storage/kv/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func testConfig() *core.Config {
	return &core.Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          "Rollcall",
		ClassName:        "III-I CSE-B",
		Department:       "Department of Computer Science & Engineering",
		ReportRecipients: []string{"hod@example.edu"},
		Sheets:           core.SheetsConfig{Timeout: 2 * time.Second},
	}
}

func setup(t *testing.T, conf *core.Config) (*Server, *inmem.KV) {
	t.Helper()

	kv := inmem.New()
	attSvc := attendance.NewService(kv, nopLogger{})
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	sheetsSvc := sheetssvc.NewService(conf, nopLogger{}, kv)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	return NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     nopLogger{},
			AttSvc:     attSvc,
			MailSvc:    mailSvc,
			SheetsSvc:  sheetsSvc,
			Validate:   validate,
			Translator: translator,
		},
	), kv
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

// commitDay PUTs a snapshot marking the given rolls absent; everyone else
// stays present.
func commitDay(t *testing.T, server *Server, date string, absentRolls ...string) {
	t.Helper()

	entries := make([]StatusEntry, 0, len(absentRolls))
	for _, roll := range absentRolls {
		entries = append(entries, StatusEntry{RollNumber: roll, Status: "absent"})
	}
	if len(entries) == 0 {
		entries = append(entries, StatusEntry{RollNumber: "237Z1A0572", Status: "present"})
	}

	req, rec := newRequest(http.MethodPut, "/v1/attendance/"+date, marchallObj(t, CommitRequest{Entries: entries}))
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("commitDay(%s) failed: code = %d, body = %s", date, rec.Code, rec.Body.String())
	}
}

package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classb/rollcall/core"
	"github.com/classb/rollcall/core/attendance"
	"github.com/classb/rollcall/core/report"
	sheetssvc "github.com/classb/rollcall/services/sheets"
)

const (
	defaultTrendDays = 7
	maxTrendDays     = 90
	defaultTopN      = 10

	csvContentType  = "text/csv"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type attendanceApi struct {
	conf       *core.Config
	svc        *attendance.Service
	mailSvc    core.EmailService
	sheetsSvc  *sheetssvc.Service
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
}

func registerAttendanceAPI(g *echo.Group, deps ServerDeps) {
	api := attendanceApi{
		conf:       deps.Conf,
		svc:        deps.AttSvc,
		mailSvc:    deps.MailSvc,
		sheetsSvc:  deps.SheetsSvc,
		logger:     deps.Logger,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	g.GET("/roster", api.roster)

	ag := g.Group("/attendance")
	ag.GET("", api.queryDates)
	ag.GET("/:date", api.day)
	ag.POST("/:date/toggle", api.toggle)
	ag.PUT("/:date", api.commit)

	sg := g.Group("/stats")
	sg.GET("/trend", api.trend)
	sg.GET("/absentees", api.absentees)
	sg.GET("/compare", api.compare)
	sg.GET("/:date", api.dayStats)

	eg := g.Group("/export")
	eg.GET("/csv", api.exportCSV)
	eg.GET("/xlsx", api.exportExcel)
	eg.GET("/html/:date", api.exportHTML)

	hg := g.Group("/handoff")
	hg.GET("/mailto/:date", api.mailtoHandoff)
	hg.GET("/whatsapp/:date", api.whatsappHandoff)

	g.POST("/notify/email/:date", api.emailReport)

	yg := g.Group("/sync/sheets")
	yg.GET("/backups", api.sheetsBackups)
	yg.GET("/backups/:date", api.sheetsBackup)
	yg.GET("/access", api.sheetsAccess)
	yg.POST("/:date", api.sheetsSync)
}

// Handlers

func (api *attendanceApi) roster(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Roster())
}

func (api *attendanceApi) queryDates(ctx echo.Context) error {
	dates, err := api.svc.CommittedDates()
	if err != nil {
		return errors.Wrap(err, "listing committed dates")
	}

	res := DatesResponse{Dates: dates}
	if last := api.svc.LastSent(); !last.IsZero() {
		res.LastSent = &last
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) day(ctx echo.Context) error {
	date, err := api.bindDateParam(ctx)
	if err != nil {
		return err
	}
	sess, err := api.svc.Day(date)
	if err != nil {
		return errors.Wrap(err, "loading day session")
	}

	kind := attendance.FilterKind(core.CleanString(ctx.QueryParam("filter"), true /* lower */))
	switch kind {
	case "", attendance.FilterAll, attendance.FilterPresent, attendance.FilterAbsent:
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "filter", Error: "must be one of: all, present, absent"})
	}

	entries := sess.Filter(ctx.QueryParam("q"), kind)
	return ctx.JSON(http.StatusOK, DayResponse{
		Date:    sess.DateKey,
		Entries: entries,
		Counts:  sess.Counts(),
	})
}

// toggle flips one student in the day's working copy and returns the
// resulting state. Nothing is persisted; the caller commits the full
// snapshot when done.
func (api *attendanceApi) toggle(ctx echo.Context) error {
	date, err := api.bindDateParam(ctx)
	if err != nil {
		return err
	}

	var data ToggleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ToggleRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.Day(date)
	if err != nil {
		return errors.Wrap(err, "loading day session")
	}
	if err := sess.Toggle(data.RollNumber); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, DayResponse{
		Date:    sess.DateKey,
		Entries: sess.Entries,
		Counts:  sess.Counts(),
	})
}

func (api *attendanceApi) commit(ctx echo.Context) error {
	date, err := api.bindDateParam(ctx)
	if err != nil {
		return err
	}

	var data CommitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CommitRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.Day(date)
	if err != nil {
		return errors.Wrap(err, "loading day session")
	}
	for _, entry := range data.Entries {
		if err := sess.SetStatus(entry.RollNumber, attendance.Status(entry.Status)); err != nil {
			return err
		}
	}

	if _, err := api.svc.Commit(sess); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, DayResponse{
		Date:    sess.DateKey,
		Entries: sess.Entries,
		Counts:  sess.Counts(),
	})
}

func (api *attendanceApi) dayStats(ctx echo.Context) error {
	date, err := api.bindDateParam(ctx)
	if err != nil {
		return err
	}
	sess, err := api.svc.Day(date)
	if err != nil {
		return errors.Wrap(err, "loading day session")
	}
	return ctx.JSON(http.StatusOK, DayStatsResponse{
		Date:        sess.DateKey,
		Counts:      sess.Counts(),
		AbsentRolls: sess.AbsentRolls(),
	})
}

func (api *attendanceApi) trend(ctx echo.Context) error {
	days := defaultTrendDays
	if raw := ctx.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTrendDays {
			return core.NewValidationError(nil, core.FieldError{
				Field: "days",
				Error: fmt.Sprintf("must be an integer between 1 and %d", maxTrendDays),
			})
		}
		days = n
	}

	end := time.Now()
	if raw := ctx.QueryParam("end"); raw != "" {
		t, err := attendance.ParseDateKey(raw)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "end", Error: "must be a calendar date in YYYY-MM-DD format"})
		}
		end = t
	}

	store, err := api.svc.LoadStore()
	if err != nil {
		return errors.Wrap(err, "loading history")
	}
	points := attendance.Trend(store, attendance.LastDateKeys(end, days))
	return ctx.JSON(http.StatusOK, TrendResponse{
		Points:             points,
		AverageRatePercent: attendance.AverageRate(points),
	})
}

func (api *attendanceApi) absentees(ctx echo.Context) error {
	topN := defaultTopN
	if raw := ctx.QueryParam("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return core.NewValidationError(nil, core.FieldError{Field: "top", Error: "must be a positive integer"})
		}
		topN = n
	}

	store, err := api.svc.LoadStore()
	if err != nil {
		return errors.Wrap(err, "loading history")
	}
	ranked := attendance.TopAbsentees(store, api.svc.Roster(), topN)
	return ctx.JSON(http.StatusOK, AbsenteesResponse{Absentees: ranked})
}

func (api *attendanceApi) compare(ctx echo.Context) error {
	var data CompareRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompareRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	from, to := data.From, data.To

	store, err := api.svc.LoadStore()
	if err != nil {
		return errors.Wrap(err, "loading history")
	}
	roster := api.svc.Roster()
	fromCounts := attendance.NewSession(from, roster, store).Counts()
	toCounts := attendance.NewSession(to, roster, store).Counts()

	return ctx.JSON(http.StatusOK, CompareResponse{
		From:  DayStatsResponse{Date: from, Counts: fromCounts},
		To:    DayStatsResponse{Date: to, Counts: toCounts},
		Delta: attendance.Compare(fromCounts, toCounts),
	})
}

func (api *attendanceApi) exportCSV(ctx echo.Context) error {
	store, dates, err := api.exportSelection(ctx)
	if err != nil {
		return err
	}

	data, err := report.CSV(store, api.svc.Roster(), dates)
	if err != nil {
		return errors.Wrap(err, "building csv export")
	}
	name := report.ArtifactName("attendance", "csv", time.Now())
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return ctx.Blob(http.StatusOK, csvContentType, data)
}

func (api *attendanceApi) exportExcel(ctx echo.Context) error {
	store, dates, err := api.exportSelection(ctx)
	if err != nil {
		return err
	}

	data, err := report.Excel(store, api.svc.Roster(), dates, time.Now())
	if err != nil {
		return errors.Wrap(err, "building workbook export")
	}
	name := report.ArtifactName("attendance", "xlsx", time.Now())
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return ctx.Blob(http.StatusOK, xlsxContentType, data)
}

// exportSelection resolves the ?dates= filter; no filter means the whole
// committed history, oldest first.
func (api *attendanceApi) exportSelection(ctx echo.Context) (attendance.Store, []string, error) {
	var rng DateRange
	if err := rng.Bind(ctx); err != nil {
		return nil, nil, err
	}

	store, err := api.svc.LoadStore()
	if err != nil {
		return nil, nil, errors.Wrap(err, "loading history")
	}

	dates := rng.Dates
	if len(dates) == 0 {
		committed := store.Dates()
		dates = make([]string, 0, len(committed))
		for i := len(committed) - 1; i >= 0; i-- {
			dates = append(dates, committed[i])
		}
	}
	return store, dates, nil
}

func (api *attendanceApi) exportHTML(ctx echo.Context) error {
	date, err := api.bindDateParam(ctx)
	if err != nil {
		return err
	}
	sess, err := api.svc.Day(date)
	if err != nil {
		return errors.Wrap(err, "loading day session")
	}

	data, err := report.HTML(sess, api.conf.ClassName, api.conf.Department, time.Now())
	if err != nil {
		return errors.Wrap(err, "rendering day report")
	}
	return ctx.HTMLBlob(http.StatusOK, data)
}

func (api *attendanceApi) mailtoHandoff(ctx echo.Context) error {
	date, err := api.bindDateParam(ctx)
	if err != nil {
		return err
	}
	sess, err := api.svc.Day(date)
	if err != nil {
		return errors.Wrap(err, "loading day session")
	}

	handoff := report.MailtoLink(
		api.conf.ReportRecipients,
		report.EmailSubject(api.conf.ClassName, sess.DateKey),
		report.EmailBody(sess, api.conf.ClassName),
	)
	api.markSent()
	return ctx.JSON(http.StatusOK, handoff)
}

func (api *attendanceApi) whatsappHandoff(ctx echo.Context) error {
	date, err := api.bindDateParam(ctx)
	if err != nil {
		return err
	}
	sess, err := api.svc.Day(date)
	if err != nil {
		return errors.Wrap(err, "loading day session")
	}

	handoff := report.WhatsAppLinks(report.Summary(sess, api.conf.ClassName, time.Now()))
	api.markSent()
	return ctx.JSON(http.StatusOK, handoff)
}

// markSent stamps the last-handoff moment; a failed stamp only degrades
// the reminder banner and is not worth failing the handoff for.
func (api *attendanceApi) markSent() {
	if err := api.svc.MarkSent(); err != nil {
		api.logger.Warn(fmt.Sprintf("marking report sent: %v", err), err)
	}
}

func (api *attendanceApi) emailReport(ctx echo.Context) error {
	date, err := api.bindDateParam(ctx)
	if err != nil {
		return err
	}
	if len(api.conf.ReportRecipients) == 0 {
		return core.NewValidationError(errors.New("no report recipients configured"))
	}

	sess, err := api.svc.Day(date)
	if err != nil {
		return errors.Wrap(err, "loading day session")
	}
	store, err := api.svc.LoadStore()
	if err != nil {
		return errors.Wrap(err, "loading history")
	}

	to := make([]mail.Address, 0, len(api.conf.ReportRecipients))
	for _, addr := range api.conf.ReportRecipients {
		to = append(to, mail.Address{Address: addr})
	}
	msg := &core.EmailMessage{
		To:           to,
		Subject:      report.EmailSubject(api.conf.ClassName, sess.DateKey),
		BodyStr:      report.EmailBody(sess, api.conf.ClassName),
		TemplateName: "attendance_report",
		TemplateData: emailReportData{
			PrettyDate: report.PrettyDate(sess.DateKey),
			Counts:     sess.Counts(),
			Absent:     sess.Absent(),
		},
	}

	csvData, err := report.CSV(store, api.svc.Roster(), []string{sess.DateKey})
	if err != nil {
		return errors.Wrap(err, "building csv attachment")
	}
	if err := msg.Attach(bytes.NewReader(csvData), report.ArtifactName("attendance", "csv", time.Now()), csvContentType); err != nil {
		return errors.Wrap(err, "attaching csv")
	}

	api.mailSvc.SendMessages(msg)
	api.markSent()
	return ctx.JSON(http.StatusAccepted, SuccessResponse{Success: "Attendance report email queued."})
}

// sheetsSync pushes a committed day to the spreadsheet webhook. The local
// commit always comes first; sync failure never rolls it back.
func (api *attendanceApi) sheetsSync(ctx echo.Context) error {
	date, err := api.bindDateParam(ctx)
	if err != nil {
		return err
	}

	store, err := api.svc.LoadStore()
	if err != nil {
		return errors.Wrap(err, "loading history")
	}
	if _, ok := store[date]; !ok {
		return errDateNotCommitted
	}

	sess := attendance.NewSession(date, api.svc.Roster(), store)
	payload := sheetssvc.BuildPayload(sess, time.Now())

	if err := api.sheetsSvc.SaveBackup(payload); err != nil {
		api.logger.Warn(fmt.Sprintf("saving sheets backup: %v", err), err)
	}
	if err := api.sheetsSvc.Dispatch(ctx.Request().Context(), payload); err != nil {
		return err
	}

	api.markSent()
	return ctx.JSON(http.StatusOK, SheetsSyncResponse{
		Dispatched:     true,
		DispatchID:     payload.DispatchID,
		SpreadsheetURL: api.sheetsSvc.SpreadsheetURL(),
	})
}

func (api *attendanceApi) sheetsBackups(ctx echo.Context) error {
	backups, err := api.sheetsSvc.Backups()
	if err != nil {
		return errors.Wrap(err, "listing sheets backups")
	}
	return ctx.JSON(http.StatusOK, backups)
}

func (api *attendanceApi) sheetsBackup(ctx echo.Context) error {
	date, err := api.bindDateParam(ctx)
	if err != nil {
		return err
	}
	payload, err := api.sheetsSvc.Backup(date)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyAbsent {
			return errHttpNotFound
		}
		return errors.Wrap(err, "loading sheets backup")
	}
	return ctx.JSON(http.StatusOK, payload)
}

func (api *attendanceApi) sheetsAccess(ctx echo.Context) error {
	ok, err := api.sheetsSvc.CheckAccess(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SheetsAccessResponse{
		Accessible:     ok,
		SpreadsheetURL: api.sheetsSvc.SpreadsheetURL(),
	})
}

type (
	DayResponse struct {
		Date    string               `json:"date"`
		Entries []attendance.Entry   `json:"entries"`
		Counts  attendance.DayCounts `json:"counts"`
	}

	DatesResponse struct {
		Dates    []attendance.DateInfo `json:"dates"`
		LastSent *time.Time            `json:"last_sent,omitempty"`
	}

	DayStatsResponse struct {
		Date        string               `json:"date"`
		Counts      attendance.DayCounts `json:"counts"`
		AbsentRolls []string             `json:"absent_rolls,omitempty"`
	}

	TrendResponse struct {
		Points             []attendance.TrendPoint `json:"points"`
		AverageRatePercent int                     `json:"average_rate_percent"`
	}

	AbsenteesResponse struct {
		Absentees []attendance.AbsenteeCount `json:"absentees"`
	}

	CompareResponse struct {
		From  DayStatsResponse      `json:"from"`
		To    DayStatsResponse      `json:"to"`
		Delta attendance.Comparison `json:"delta"`
	}

	SheetsSyncResponse struct {
		Dispatched     bool   `json:"dispatched"`
		DispatchID     string `json:"dispatch_id"`
		SpreadsheetURL string `json:"spreadsheet_url,omitempty"`
	}

	SheetsAccessResponse struct {
		Accessible     bool   `json:"accessible"`
		SpreadsheetURL string `json:"spreadsheet_url,omitempty"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	// emailReportData feeds the attendance_report email template.
	emailReportData struct {
		PrettyDate string
		Counts     attendance.DayCounts
		Absent     []attendance.Entry
	}
)

// Package sheetssvc is the remote-sync handoff: a best-effort POST of the
// day's summary to a spreadsheet-backed webhook. Success means "dispatched
// without a network-level error" — the response body is treated as opaque.
// Nothing here retries, and nothing here runs before the local commit.
package sheetssvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/classb/rollcall/core"
	"github.com/classb/rollcall/core/attendance"
)

var metadataHost = "https://sheets.googleapis.com/v4/spreadsheets"

var ErrNotConfigured = errors.New("sheets sync not configured")

// NetworkError reports a failed dispatch. It is non-fatal and never rolls
// back the already-committed local store.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("sheets dispatch: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

type (
	// DayReport is the summary row pushed to the "Reports" sheet.
	DayReport struct {
		Date                  string   `json:"date"`
		AbsentRollNumbers     []string `json:"absentRollNumbers"`
		TotalStudents         int      `json:"totalStudents"`
		PresentCount          int      `json:"presentCount"`
		AbsentCount           int      `json:"absentCount"`
		AttendanceRatePercent int      `json:"attendanceRatePercent"`
		Timestamp             string   `json:"timestamp"`
	}

	// StudentRow is the richer per-student variant for the "Attendance" sheet.
	StudentRow struct {
		Date        string `json:"date"`
		RollNumber  string `json:"rollNumber"`
		StudentName string `json:"studentName"`
		Status      string `json:"status"`
		Timestamp   string `json:"timestamp"`
	}

	// Payload is one dispatch unit.
	Payload struct {
		DispatchID string       `json:"dispatchId"`
		Report     DayReport    `json:"report"`
		Records    []StudentRow `json:"records,omitempty"`
	}

	Service struct {
		conf   core.SheetsConfig
		logger core.Logger
		kv     core.KV
		client *http.Client
	}
)

func NewService(conf *core.Config, logger core.Logger, kv core.KV) *Service {
	return &Service{
		conf:   conf.Sheets,
		logger: logger,
		kv:     kv,
		client: &http.Client{Timeout: conf.Sheets.Timeout},
	}
}

func (svc *Service) Configured() bool { return svc.conf.WebhookURL != "" }

// SpreadsheetURL returns the human URL of the configured spreadsheet,
// empty when not configured.
func (svc *Service) SpreadsheetURL() string {
	if svc.conf.SpreadsheetID == "" {
		return ""
	}
	return "https://docs.google.com/spreadsheets/d/" + svc.conf.SpreadsheetID + "/edit"
}

// CheckAccess probes the spreadsheet metadata read-only to verify the
// configured credentials. API keys cannot write; the probe only proves
// reachability.
func (svc *Service) CheckAccess(ctx context.Context) (bool, error) {
	if svc.conf.APIKey == "" || svc.conf.SpreadsheetID == "" {
		return false, ErrNotConfigured
	}
	url := fmt.Sprintf("%s/%s?key=%s", metadataHost, svc.conf.SpreadsheetID, svc.conf.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, errors.Wrap(err, "building access probe")
	}
	res, err := svc.client.Do(req)
	if err != nil {
		return false, &NetworkError{Err: err}
	}
	defer res.Body.Close()
	return res.StatusCode == http.StatusOK, nil
}

// BuildPayload derives the dispatch unit from a committed session snapshot.
// The snapshot is owned by the caller; the payload holds copies only, so an
// in-flight dispatch is immune to further toggling.
func BuildPayload(sess attendance.Session, now time.Time) Payload {
	counts := sess.Counts()
	stamp := now.UTC().Format(time.RFC3339)

	records := make([]StudentRow, 0, len(sess.Entries))
	for _, e := range sess.Entries {
		records = append(records, StudentRow{
			Date:        sess.DateKey,
			RollNumber:  e.RollNumber,
			StudentName: e.Name,
			Status:      e.Status.Label(),
			Timestamp:   stamp,
		})
	}

	return Payload{
		DispatchID: uuid.NewString(),
		Report: DayReport{
			Date:                  sess.DateKey,
			AbsentRollNumbers:     sess.AbsentRolls(),
			TotalStudents:         counts.Total,
			PresentCount:          counts.Present,
			AbsentCount:           counts.Absent,
			AttendanceRatePercent: counts.RatePercent,
			Timestamp:             stamp,
		},
		Records: records,
	}
}

// Dispatch POSTs the payload to the configured webhook. A non-2xx status is
// logged but still counts as dispatched (the endpoint may be opaque);
// only a network-level failure yields *NetworkError.
func (svc *Service) Dispatch(ctx context.Context, payload Payload) error {
	if !svc.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encoding sheets payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.conf.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building sheets request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := svc.client.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Warn(fmt.Sprintf("sheets webhook replied %d for dispatch %s", res.StatusCode, payload.DispatchID))
	}
	return nil
}

// SaveBackup stores the formatted payload locally so the rows can be
// entered manually if the webhook is down.
func (svc *Service) SaveBackup(payload Payload) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encoding sheets backup")
	}
	key := attendance.BackupKeyPrefix + payload.Report.Date
	if err := svc.kv.Set(key, string(blob)); err != nil {
		return errors.Wrapf(err, "saving sheets backup %q", key)
	}
	return nil
}

// Backup returns the saved payload for one date, core.ErrKeyAbsent when
// that date was never backed up.
func (svc *Service) Backup(dateKey string) (Payload, error) {
	blob, err := svc.kv.Get(attendance.BackupKeyPrefix + dateKey)
	if err != nil {
		return Payload{}, err
	}
	var p Payload
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return Payload{}, errors.Wrapf(err, "parsing sheets backup %q", dateKey)
	}
	return p, nil
}

// Backups lists saved payloads, newest date first.
func (svc *Service) Backups() ([]Payload, error) {
	keys, err := svc.kv.Keys(attendance.BackupKeyPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "listing sheets backups")
	}

	payloads := make([]Payload, 0, len(keys))
	for _, key := range keys {
		blob, err := svc.kv.Get(key)
		if err != nil {
			continue
		}
		var p Payload
		if err := json.Unmarshal([]byte(blob), &p); err != nil {
			svc.logger.Warn(fmt.Sprintf("skipping corrupt sheets backup %q: %v", key, err), err)
			continue
		}
		payloads = append(payloads, p)
	}
	sort.Slice(payloads, func(i, j int) bool { return payloads[i].Report.Date > payloads[j].Report.Date })
	return payloads, nil
}

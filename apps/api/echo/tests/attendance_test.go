package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/classb/rollcall/apps/api/echo"
	"github.com/classb/rollcall/core/attendance"
	sheetssvc "github.com/classb/rollcall/services/sheets"
)

func Test_attendanceApi_roster(t *testing.T) {
	server, _ := setup(t, testConfig())

	req, rec := newRequest(http.MethodGet, "/v1/roster")
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var roster []attendance.Student
	decodeBody(t, rec, &roster)
	assert.Len(t, roster, 65)
	assert.Equal(t, "237Z1A0572", roster[0].RollNumber)
	assert.Equal(t, "237Z1A05D9", roster[64].RollNumber)
}

func Test_attendanceApi_day(t *testing.T) {
	server, _ := setup(t, testConfig())

	t.Run("defaults to everyone present", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/attendance/2026-08-24")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res echoapi.DayResponse
		decodeBody(t, rec, &res)
		assert.Equal(t, "2026-08-24", res.Date)
		assert.Len(t, res.Entries, 65)
		assert.Equal(t, 65, res.Counts.Present)
		assert.Equal(t, 0, res.Counts.Absent)
	})

	t.Run("rejects malformed date keys", func(t *testing.T) {
		for _, date := range []string{"2026-13-45", "24-08-2026", "lol"} {
			req, rec := newRequest(http.MethodGet, "/v1/attendance/"+date)
			server.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, date)
		}

		// the translated field error names the expected format
		req, rec := newRequest(http.MethodGet, "/v1/attendance/lol")
		server.ServeHTTP(rec, req)
		var fields map[string]string
		decodeBody(t, rec, &fields)
		assert.Equal(t, "must be a calendar date in YYYY-MM-DD format", fields["date"])
	})

	t.Run("unreadable substrate is a server error", func(t *testing.T) {
		server, kv := setup(t, testConfig())
		kv.FailReads(true)

		req, rec := newRequest(http.MethodGet, "/v1/attendance/2026-08-24")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func Test_attendanceApi_toggle(t *testing.T) {
	server, _ := setup(t, testConfig())

	body := marchallObj(t, echoapi.ToggleRequest{RollNumber: "237Z1A0575"})
	req, rec := newRequest(http.MethodPost, "/v1/attendance/2026-08-24/toggle", body)
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res echoapi.DayResponse
	decodeBody(t, rec, &res)
	assert.Equal(t, 1, res.Counts.Absent)

	// nothing persisted until the snapshot is committed
	req, rec = newRequest(http.MethodGet, "/v1/attendance/2026-08-24")
	server.ServeHTTP(rec, req)
	decodeBody(t, rec, &res)
	assert.Equal(t, 0, res.Counts.Absent)

	t.Run("unknown student", func(t *testing.T) {
		body := marchallObj(t, echoapi.ToggleRequest{RollNumber: "237Z1A0580"}) // gap in the series
		req, rec := newRequest(http.MethodPost, "/v1/attendance/2026-08-24/toggle", body)
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid roll number", func(t *testing.T) {
		body := marchallObj(t, echoapi.ToggleRequest{RollNumber: "not a roll!"})
		req, rec := newRequest(http.MethodPost, "/v1/attendance/2026-08-24/toggle", body)
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_attendanceApi_commit(t *testing.T) {
	server, _ := setup(t, testConfig())

	commitDay(t, server, "2026-08-24", "237Z1A0575", "237Z1A0599")

	req, rec := newRequest(http.MethodGet, "/v1/attendance/2026-08-24")
	server.ServeHTTP(rec, req)
	var res echoapi.DayResponse
	decodeBody(t, rec, &res)
	assert.Equal(t, 2, res.Counts.Absent)
	assert.Equal(t, 63, res.Counts.Present)

	t.Run("committed date is listed", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/attendance")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var idx echoapi.DatesResponse
		decodeBody(t, rec, &idx)
		if assert.Len(t, idx.Dates, 1) {
			assert.Equal(t, "2026-08-24", idx.Dates[0].DateKey)
			assert.False(t, idx.Dates[0].LastModified.IsZero())
		}
	})

	t.Run("recommit replaces the day wholesale", func(t *testing.T) {
		commitDay(t, server, "2026-08-24", "237Z1A0591")

		req, rec := newRequest(http.MethodGet, "/v1/attendance/2026-08-24")
		server.ServeHTTP(rec, req)
		decodeBody(t, rec, &res)
		assert.Equal(t, 1, res.Counts.Absent)
	})

	t.Run("rejects an invalid status", func(t *testing.T) {
		body := []byte(`{"entries":[{"roll_number":"237Z1A0575","status":"sleeping"}]}`)
		req, rec := newRequest(http.MethodPut, "/v1/attendance/2026-08-24", body)
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_attendanceApi_filtering(t *testing.T) {
	server, _ := setup(t, testConfig())
	commitDay(t, server, "2026-08-24", "237Z1A0575")

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"filter=absent", "?filter=absent", 1},
		{"filter=present", "?filter=present", 64},
		{"filter=all", "?filter=all", 65},
		{"search by roll", "?q=237Z1A0575", 1},
		{"search misses", "?q=nobody", 0},
		{"search + filter", "?q=237Z1A0575&filter=present", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, "/v1/attendance/2026-08-24"+tt.query)
			server.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			var res echoapi.DayResponse
			decodeBody(t, rec, &res)
			assert.Len(t, res.Entries, tt.want)
		})
	}

	t.Run("unknown filter kind", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/attendance/2026-08-24?filter=tardy")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_attendanceApi_stats(t *testing.T) {
	server, _ := setup(t, testConfig())
	commitDay(t, server, "2026-08-23", "237Z1A0575", "237Z1A0599")
	commitDay(t, server, "2026-08-24", "237Z1A0575")

	t.Run("day stats", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/stats/2026-08-24")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res echoapi.DayStatsResponse
		decodeBody(t, rec, &res)
		assert.Equal(t, 98, res.Counts.RatePercent) // 64/65
		assert.Equal(t, []string{"237Z1A0575"}, res.AbsentRolls)
	})

	t.Run("trend fills missing dates with zero rows", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/stats/trend?days=3&end=2026-08-24")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res echoapi.TrendResponse
		decodeBody(t, rec, &res)
		if assert.Len(t, res.Points, 3) {
			assert.Equal(t, "2026-08-22", res.Points[0].DateKey)
			assert.Equal(t, 0, res.Points[0].Total)
			assert.Equal(t, 64, res.Points[2].Present)
		}
		assert.Equal(t, 98, res.AverageRatePercent) // mean of 97 and 98, rounded
	})

	t.Run("trend rejects a silly window", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/stats/trend?days=5000")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("top absentees", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/stats/absentees?top=1")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res echoapi.AbsenteesResponse
		decodeBody(t, rec, &res)
		if assert.Len(t, res.Absentees, 1) {
			assert.Equal(t, "237Z1A0575", res.Absentees[0].RollNumber)
			assert.Equal(t, 2, res.Absentees[0].Absences)
		}
	})

	t.Run("compare is second day minus first", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/stats/compare?from=2026-08-23&to=2026-08-24")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res echoapi.CompareResponse
		decodeBody(t, rec, &res)
		assert.Equal(t, 1, res.Delta.PresentDelta)
		assert.Equal(t, -1, res.Delta.AbsentDelta)
		assert.Equal(t, 1, res.Delta.RateDelta)
	})

	t.Run("compare requires both dates", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/stats/compare?from=2026-08-23")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var fields map[string]string
		decodeBody(t, rec, &fields)
		assert.Equal(t, "this field is required", fields["to"])
	})
}

func Test_attendanceApi_exports(t *testing.T) {
	server, _ := setup(t, testConfig())
	commitDay(t, server, "2026-08-24", "237Z1A0575")

	t.Run("csv", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/export/csv?dates=2026-08-24")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		assert.Len(t, lines, 1+65) // header + full roster
	})

	t.Run("csv defaults to the whole history", func(t *testing.T) {
		commitDay(t, server, "2026-08-23")

		req, rec := newRequest(http.MethodGet, "/v1/export/csv")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		assert.Len(t, lines, 1+2*65)
	})

	t.Run("csv rejects a bad date filter", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/export/csv?dates=yesterday")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("xlsx", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/export/xlsx?dates=2026-08-24")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "PK")) // zip container
	})

	t.Run("html day report", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/export/html/2026-08-24")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "III-I CSE-B")
		assert.Contains(t, rec.Body.String(), "237Z1A0575")
	})
}

func Test_attendanceApi_handoffs(t *testing.T) {
	server, kv := setup(t, testConfig())
	commitDay(t, server, "2026-08-24", "237Z1A0575")

	t.Run("whatsapp", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/handoff/whatsapp/2026-08-24")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res struct {
			AppURI string `json:"app_uri"`
			WebURL string `json:"web_url"`
			Body   string `json:"body"`
		}
		decodeBody(t, rec, &res)
		assert.True(t, strings.HasPrefix(res.AppURI, "whatsapp://send?text="))
		assert.True(t, strings.HasPrefix(res.WebURL, "https://web.whatsapp.com/send?text="))
		assert.Contains(t, res.Body, "III-I CSE-B Attendance Report")
		assert.Contains(t, res.Body, "237Z1A0575")
	})

	t.Run("mailto", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/handoff/mailto/2026-08-24")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res struct {
			AppURI string `json:"app_uri"`
		}
		decodeBody(t, rec, &res)
		assert.True(t, strings.HasPrefix(res.AppURI, "mailto:hod@example.edu?"))
	})

	t.Run("handoff stamps last sent", func(t *testing.T) {
		if _, err := kv.Get("last_attendance_sent"); err != nil {
			t.Errorf("last sent stamp missing: %v", err)
		}

		req, rec := newRequest(http.MethodGet, "/v1/attendance")
		server.ServeHTTP(rec, req)
		var idx echoapi.DatesResponse
		decodeBody(t, rec, &idx)
		assert.NotNil(t, idx.LastSent)
	})
}

func Test_attendanceApi_emailReport(t *testing.T) {
	server, _ := setup(t, testConfig())
	commitDay(t, server, "2026-08-24", "237Z1A0575")

	req, rec := newRequest(http.MethodPost, "/v1/notify/email/2026-08-24")
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	t.Run("requires configured recipients", func(t *testing.T) {
		conf := testConfig()
		conf.ReportRecipients = nil
		server, _ := setup(t, conf)

		req, rec := newRequest(http.MethodPost, "/v1/notify/email/2026-08-24")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_attendanceApi_sheetsSync(t *testing.T) {
	t.Run("requires a committed date", func(t *testing.T) {
		server, _ := setup(t, testConfig())

		req, rec := newRequest(http.MethodPost, "/v1/sync/sheets/2026-08-24")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("requires configuration", func(t *testing.T) {
		server, _ := setup(t, testConfig())
		commitDay(t, server, "2026-08-24", "237Z1A0575")

		req, rec := newRequest(http.MethodPost, "/v1/sync/sheets/2026-08-24")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, string(marchallObj(t, httpErr{Error: "sheets sync not configured"})), rec.Body.String())
	})

	t.Run("dispatches and backs up", func(t *testing.T) {
		var got sheetssvc.Payload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := json.Marshal(map[string]string{"status": "ok"})
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		}))
		defer srv.Close()

		conf := testConfig()
		conf.Sheets.WebhookURL = srv.URL
		server, kv := setup(t, conf)
		commitDay(t, server, "2026-08-24", "237Z1A0575")

		req, rec := newRequest(http.MethodPost, "/v1/sync/sheets/2026-08-24")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var res echoapi.SheetsSyncResponse
		decodeBody(t, rec, &res)
		assert.True(t, res.Dispatched)
		assert.NotEmpty(t, res.DispatchID)
		assert.Equal(t, "2026-08-24", got.Report.Date)
		assert.Equal(t, 1, got.Report.AbsentCount)

		// the manual-entry backup is saved regardless of the webhook outcome
		if _, err := kv.Get(attendance.BackupKeyPrefix + "2026-08-24"); err != nil {
			t.Errorf("sheets backup missing: %v", err)
		}

		t.Run("backups are listed", func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, "/v1/sync/sheets/backups")
			server.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			var backups []sheetssvc.Payload
			decodeBody(t, rec, &backups)
			assert.Len(t, backups, 1)
		})

		t.Run("backup detail", func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, "/v1/sync/sheets/backups/2026-08-24")
			server.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			var backup sheetssvc.Payload
			decodeBody(t, rec, &backup)
			assert.Equal(t, "2026-08-24", backup.Report.Date)
		})

		t.Run("backup detail for a date never synced", func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, "/v1/sync/sheets/backups/2026-01-01")
			server.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	})

	t.Run("network failure is a gateway error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close() // refuse connections

		conf := testConfig()
		conf.Sheets.WebhookURL = srv.URL
		server, _ := setup(t, conf)
		commitDay(t, server, "2026-08-24", "237Z1A0575")

		req, rec := newRequest(http.MethodPost, "/v1/sync/sheets/2026-08-24")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

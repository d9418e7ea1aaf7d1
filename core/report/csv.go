package report

import (
	"bytes"
	"encoding/csv"

	"github.com/pkg/errors"

	"github.com/classb/rollcall/core/attendance"
)

// CSV flattens the history into one row per student per selected date:
// Date, Roll Number, Student Name, Status. Every roster member appears for
// every selected date (uncommitted dates count everyone present), and no
// date is emitted twice.
func CSV(store attendance.Store, roster []attendance.Student, dates []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Date", "Roll Number", "Student Name", "Status"}); err != nil {
		return nil, errors.Wrap(err, "writing csv header")
	}

	seen := make(map[string]bool, len(dates))
	for _, date := range dates {
		if seen[date] {
			continue
		}
		seen[date] = true

		sess := attendance.NewSession(date, roster, store)
		for _, e := range sess.Entries {
			if err := w.Write([]string{date, e.RollNumber, e.Name, e.Status.Label()}); err != nil {
				return nil, errors.Wrap(err, "writing csv row")
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "flushing csv")
	}
	return buf.Bytes(), nil
}

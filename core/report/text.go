// Package report formats attendance snapshots into export and handoff
// payloads: plain text summaries, CSV/XLSX dumps, an HTML day report and
// mail/messaging deep links. Everything here is pure formatting; handing
// the payload to the outside world is the caller's business.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/classb/rollcall/core/attendance"
)

// PrettyDate renders a storage date key for humans, e.g.
// "Monday, August 24, 2026". Unparsable keys pass through untouched.
func PrettyDate(dateKey string) string {
	t, err := attendance.ParseDateKey(dateKey)
	if err != nil {
		return dateKey
	}
	return t.Format("Monday, January 2, 2006")
}

// Summary is the plain-text day report handed to messaging clients.
func Summary(sess attendance.Session, className string, now time.Time) string {
	counts := sess.Counts()
	absent := sess.AbsentRolls()

	var b strings.Builder
	fmt.Fprintf(&b, "%s Attendance Report\n", className)
	fmt.Fprintf(&b, "Date: %s\n", PrettyDate(sess.DateKey))
	fmt.Fprintf(&b, "Time: %s\n\n", now.Format("03:04 PM"))

	fmt.Fprintf(&b, "Absent Students (%d):\n", counts.Absent)
	if len(absent) > 0 {
		b.WriteString(strings.Join(absent, ", "))
	}
	b.WriteString("\n\n")

	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "Total Students: %d\n", counts.Total)
	fmt.Fprintf(&b, "Present: %d\n", counts.Present)
	fmt.Fprintf(&b, "Absent: %d", counts.Absent)
	return b.String()
}

// EmailSubject is the subject line of the day report email.
func EmailSubject(className, dateKey string) string {
	return fmt.Sprintf("%s Attendance - %s", className, PrettyDate(dateKey))
}

// EmailBody is the long-form day report used for mail handoff: absent
// students listed by roll and name, plus the counters.
func EmailBody(sess attendance.Session, className string) string {
	counts := sess.Counts()
	absent := sess.Absent()

	var b strings.Builder
	fmt.Fprintf(&b, "%s Attendance Report\n", className)
	fmt.Fprintf(&b, "Date: %s\n\n", PrettyDate(sess.DateKey))

	fmt.Fprintf(&b, "Absent Students (%d):\n", counts.Absent)
	for _, e := range absent {
		fmt.Fprintf(&b, "%s - %s\n", e.RollNumber, e.Name)
	}

	rolls := make([]string, 0, len(absent))
	for _, e := range absent {
		rolls = append(rolls, e.RollNumber)
	}
	fmt.Fprintf(&b, "\nRoll Numbers: %s\n\n", strings.Join(rolls, ", "))

	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "Total Students: %d\n", counts.Total)
	fmt.Fprintf(&b, "Present: %d\n", counts.Present)
	fmt.Fprintf(&b, "Absent: %d", counts.Absent)
	return b.String()
}

package report

import (
	"bytes"
	htmltmpl "html/template"
	"time"

	"github.com/pkg/errors"

	"github.com/classb/rollcall/core/attendance"
)

// dayReportTmpl is the structured description handed to the opaque
// rendering/export service (image or PDF): counters and the absent roster,
// nothing interactive.
var dayReportTmpl = htmltmpl.Must(htmltmpl.New("day_report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.ClassName}} Attendance</title></head>
<body style="max-width: 600px; margin: 0 auto; padding: 24px; font-family: Arial, sans-serif;">
  <div style="text-align: center; margin-bottom: 24px;">
    <h1>{{.ClassName}}</h1>
    <div>{{.Department}}</div>
    <div>{{.PrettyDate}}</div>
    <div>{{.Time}}</div>
  </div>
  <div style="border: 2px solid #fecaca; border-radius: 8px; padding: 16px;">
    <h2 style="text-align: center;">Absent Students ({{.Counts.Absent}})</h2>
    {{if .Absent}}
    <ul>
      {{range .Absent}}<li><strong>{{.RollNumber}}</strong> {{.Name}}</li>
      {{end}}
    </ul>
    <div><em>Roll Numbers:</em> {{.AbsentRolls}}</div>
    {{else}}
    <p style="text-align: center;">No absent students today! All students are present.</p>
    {{end}}
  </div>
  <div style="margin-top: 24px; text-align: center;">
    <p>Total Students: {{.Counts.Total}} | Present: {{.Counts.Present}} | Absent: {{.Counts.Absent}} | Rate: {{.Counts.RatePercent}}%</p>
  </div>
</body>
</html>
`))

type dayReportData struct {
	ClassName   string
	Department  string
	PrettyDate  string
	Time        string
	Counts      attendance.DayCounts
	Absent      []attendance.Entry
	AbsentRolls string
}

// HTML renders the day report document for the rendering service.
func HTML(sess attendance.Session, className, department string, now time.Time) ([]byte, error) {
	rolls := ""
	for i, roll := range sess.AbsentRolls() {
		if i > 0 {
			rolls += ", "
		}
		rolls += roll
	}

	var buf bytes.Buffer
	err := dayReportTmpl.Execute(&buf, dayReportData{
		ClassName:   className,
		Department:  department,
		PrettyDate:  PrettyDate(sess.DateKey),
		Time:        now.Format("3:04 PM"),
		Counts:      sess.Counts(),
		Absent:      sess.Absent(),
		AbsentRolls: rolls,
	})
	if err != nil {
		return nil, errors.Wrap(err, "rendering day report")
	}
	return buf.Bytes(), nil
}

package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/classb/rollcall/core/attendance"
)

// Excel builds the spreadsheet-style dump: an "Attendance" sheet with one
// row per student per selected date and a "Reports" sheet with one summary
// row per date plus an average-rate footer. The layout matches the rows the
// remote spreadsheet expects, so the file doubles as a manual-entry source.
func Excel(store attendance.Store, roster []attendance.Student, dates []string, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	stamp := now.UTC().Format(time.RFC3339)

	const attSheet = "Attendance"
	index, err := f.NewSheet(attSheet)
	if err != nil {
		return nil, errors.Wrap(err, "creating attendance sheet")
	}
	f.SetActiveSheet(index)

	headers := []string{"Date", "Roll Number", "Student Name", "Status", "Timestamp"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(attSheet, cell, header); err != nil {
			return nil, errors.Wrap(err, "writing attendance header")
		}
	}

	row := 2
	seen := make(map[string]bool, len(dates))
	summaries := make([]attendance.DayCounts, 0, len(dates))
	uniqDates := make([]string, 0, len(dates))
	for _, date := range dates {
		if seen[date] {
			continue
		}
		seen[date] = true
		uniqDates = append(uniqDates, date)

		sess := attendance.NewSession(date, roster, store)
		summaries = append(summaries, sess.Counts())
		for _, e := range sess.Entries {
			f.SetCellValue(attSheet, fmt.Sprintf("A%d", row), date)
			f.SetCellValue(attSheet, fmt.Sprintf("B%d", row), e.RollNumber)
			f.SetCellValue(attSheet, fmt.Sprintf("C%d", row), e.Name)
			f.SetCellValue(attSheet, fmt.Sprintf("D%d", row), e.Status.Label())
			f.SetCellValue(attSheet, fmt.Sprintf("E%d", row), stamp)
			row++
		}
	}

	const repSheet = "Reports"
	if _, err := f.NewSheet(repSheet); err != nil {
		return nil, errors.Wrap(err, "creating reports sheet")
	}
	repHeaders := []string{"Date", "Total Students", "Present", "Absent", "Attendance Rate (%)", "Timestamp"}
	for i, header := range repHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(repSheet, cell, header); err != nil {
			return nil, errors.Wrap(err, "writing reports header")
		}
	}
	for i, counts := range summaries {
		row := i + 2
		f.SetCellValue(repSheet, fmt.Sprintf("A%d", row), uniqDates[i])
		f.SetCellValue(repSheet, fmt.Sprintf("B%d", row), counts.Total)
		f.SetCellValue(repSheet, fmt.Sprintf("C%d", row), counts.Present)
		f.SetCellValue(repSheet, fmt.Sprintf("D%d", row), counts.Absent)
		f.SetCellValue(repSheet, fmt.Sprintf("E%d", row), counts.RatePercent)
		f.SetCellValue(repSheet, fmt.Sprintf("F%d", row), stamp)
	}

	// average-rate footer over the recorded dates
	points := attendance.Trend(store, uniqDates)
	footer := len(summaries) + 3
	f.SetCellValue(repSheet, fmt.Sprintf("A%d", footer), "Average Attendance Rate (%)")
	f.SetCellValue(repSheet, fmt.Sprintf("B%d", footer), attendance.AverageRate(points))

	// drop excelize's default sheet
	_ = f.DeleteSheet("Sheet1")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf.Bytes(), nil
}

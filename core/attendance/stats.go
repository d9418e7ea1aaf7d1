package attendance

import (
	"math"
	"sort"
)

// DayCounts are the derived counters for one day session.
type DayCounts struct {
	Present     int `json:"present"`
	Absent      int `json:"absent"`
	Total       int `json:"total"`
	RatePercent int `json:"rate_percent"`
}

// Counts derives present/absent counters and the rounded attendance rate.
// An empty session has rate 0, not a division error.
func (s Session) Counts() DayCounts {
	c := DayCounts{Total: len(s.Entries)}
	for _, e := range s.Entries {
		if e.Status == StatusAbsent {
			c.Absent++
		} else {
			c.Present++
		}
	}
	if c.Total > 0 {
		c.RatePercent = int(math.Round(float64(c.Present) / float64(c.Total) * 100))
	}
	return c
}

// TrendPoint is one date's counters within a trend window.
type TrendPoint struct {
	DateKey string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Total   int    `json:"total"`
}

// Trend derives per-date counters for the given dates, in the given order.
// Dates with no committed records yield an all-zero row; that is the
// documented policy, not a gap-fill guess.
func Trend(store Store, dates []string) []TrendPoint {
	points := make([]TrendPoint, 0, len(dates))
	for _, date := range dates {
		p := TrendPoint{DateKey: date}
		for _, rec := range store[date] {
			if rec.Status == StatusAbsent {
				p.Absent++
			} else {
				p.Present++
			}
		}
		p.Total = p.Present + p.Absent
		points = append(points, p)
	}
	return points
}

// AverageRate is the mean of the per-date attendance rates across points
// with at least one record, rounded. Zero when nothing was recorded.
func AverageRate(points []TrendPoint) int {
	var sum float64
	var n int
	for _, p := range points {
		if p.Total == 0 {
			continue
		}
		sum += float64(p.Present) / float64(p.Total) * 100
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

// AbsenteeCount ranks one student by accumulated absences.
type AbsenteeCount struct {
	RollNumber string `json:"roll_number"`
	Name       string `json:"name"`
	Absences   int    `json:"absences"`
}

// TopAbsentees ranks roster students by absences accumulated across the
// whole history, descending, truncated to topN. Order among equal counts is
// unspecified. Records for roll numbers no longer on the roster are ignored.
func TopAbsentees(store Store, roster []Student, topN int) []AbsenteeCount {
	names := make(map[string]string, len(roster))
	for _, s := range roster {
		names[s.RollNumber] = s.Name
	}

	counts := make(map[string]int)
	for _, recs := range store {
		for _, rec := range recs {
			if rec.Status != StatusAbsent {
				continue
			}
			if _, ok := names[rec.ID]; !ok {
				continue
			}
			counts[rec.ID]++
		}
	}

	ranked := make([]AbsenteeCount, 0, len(counts))
	for roll, n := range counts {
		ranked = append(ranked, AbsenteeCount{RollNumber: roll, Name: names[roll], Absences: n})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Absences > ranked[j].Absences })

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// Comparison is the delta between two days' counters, second minus first.
// Positive rate/present deltas mean improvement; a positive absent delta
// means more absences, i.e. worse.
type Comparison struct {
	RateDelta    int `json:"rate_delta"`
	PresentDelta int `json:"present_delta"`
	AbsentDelta  int `json:"absent_delta"`
}

func Compare(a, b DayCounts) Comparison {
	return Comparison{
		RateDelta:    b.RatePercent - a.RatePercent,
		PresentDelta: b.Present - a.Present,
		AbsentDelta:  b.Absent - a.Absent,
	}
}

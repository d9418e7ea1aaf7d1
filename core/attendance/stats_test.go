package attendance

import (
	"testing"
	"time"
)

func TestCounts(t *testing.T) {
	sess := NewSession("2026-08-24", Roster(), Store{})
	_ = sess.Toggle("237Z1A0572")
	_ = sess.Toggle("237Z1A0590")

	c := sess.Counts()
	if c.Total != rosterSize || c.Absent != 2 || c.Present != rosterSize-2 {
		t.Fatalf("counts = %+v", c)
	}
	if c.RatePercent < 0 || c.RatePercent > 100 {
		t.Fatalf("rate out of range: %d", c.RatePercent)
	}
	if c.RatePercent != 97 { // round(63/65*100)
		t.Errorf("rate = %d; want 97", c.RatePercent)
	}
}

func TestCountsEmptySession(t *testing.T) {
	c := Session{DateKey: "2026-08-24"}.Counts()
	if c.RatePercent != 0 || c.Total != 0 {
		t.Fatalf("empty session counts = %+v; want zeros", c)
	}
}

func TestCompareSignConvention(t *testing.T) {
	a := DayCounts{Present: 60, Absent: 40, Total: 100, RatePercent: 60}
	b := DayCounts{Present: 80, Absent: 20, Total: 100, RatePercent: 80}

	got := Compare(a, b)
	want := Comparison{RateDelta: 20, PresentDelta: 20, AbsentDelta: -20}
	if got != want {
		t.Fatalf("Compare() = %+v; want %+v", got, want)
	}
}

func TestTrendMissingDatesYieldZeroRows(t *testing.T) {
	store := Store{
		"2026-08-24": {
			{ID: "237Z1A0572", Status: StatusPresent},
			{ID: "237Z1A0573", Status: StatusAbsent},
		},
	}
	points := Trend(store, []string{"2026-08-23", "2026-08-24"})

	if len(points) != 2 {
		t.Fatalf("len = %d; want 2", len(points))
	}
	if p := points[0]; p.Present != 0 || p.Absent != 0 || p.Total != 0 {
		t.Errorf("missing date row = %+v; want zeros", p)
	}
	if p := points[1]; p.Present != 1 || p.Absent != 1 || p.Total != 2 {
		t.Errorf("recorded date row = %+v", p)
	}
}

func TestTopAbsentees(t *testing.T) {
	x, y := "237Z1A0572", "237Z1A0590"
	absentDay := func(ids ...string) []Record {
		recs := make([]Record, 0, len(ids))
		for _, id := range ids {
			recs = append(recs, Record{ID: id, Status: StatusAbsent})
		}
		return recs
	}
	store := Store{
		"2026-08-22": absentDay(x),
		"2026-08-23": absentDay(x, y),
		"2026-08-24": absentDay(x),
	}

	ranked := TopAbsentees(store, Roster(), 10)
	if len(ranked) != 2 {
		t.Fatalf("len = %d; want 2", len(ranked))
	}
	if ranked[0].RollNumber != x || ranked[0].Absences != 3 {
		t.Errorf("ranked[0] = %+v; want %s with 3", ranked[0], x)
	}
	if ranked[1].RollNumber != y || ranked[1].Absences != 1 {
		t.Errorf("ranked[1] = %+v; want %s with 1", ranked[1], y)
	}

	if got := TopAbsentees(store, Roster(), 1); len(got) != 1 {
		t.Errorf("topN=1 len = %d; want 1", len(got))
	}
}

func TestAverageRate(t *testing.T) {
	points := []TrendPoint{
		{DateKey: "2026-08-22", Present: 60, Absent: 40, Total: 100},
		{DateKey: "2026-08-23"}, // not recorded: excluded from the mean
		{DateKey: "2026-08-24", Present: 80, Absent: 20, Total: 100},
	}
	if got := AverageRate(points); got != 70 {
		t.Errorf("AverageRate() = %d; want 70", got)
	}
	if got := AverageRate(nil); got != 0 {
		t.Errorf("AverageRate(nil) = %d; want 0", got)
	}
}

func TestLastDateKeys(t *testing.T) {
	end := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	keys := LastDateKeys(end, 3)
	want := []string{"2026-08-22", "2026-08-23", "2026-08-24"}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %s; want %s", i, keys[i], want[i])
		}
	}
}

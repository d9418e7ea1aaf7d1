package attendance

import "testing"

func TestRoster(t *testing.T) {
	roster := Roster()

	if len(roster) != rosterSize {
		t.Fatalf("Roster() size = %d; want %d", len(roster), rosterSize)
	}

	seen := make(map[string]bool, len(roster))
	for _, s := range roster {
		if seen[s.RollNumber] {
			t.Errorf("duplicate roll number %s", s.RollNumber)
		}
		seen[s.RollNumber] = true
	}

	// real-world roster gaps
	for _, roll := range []string{"237Z1A0571", "237Z1A0580", "237Z1A0588", "237Z1A05A0"} {
		if seen[roll] {
			t.Errorf("roll number %s should not be enrolled", roll)
		}
	}

	if got := roster[0].RollNumber; got != "237Z1A0572" {
		t.Errorf("first roll = %s; want 237Z1A0572", got)
	}
	if got := roster[len(roster)-1].RollNumber; got != "237Z1A05D9" {
		t.Errorf("last roll = %s; want 237Z1A05D9", got)
	}
	if got := roster[3].Name; got != "KASABU NIKHIL GOUD" {
		t.Errorf("name for 237Z1A0575 = %q", got)
	}
}

func TestRosterStable(t *testing.T) {
	a, b := Roster(), Roster()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("roster not stable at position %d: %v != %v", i, a[i], b[i])
		}
	}
}

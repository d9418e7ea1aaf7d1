package attendance

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownStudent reports a toggle against a roll number outside the
// current roster. It is recoverable: the session is left untouched.
var ErrUnknownStudent = errors.New("student not on the roster")

// Entry is one student's in-memory state within a day session.
type Entry struct {
	Student
	Status Status `json:"status"`
}

// Session is the mutable working copy of one date's roster state. It is
// always fully populated: one entry per roster member, in roster order.
// Nothing is persisted until the session is committed.
type Session struct {
	DateKey string  `json:"date"`
	Entries []Entry `json:"entries"`
}

// NewSession merges the roster with whatever records the store holds for
// dateKey. Missing records default to present; records for roll numbers no
// longer on the roster are ignored.
func NewSession(dateKey string, roster []Student, store Store) Session {
	statuses := make(map[string]Status, len(store[dateKey]))
	for _, rec := range store[dateKey] {
		statuses[rec.ID] = rec.Status
	}

	entries := make([]Entry, 0, len(roster))
	for _, student := range roster {
		status := StatusPresent
		if st, ok := statuses[student.RollNumber]; ok {
			status = st
		}
		entries = append(entries, Entry{Student: student, Status: status})
	}
	return Session{DateKey: dateKey, Entries: entries}
}

// Toggle flips the status of the given student. Toggling twice restores the
// original state.
func (s *Session) Toggle(rollNumber string) error {
	for i := range s.Entries {
		if s.Entries[i].RollNumber == rollNumber {
			s.Entries[i].Status = s.Entries[i].Status.Toggled()
			return nil
		}
	}
	return errors.Wrap(ErrUnknownStudent, rollNumber)
}

// SetStatus pins a student's status, used when a caller submits a full
// snapshot rather than individual toggles.
func (s *Session) SetStatus(rollNumber string, status Status) error {
	for i := range s.Entries {
		if s.Entries[i].RollNumber == rollNumber {
			s.Entries[i].Status = status
			return nil
		}
	}
	return errors.Wrap(ErrUnknownStudent, rollNumber)
}

// Records returns the session as persistable records, in roster order.
func (s Session) Records() []Record {
	recs := make([]Record, 0, len(s.Entries))
	for _, e := range s.Entries {
		recs = append(recs, Record{ID: e.RollNumber, Status: e.Status})
	}
	return recs
}

// Absent returns the absent entries in roster order.
func (s Session) Absent() []Entry {
	var absent []Entry
	for _, e := range s.Entries {
		if e.Status == StatusAbsent {
			absent = append(absent, e)
		}
	}
	return absent
}

// AbsentRolls returns the absent roll numbers in roster order.
func (s Session) AbsentRolls() []string {
	var rolls []string
	for _, e := range s.Entries {
		if e.Status == StatusAbsent {
			rolls = append(rolls, e.RollNumber)
		}
	}
	return rolls
}

// FilterKind narrows a session view by status.
type FilterKind string

const (
	FilterAll     FilterKind = "all"
	FilterPresent FilterKind = "present"
	FilterAbsent  FilterKind = "absent"
)

// Filter returns the entries matching a case-insensitive name/roll search
// and a status filter. An empty query matches everything.
func (s Session) Filter(query string, kind FilterKind) []Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	matched := make([]Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Name), query) &&
			!strings.Contains(strings.ToLower(e.RollNumber), query) {
			continue
		}
		switch kind {
		case FilterPresent:
			if e.Status != StatusPresent {
				continue
			}
		case FilterAbsent:
			if e.Status != StatusAbsent {
				continue
			}
		}
		matched = append(matched, e)
	}
	return matched
}

package attendance

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/classb/rollcall/core"
)

// KV keys. The whole history lives under StoreKey as one JSON blob;
// the other keys hold auxiliary metadata next to it.
const (
	StoreKey           = "attendance_data"
	timestampKeyPrefix = "timestamp_"
	lastSentKey        = "last_attendance_sent"
	BackupKeyPrefix    = "attendance_backup_"
)

const dateKeyLayout = "2006-01-02"

// Status is a student's attendance state for one date.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

func (s Status) Toggled() Status {
	if s == StatusAbsent {
		return StatusPresent
	}
	return StatusAbsent
}

// Label returns the human form used in exports.
func (s Status) Label() string {
	if s == StatusAbsent {
		return "Absent"
	}
	return "Present"
}

// Record is one student's persisted state for one date.
type Record struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// Store is the full date-keyed attendance history: dateKey -> records in
// roster order. It is persisted wholesale as a single JSON value.
type Store map[string][]Record

// DateKey canonicalizes t to the storage date key: the UTC calendar date,
// formatted YYYY-MM-DD. Note that a caller in a non-UTC timezone toggling
// near local midnight lands on the UTC day, which may differ from their
// local one; record selection is the caller's responsibility.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateKeyLayout)
}

// ParseDateKey rejects anything that is not a canonical date key.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(dateKeyLayout, key)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date key %q", key)
	}
	return t, nil
}

// LastDateKeys returns the n consecutive date keys ending at `end`,
// oldest first. Used for trend windows.
func LastDateKeys(end time.Time, n int) []string {
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, DateKey(end.AddDate(0, 0, -i)))
	}
	return keys
}

// ParseStore deserializes a stored history blob. A corrupt blob yields an
// empty store and the parse error so the caller can log it; it is never
// fatal.
func ParseStore(blob string) (Store, error) {
	if blob == "" {
		return Store{}, nil
	}
	var store Store
	if err := json.Unmarshal([]byte(blob), &store); err != nil {
		return Store{}, errors.Wrap(err, "parsing attendance history")
	}
	if store == nil {
		store = Store{}
	}
	return store, nil
}

func (s Store) Serialize() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", errors.Wrap(err, "serializing attendance history")
	}
	return string(data), nil
}

// Dates returns the committed date keys, newest first.
func (s Store) Dates() []string {
	dates := make([]string, 0, len(s))
	for date := range s {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// PersistenceError reports a failed write to the KV substrate. The
// in-memory state the caller holds remains valid; the write may be retried.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting %q: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// DateInfo is one committed date with its last-modified stamp.
type DateInfo struct {
	DateKey      string    `json:"date"`
	LastModified time.Time `json:"last_modified,omitempty"`
}

// Service owns the persisted history: it loads the store from the KV
// substrate, commits day sessions back to it and maintains the auxiliary
// timestamp keys. All derivations over the store are pure functions in
// this package; Service is the only writer.
type Service struct {
	kv     core.KV
	roster []Student
	logger core.Logger
}

func NewService(kv core.KV, logger core.Logger) *Service {
	return &Service{kv: kv, roster: Roster(), logger: logger}
}

func (svc *Service) Roster() []Student { return svc.roster }

// LoadStore reads the full history. An absent key is an empty history; a
// corrupt blob is recovered as an empty history and logged, never surfaced.
// A substrate that fails the read itself serves no request at all, so that
// comes back as a shutdown error rather than a retryable one.
func (svc *Service) LoadStore() (Store, error) {
	blob, err := svc.kv.Get(StoreKey)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyAbsent {
			return Store{}, nil
		}
		return nil, core.NewShutdownError(fmt.Sprintf("reading attendance history: %v", err))
	}
	store, err := ParseStore(blob)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("recovering empty history: %v", err), err)
	}
	return store, nil
}

// Day loads the session for dateKey, merging stored records over the roster.
func (svc *Service) Day(dateKey string) (Session, error) {
	if _, err := ParseDateKey(dateKey); err != nil {
		return Session{}, err
	}
	store, err := svc.LoadStore()
	if err != nil {
		return Session{}, err
	}
	return NewSession(dateKey, svc.roster, store), nil
}

// Commit replaces the session's date in the store wholesale and persists the
// entire history, then stamps the date's last-modified key. A failed write
// returns *PersistenceError; nothing is partially applied from the caller's
// point of view since the store value is written in one Set.
func (svc *Service) Commit(session Session) (Store, error) {
	store, err := svc.LoadStore()
	if err != nil {
		return nil, err
	}
	store[session.DateKey] = session.Records()

	blob, err := store.Serialize()
	if err != nil {
		return nil, err
	}
	if err := svc.kv.Set(StoreKey, blob); err != nil {
		return nil, &PersistenceError{Key: StoreKey, Err: err}
	}

	// Best effort: the history write above is the commit; a failed stamp
	// only degrades the version listing.
	stamp := time.Now().UTC().Format(time.RFC3339)
	if err := svc.kv.Set(timestampKeyPrefix+session.DateKey, stamp); err != nil {
		svc.logger.Warn(fmt.Sprintf("stamping %s: %v", session.DateKey, err), err)
	}
	return store, nil
}

// CommittedDates lists committed dates with last-modified stamps, newest
// first.
func (svc *Service) CommittedDates() ([]DateInfo, error) {
	store, err := svc.LoadStore()
	if err != nil {
		return nil, err
	}
	infos := make([]DateInfo, 0, len(store))
	for _, date := range store.Dates() {
		info := DateInfo{DateKey: date}
		if stamp, err := svc.kv.Get(timestampKeyPrefix + date); err == nil {
			if t, perr := time.Parse(time.RFC3339, stamp); perr == nil {
				info.LastModified = t
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// MarkSent records the moment an attendance report was last handed off.
func (svc *Service) MarkSent() error {
	if err := svc.kv.Set(lastSentKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return &PersistenceError{Key: lastSentKey, Err: err}
	}
	return nil
}

// LastSent returns the last handoff moment, zero if never sent.
func (svc *Service) LastSent() time.Time {
	stamp, err := svc.kv.Get(lastSentKey)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

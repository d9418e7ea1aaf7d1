package core

import "errors"

// ErrKeyAbsent is returned by KV.Get when the key holds no value.
// An absent key is not a storage failure; callers fall back to defaults.
var ErrKeyAbsent = errors.New("key absent")

// KV is the persistence substrate: an origin-scoped string key-value store.
// The full attendance history lives under a single fixed key; auxiliary keys
// (timestamps, backups) live alongside it.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	// Keys returns all stored keys with the given prefix, in no particular order.
	Keys(prefix string) ([]string, error)
}

package file

import (
	"encoding/base32"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/classb/rollcall/core"
)

// KV persists each key as one file in a data directory. This is the
// durable local substrate: small, human-recoverable, no daemon.
type KV struct {
	dir string
}

var _ core.KV = (*KV)(nil)

// file names must survive any key; keys are base32-encoded without padding.
var enc = base32.StdEncoding.WithPadding(base32.NoPadding)

func New(dir string) (*KV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating data dir %s", dir)
	}
	return &KV{dir: dir}, nil
}

func (kv *KV) path(key string) string {
	return filepath.Join(kv.dir, enc.EncodeToString([]byte(key))+".kv")
}

func (kv *KV) Get(key string) (string, error) {
	data, err := os.ReadFile(kv.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", core.ErrKeyAbsent
		}
		return "", errors.Wrapf(err, "reading key %q", key)
	}
	return string(data), nil
}

func (kv *KV) Set(key, value string) error {
	// write-then-rename keeps a crashed write from corrupting the value
	path := kv.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return errors.Wrapf(err, "writing key %q", key)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "writing key %q", key)
	}
	return nil
}

func (kv *KV) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(kv.dir)
	if err != nil {
		return nil, errors.Wrap(err, "listing keys")
	}
	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".kv") {
			continue
		}
		raw, err := enc.DecodeString(strings.TrimSuffix(name, ".kv"))
		if err != nil {
			continue // foreign file in the data dir
		}
		if key := string(raw); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

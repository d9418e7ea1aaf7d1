package postgres

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/classb/rollcall/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

// KV stores each key as a row in a single kv table.
type KV struct {
	db *sqlx.DB
}

var _ core.KV = (*KV)(nil)

func New(conf *core.Config) (*KV, error) {
	db, err := sqlx.Connect("postgres", conf.Storage.PostgresDSN)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to postgres")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "ensuring kv table")
	}
	return &KV{db: db}, nil
}

func (kv *KV) Close() error { return kv.db.Close() }

func (kv *KV) Get(key string) (string, error) {
	var val string
	err := kv.db.Get(&val, "SELECT value FROM kv WHERE key = $1", key)
	if err == sql.ErrNoRows {
		return "", core.ErrKeyAbsent
	}
	if err != nil {
		return "", errors.Wrapf(err, "reading key %q", key)
	}
	return val, nil
}

func (kv *KV) Set(key, value string) error {
	_, err := kv.db.Exec(
		"INSERT INTO kv (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value",
		key, value,
	)
	if err != nil {
		return errors.Wrapf(err, "writing key %q", key)
	}
	return nil
}

func (kv *KV) Keys(prefix string) ([]string, error) {
	var keys []string
	err := kv.db.Select(&keys, "SELECT key FROM kv WHERE key LIKE $1 || '%'", prefix)
	if err != nil {
		return nil, errors.Wrap(err, "listing keys")
	}
	return keys, nil
}

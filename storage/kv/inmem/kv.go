package inmem

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/classb/rollcall/core"
)

// KV is a mutex-guarded in-memory substrate for tests and local dev.
type KV struct {
	mutex      sync.RWMutex
	table      map[string]string
	failReads  bool
	failWrites bool
}

var _ core.KV = (*KV)(nil)

func New() *KV {
	return &KV{table: make(map[string]string)}
}

// FailWrites makes every subsequent Set fail, simulating a full or
// disabled substrate.
func (kv *KV) FailWrites(fail bool) {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()
	kv.failWrites = fail
}

// FailReads makes every subsequent Get fail, simulating a substrate that
// stopped serving.
func (kv *KV) FailReads(fail bool) {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()
	kv.failReads = fail
}

func (kv *KV) Get(key string) (string, error) {
	kv.mutex.RLock()
	defer kv.mutex.RUnlock()

	if kv.failReads {
		return "", errors.New("storage disabled")
	}
	val, ok := kv.table[key]
	if !ok {
		return "", core.ErrKeyAbsent
	}
	return val, nil
}

func (kv *KV) Set(key, value string) error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if kv.failWrites {
		return errors.New("storage disabled")
	}
	kv.table[key] = value
	return nil
}

func (kv *KV) Keys(prefix string) ([]string, error) {
	kv.mutex.RLock()
	defer kv.mutex.RUnlock()

	var keys []string
	for key := range kv.table {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

package file

import (
	"testing"

	"github.com/classb/rollcall/core"
)

func TestFileKV(t *testing.T) {
	kv, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if _, err := kv.Get("missing"); err != core.ErrKeyAbsent {
		t.Errorf("Get(missing) err = %v; want ErrKeyAbsent", err)
	}

	if err := kv.Set("attendance_data", `{"2026-08-24":[]}`); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := kv.Set("timestamp_2026-08-24", "2026-08-24T10:00:00Z"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	val, err := kv.Get("attendance_data")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if val != `{"2026-08-24":[]}` {
		t.Errorf("Get() = %q", val)
	}

	// overwrite
	if err := kv.Set("attendance_data", "{}"); err != nil {
		t.Fatalf("Set() overwrite failed: %v", err)
	}
	if val, _ := kv.Get("attendance_data"); val != "{}" {
		t.Errorf("Get() after overwrite = %q", val)
	}

	keys, err := kv.Keys("timestamp_")
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "timestamp_2026-08-24" {
		t.Errorf("Keys(timestamp_) = %v", keys)
	}
}

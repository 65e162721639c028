package utils

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDBLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "mirror.sqlite")

	l, err := NewDBLock(dbPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(l.Path(), "mirror.sqlite.lock") {
		t.Fatalf("unexpected lock path %q", l.Path())
	}
	if err := l.Lock(); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	if err := l.Unlock(); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if err := l.Unlock(); err != nil {
		t.Fatalf("second unlock should be harmless, got %v", err)
	}
}

func TestGetAbsDBPathDefault(t *testing.T) {
	p, err := GetAbsDBPath("")
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if !strings.HasSuffix(p, filepath.Join(".config", "roomdesk", "roomdesk.sqlite")) {
		t.Fatalf("unexpected default path %q", p)
	}
}

func TestSetLogLevel(t *testing.T) {
	SetLogLevel("warn")
	if Log.GetLevel().String() != "warning" {
		t.Fatalf("expected warning level, got %s", Log.GetLevel())
	}
	SetLogLevel("info")
}

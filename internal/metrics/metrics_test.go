package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitializeMetrics(t *testing.T) {
	// Must be callable repeatedly without panicking.
	InitializeMetrics()
	InitializeMetrics()
}

type fakeProvider struct {
	count int64
	err   error
}

func (p *fakeProvider) Count() (int64, error) {
	return p.count, p.err
}

func TestCollectorCollect(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "metrics.sqlite")
	if err := os.WriteFile(dbPath, make([]byte, 4096), 0o600); err != nil {
		t.Fatalf("failed to create fake database file: %v", err)
	}

	c := NewCollector(&fakeProvider{count: 42}, dbPath, time.Minute)
	c.collect()

	// Gauges are write-only from here; the main goal is that collection
	// handles present and missing files without error.
	c2 := NewCollector(&fakeProvider{count: 0}, filepath.Join(dir, "missing.sqlite"), time.Minute)
	c2.collect()
}

func TestCollectorStartStop(t *testing.T) {
	c := NewCollector(&fakeProvider{count: 1}, "", 10*time.Millisecond)
	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()
}

func TestCollectorNilProvider(t *testing.T) {
	c := NewCollector(nil, "", time.Minute)
	c.collect() // must not panic
}

package store

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"writeq/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbc, err := database.NewContext(filepath.Join(t.TempDir(), "store.sqlite"))
	if err != nil {
		t.Fatalf("NewContext failed: %v", err)
	}

	s, err := New(testContext(t), dbc, 999)
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("store Close failed: %v", err)
		}
		if err := dbc.Close(); err != nil {
			t.Errorf("context Close failed: %v", err)
		}
	})
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("alpha", []byte("one")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(testContext(t), "alpha")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, []byte("one")) {
		t.Errorf("Get = %q, want %q", got, "one")
	}
}

func TestPutOverwrites(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("alpha", []byte("one")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put("alpha", []byte("two")); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, err := s.Get(testContext(t), "alpha")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, []byte("two")) {
		t.Errorf("Get = %q, want %q", got, "two")
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Get(testContext(t), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("doomed", []byte("x")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	removed, err := s.Delete("doomed")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !removed {
		t.Error("Delete(existing) = false, want true")
	}

	removed, err = s.Delete("doomed")
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if removed {
		t.Error("Delete(missing) = true, want false")
	}
}

func TestPutManyCommitsAtomically(t *testing.T) {
	s := newTestStore(t)

	// More records than one chunk holds (999/3 = 333 rows per statement),
	// so the chunking path is exercised inside a single transaction.
	const n = 700
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			Key:   fmt.Sprintf("bulk-%04d", i),
			Value: []byte(fmt.Sprintf("value-%d", i)),
		}
	}

	if err := s.PutMany(records); err != nil {
		t.Fatalf("PutMany failed: %v", err)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != n {
		t.Errorf("Count = %d, want %d", count, n)
	}
}

func TestPutManyEmpty(t *testing.T) {
	s := newTestStore(t)

	if err := s.PutMany(nil); err != nil {
		t.Errorf("PutMany(nil) = %v, want nil", err)
	}
}

func TestKeysWithPrefix(t *testing.T) {
	s := newTestStore(t)

	for _, key := range []string{"user:1", "user:2", "session:9", "user:3"} {
		if err := s.Put(key, []byte("v")); err != nil {
			t.Fatalf("Put(%s) failed: %v", key, err)
		}
	}

	tests := []struct {
		name     string
		prefix   string
		expected []string
	}{
		{
			name:     "user prefix",
			prefix:   "user:",
			expected: []string{"user:1", "user:2", "user:3"},
		},
		{
			name:     "session prefix",
			prefix:   "session:",
			expected: []string{"session:9"},
		},
		{
			name:     "empty prefix returns all",
			prefix:   "",
			expected: []string{"session:9", "user:1", "user:2", "user:3"},
		},
		{
			name:     "no match",
			prefix:   "other:",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Keys(testContext(t), tt.prefix)
			if err != nil {
				t.Fatalf("Keys failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Keys(%q) = %v, want %v", tt.prefix, got, tt.expected)
			}
		})
	}
}

func TestConcurrentPuts(t *testing.T) {
	s := newTestStore(t)

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Put(fmt.Sprintf("concurrent-%d", i), []byte("v"))
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Put failed: %v", err)
		}
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != writers {
		t.Errorf("Count = %d, want %d", count, writers)
	}
}

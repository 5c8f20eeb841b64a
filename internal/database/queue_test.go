package database

import (
	"sync"
	"testing"
	"time"
)

func TestFIFOOrdering(t *testing.T) {
	t.Parallel()

	q := newFIFO[int]()
	for i := 0; i < 10; i++ {
		q.push(i)
	}

	if got := q.len(); got != 10 {
		t.Errorf("len() = %d, want 10", got)
	}

	for i := 0; i < 10; i++ {
		item, ok := q.tryPop()
		if !ok {
			t.Fatalf("tryPop() empty at %d", i)
		}
		if item != i {
			t.Errorf("tryPop() = %d, want %d", item, i)
		}
	}

	if _, ok := q.tryPop(); ok {
		t.Error("tryPop() on empty queue returned an item")
	}
}

func TestFIFOPopTimesOut(t *testing.T) {
	t.Parallel()

	q := newFIFO[string]()

	start := time.Now()
	_, ok := q.pop(20 * time.Millisecond)
	if ok {
		t.Error("pop() on empty queue returned an item")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("pop() returned after %v, want at least 20ms", elapsed)
	}
}

func TestFIFOPopWakesOnPush(t *testing.T) {
	t.Parallel()

	q := newFIFO[string]()

	done := make(chan string, 1)
	go func() {
		if item, ok := q.pop(5 * time.Second); ok {
			done <- item
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.push("wake")

	select {
	case item := <-done:
		if item != "wake" {
			t.Errorf("pop() = %q, want %q", item, "wake")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pop() did not wake on push")
	}
}

func TestFIFOConcurrentProducers(t *testing.T) {
	t.Parallel()

	q := newFIFO[int]()
	const producers = 8
	const perProducer = 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.push(i)
			}
		}()
	}
	wg.Wait()

	count := 0
	for {
		if _, ok := q.tryPop(); !ok {
			break
		}
		count++
	}
	if count != producers*perProducer {
		t.Errorf("drained %d items, want %d", count, producers*perProducer)
	}
}

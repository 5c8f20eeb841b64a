package database

import "sync"

// SynchronousWriter adapts the asynchronous write API into a blocking call.
// Construct one per write, pass Callback() as the completion callback to
// QueueWrite, then call Succeeded() to block until the write has committed
// or failed. A failed write's error is returned on the calling goroutine.
//
// A writer is one-shot: Callback may be obtained once, and the captured
// error is returned once.
type SynchronousWriter struct {
	done chan struct{}

	mu           sync.Mutex
	gaveCallback bool
	err          error
}

// NewSynchronousWriter creates a writer ready for a single queued write.
func NewSynchronousWriter() *SynchronousWriter {
	return &SynchronousWriter{done: make(chan struct{})}
}

// Callback returns the completion callback to submit with the write.
// Calling it a second time on the same writer is a programming error and
// panics.
func (w *SynchronousWriter) Callback() CompletionFunc {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gaveCallback {
		panic("database: SynchronousWriter cannot be reused")
	}
	w.gaveCallback = true

	return func(err error) {
		w.mu.Lock()
		w.err = err
		w.mu.Unlock()
		close(w.done)
	}
}

// Succeeded blocks until the completion callback has fired. It returns nil
// if the write committed, or the captured write error. The error is cleared
// after being returned, so a second call returns nil.
func (w *SynchronousWriter) Succeeded() error {
	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()
	err := w.err
	w.err = nil
	return err
}

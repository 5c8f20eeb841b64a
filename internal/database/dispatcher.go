package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"writeq/internal/logging"
	"writeq/internal/metrics"
)

// ErrWritesDisabled is returned by Put and QueueWrite once Stop has been
// invoked. Callers are expected to have stopped submitting writes before
// shutting the dispatcher down; seeing this error indicates they have not.
var ErrWritesDisabled = errors.New("database: writes disabled, dispatcher is stopping")

// WriteFunc performs statements inside the shared write transaction.
// It must not commit or roll back the transaction itself. A WriteFunc may
// be invoked more than once: when a batched transaction rolls back, every
// member of the batch is replayed one at a time, so actions with side
// effects outside the transaction must tolerate re-execution.
type WriteFunc func(tx *sql.Tx) error

// CompletionFunc receives the outcome of a queued write: nil when the write
// committed, or the error that caused it to fail after retry isolation.
type CompletionFunc func(err error)

// WriteEntry pairs a write action with its optional completion callback.
type WriteEntry struct {
	Write    WriteFunc
	Complete CompletionFunc // may be nil
}

// completion is a callback ready for delivery, in commit order.
type completion struct {
	fn  CompletionFunc
	err error
}

const (
	// initialBatchSize bounds how many entries share one transaction until
	// the first multi-entry failure degrades the dispatcher permanently.
	initialBatchSize = 10

	writerPollInterval   = 100 * time.Millisecond
	callbackPollInterval = 200 * time.Millisecond
)

// WriteDispatcher owns the single write connection and the two worker
// goroutines: the writer, which batches queued entries into transactions,
// and the callback deliverer, which invokes completion callbacks off the
// write path. Construct it through NewContext; one dispatcher exists per
// DatabaseContext.
type WriteDispatcher struct {
	dbc  *DatabaseContext
	conn *sql.Conn // used exclusively by the writer goroutine

	writerQueue   *fifo[WriteEntry]
	callbackQueue *fifo[completion]

	writerStarted   chan struct{}
	writerDone      chan struct{}
	callbackStarted chan struct{}
	callbackDone    chan struct{}

	allowPuts     atomic.Bool
	exitWhenEmpty atomic.Bool
	stopped       atomic.Bool

	stopMu   sync.Mutex
	stopping bool
}

// newWriteDispatcher acquires the write connection and starts both worker
// goroutines.
func newWriteDispatcher(dbc *DatabaseContext) (*WriteDispatcher, error) {
	conn, err := dbc.AcquireConnection(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to acquire write connection: %w", err)
	}

	d := &WriteDispatcher{
		dbc:             dbc,
		conn:            conn,
		writerQueue:     newFIFO[WriteEntry](),
		callbackQueue:   newFIFO[completion](),
		writerStarted:   make(chan struct{}),
		writerDone:      make(chan struct{}),
		callbackStarted: make(chan struct{}),
		callbackDone:    make(chan struct{}),
	}
	d.allowPuts.Store(true)

	go d.writerLoop()
	go d.callbackLoop()
	return d, nil
}

// Put enqueues a write entry. It never blocks. Entries enqueued before Stop
// is called are committed in submission order; entries still queued when the
// dispatcher is stopped before dequeuing them are abandoned.
func (d *WriteDispatcher) Put(entry WriteEntry) error {
	if !d.allowPuts.Load() {
		return ErrWritesDisabled
	}
	d.writerQueue.push(entry)
	metrics.WriteQueueDepth.Set(float64(d.writerQueue.len()))
	return nil
}

// Stop disables further puts, drains both worker goroutines, releases the
// write connection and blocks until both goroutines have exited. A second
// call is a no-op that returns immediately.
func (d *WriteDispatcher) Stop() {
	d.stopMu.Lock()
	if d.stopping {
		d.stopMu.Unlock()
		return
	}
	d.stopping = true
	d.stopMu.Unlock()

	d.allowPuts.Store(false)
	d.exitWhenEmpty.Store(true)

	<-d.writerStarted
	<-d.writerDone
	if err := d.dbc.ReleaseConnection(d.conn); err != nil {
		logging.Error("Failed to release write connection: %v", err)
	}
	<-d.callbackStarted
	<-d.callbackDone

	d.stopped.Store(true)
}

// IsStopped reports whether both worker goroutines have exited and the
// write connection has been released.
func (d *WriteDispatcher) IsStopped() bool {
	return d.stopped.Load()
}

// Accepting reports whether Put still accepts new entries.
func (d *WriteDispatcher) Accepting() bool {
	return d.allowPuts.Load()
}

// writerLoop is the core batching algorithm. It gathers queued entries up to
// the current batch cap and applies them in one transaction. On failure of a
// multi-entry batch the cap drops to one for the rest of the dispatcher's
// life and the whole batch is replayed, in order, one entry at a time. The
// replay isolates the single faulty entry without discarding its batch-mates
// and without the dispatcher needing to know why the transaction failed.
func (d *WriteDispatcher) writerLoop() {
	defer close(d.writerDone)
	close(d.writerStarted)

	maxBatchSize := initialBatchSize
	var backlog []WriteEntry

	for {
		var batch []WriteEntry
		if len(backlog) > 0 {
			// Replaying a failed batch; cap is 1 by now.
			batch = []WriteEntry{backlog[0]}
			backlog = backlog[1:]
		} else {
			entry, ok := d.writerQueue.pop(writerPollInterval)
			if !ok {
				if d.exitWhenEmpty.Load() {
					return
				}
				continue
			}
			batch = []WriteEntry{entry}
		}

		// Gather the rest of the batch for this transaction.
		for len(batch) < maxBatchSize {
			entry, ok := d.writerQueue.tryPop()
			if !ok {
				break
			}
			batch = append(batch, entry)
		}
		metrics.WriteQueueDepth.Set(float64(d.writerQueue.len()))
		metrics.WriteBatchSize.Observe(float64(len(batch)))

		start := time.Now()
		err := d.runBatch(batch)
		duration := time.Since(start).Seconds()

		if err == nil {
			metrics.WriteTransactionDuration.WithLabelValues("commit").Observe(duration)
			metrics.WritesTotal.WithLabelValues("committed").Add(float64(len(batch)))
			for _, entry := range batch {
				if entry.Complete != nil {
					d.callbackQueue.push(completion{fn: entry.Complete})
				}
			}
			metrics.CallbackQueueDepth.Set(float64(d.callbackQueue.len()))
			if len(batch) > 1 {
				logging.Debug("Committed %d writes in one transaction", len(batch))
			}
			continue
		}

		metrics.WriteTransactionDuration.WithLabelValues("rollback").Observe(duration)
		logging.Error("Database write failure: %v", err)

		if len(batch) > 1 {
			// The transaction was rolled back; reapply the actions one by
			// one so only the faulty entry surfaces its error.
			logging.Debug("Retrying with batch size of 1")
			maxBatchSize = 1
			metrics.WriteBatchDegraded.Set(1)
			metrics.WriteRetriesTotal.Add(float64(len(batch)))
			backlog = append(backlog, batch...)
			continue
		}

		// Isolated failure. Surface it to the entry's callback, or discard
		// it for lack of any other option.
		metrics.WritesTotal.WithLabelValues("failed").Inc()
		if batch[0].Complete != nil {
			d.callbackQueue.push(completion{fn: batch[0].Complete, err: err})
			metrics.CallbackQueueDepth.Set(float64(d.callbackQueue.len()))
		}
	}
}

// runBatch applies one batch as a single explicit transaction on the write
// connection. Any error, including a panic inside a write action or a commit
// failure, leaves the database rolled back.
func (d *WriteDispatcher) runBatch(batch []WriteEntry) error {
	tx, err := d.conn.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, entry := range batch {
		if err := runWrite(tx, entry.Write); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error("Rollback failed after write error: %v", rbErr)
			}
			return err
		}
	}
	return tx.Commit()
}

// runWrite invokes a single write action, converting a panic into an error
// so one malformed action cannot take down the writer goroutine.
func runWrite(tx *sql.Tx, fn WriteFunc) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("write action panic: %v", p)
		}
	}()
	return fn(tx)
}

// callbackLoop delivers completion notifications in commit order. It only
// exits once the writer goroutine has exited and the callback queue is
// empty, so every committed or isolated write is guaranteed its single
// notification before Stop returns.
func (d *WriteDispatcher) callbackLoop() {
	defer close(d.callbackDone)
	close(d.callbackStarted)

	for {
		c, ok := d.callbackQueue.pop(callbackPollInterval)
		if !ok {
			if d.exitWhenEmpty.Load() && d.writerExited() {
				return
			}
			continue
		}
		metrics.CallbackQueueDepth.Set(float64(d.callbackQueue.len()))
		d.deliver(c)
	}
}

func (d *WriteDispatcher) writerExited() bool {
	select {
	case <-d.writerDone:
		return true
	default:
		return false
	}
}

// deliver invokes one callback, containing any panic it raises. Delivery is
// best-effort exactly-once invocation, not guaranteed-successful handling.
func (d *WriteDispatcher) deliver(c completion) {
	defer func() {
		if p := recover(); p != nil {
			metrics.CallbackErrorsTotal.Inc()
			logging.Error("Panic in completion callback: %v", p)
		}
	}()
	c.fn(c.err)
}

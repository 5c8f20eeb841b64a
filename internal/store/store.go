package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"writeq/internal/database"
	"writeq/internal/logging"
	"writeq/internal/metrics"
)

// ErrNotFound is returned by Get when no record exists for the key.
var ErrNotFound = errors.New("store: record not found")

// paramsPerRow is the number of bound parameters in one upserted row.
const paramsPerRow = 3

// Record is one key/value pair.
type Record struct {
	Key   string
	Value []byte
}

// Store is a keyed-record store whose mutations all flow through the
// database context's write queue.
type Store struct {
	dbc     *database.DatabaseContext
	maxRows int // rows per bulk statement, derived from the variable limit

	mu       sync.Mutex
	readConn *sql.Conn
}

// New creates the schema through the write queue and acquires the store's
// read connection. maxVars is the probed SQLITE_MAX_VARIABLE_NUMBER; pass
// the result of database.MaxSQLVariables.
func New(ctx context.Context, dbc *database.DatabaseContext, maxVars int) (*Store, error) {
	maxRows := maxVars / paramsPerRow
	if maxRows < 1 {
		maxRows = 1
	}

	s := &Store{
		dbc:     dbc,
		maxRows: maxRows,
	}

	w := database.NewSynchronousWriter()
	err := dbc.QueueWrite(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS records (
				key        TEXT PRIMARY KEY,
				value      BLOB NOT NULL,
				updated_at INTEGER NOT NULL
			)
		`)
		return err
	}, w.Callback())
	if err != nil {
		return nil, fmt.Errorf("failed to queue schema write: %w", err)
	}
	if err := w.Succeeded(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	conn, err := dbc.AcquireConnection(ctx)
	if err != nil {
		return nil, err
	}
	s.readConn = conn

	logging.Debug("Store ready, bulk chunk size %d rows", maxRows)
	return s, nil
}

// Close releases the store's read connection.
func (s *Store) Close() error {
	s.mu.Lock()
	conn := s.readConn
	s.readConn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	return s.dbc.ReleaseConnection(conn)
}

// Put upserts one record and blocks until its transaction has committed.
func (s *Store) Put(key string, value []byte) error {
	start := time.Now()
	var err error
	defer func() { recordOp("put", start, err) }()

	w := database.NewSynchronousWriter()
	err = s.dbc.QueueWrite(func(tx *sql.Tx) error {
		_, err := tx.Exec(upsertQuery(1), key, value, time.Now().Unix())
		return err
	}, w.Callback())
	if err != nil {
		return err
	}
	err = w.Succeeded()
	return err
}

// PutMany upserts all records in one queued write action, so they commit
// atomically. The statement is chunked to stay under the bound-parameter
// limit, but every chunk runs inside the same transaction.
func (s *Store) PutMany(records []Record) error {
	start := time.Now()
	var err error
	defer func() { recordOp("put_many", start, err) }()

	if len(records) == 0 {
		return nil
	}

	w := database.NewSynchronousWriter()
	err = s.dbc.QueueWrite(func(tx *sql.Tx) error {
		now := time.Now().Unix()
		for offset := 0; offset < len(records); offset += s.maxRows {
			end := offset + s.maxRows
			if end > len(records) {
				end = len(records)
			}
			chunk := records[offset:end]

			args := make([]any, 0, len(chunk)*paramsPerRow)
			for _, r := range chunk {
				args = append(args, r.Key, r.Value, now)
			}
			if _, err := tx.Exec(upsertQuery(len(chunk)), args...); err != nil {
				return err
			}
		}
		return nil
	}, w.Callback())
	if err != nil {
		return err
	}
	err = w.Succeeded()
	return err
}

// upsertQuery builds the n-row upsert statement.
func upsertQuery(n int) string {
	query := "INSERT INTO records (key, value, updated_at) VALUES "
	for i := 0; i < n; i++ {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
	}
	query += ` ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at`
	return query
}

// Get returns the value stored for key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	var err error
	defer func() { recordOp("get", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	var value []byte
	err = s.readConn.QueryRowContext(ctx,
		"SELECT value FROM records WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Delete removes the record for key, reporting whether a record existed.
func (s *Store) Delete(key string) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordOp("delete", start, err) }()

	var affected int64
	w := database.NewSynchronousWriter()
	err = s.dbc.QueueWrite(func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM records WHERE key = ?", key)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	}, w.Callback())
	if err != nil {
		return false, err
	}
	if err = w.Succeeded(); err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Keys returns all keys with the given prefix in ascending order. An empty
// prefix returns every key.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	var err error
	defer func() { recordOp("keys", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readConn.QueryContext(ctx,
		"SELECT key FROM records WHERE substr(key, 1, length(?)) = ? ORDER BY key",
		prefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Count returns the number of stored records.
func (s *Store) Count() (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordOp("count", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	err = s.readConn.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM records").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// recordOp records store operation metrics
func recordOp(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	metrics.StoreOperationDuration.WithLabelValues(operation).Observe(duration)
}

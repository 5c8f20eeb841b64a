package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"writeq/internal/metrics"
)

const (
	// MemoryPath opens a private in-memory database per connection.
	MemoryPath = ":memory:"

	// DatabaseExt is appended to file-backed database paths that lack it.
	DatabaseExt = ".sqlite"
)

// ErrConnectionNotAcquired is returned by ReleaseConnection when the given
// connection was never acquired from this context, or was already released.
var ErrConnectionNotAcquired = errors.New("database: connection was not acquired from this context")

// ConnectionsLeakedError is returned by Close when connections acquired from
// the context are still open. It indicates a resource leak in the caller,
// not a recoverable runtime condition.
type ConnectionsLeakedError struct {
	Open int
}

func (e *ConnectionsLeakedError) Error() string {
	return fmt.Sprintf("database: %d connection(s) still open at close", e.Open)
}

// DatabaseContext owns every connection to one SQLite database and the
// write dispatcher that serializes mutations against it. All writes go
// through QueueWrite; components that need their own (typically read)
// connection use AcquireConnection and must release it before Close.
type DatabaseContext struct {
	path string
	db   *sql.DB

	mu          sync.Mutex
	connections []*sql.Conn

	dispatcher *WriteDispatcher
}

// NewContext opens the database at path and starts the write dispatcher.
// A non-special path without the .sqlite extension gets it appended.
// Connections are opened with referential integrity enforced and run in
// autocommit mode, so transaction boundaries are always explicit.
func NewContext(path string) (*DatabaseContext, error) {
	if !IsSpecialPath(path) && !strings.HasSuffix(path, DatabaseExt) {
		path += DatabaseExt
	}

	db, err := sql.Open("sqlite3", connectionString(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	c := &DatabaseContext{
		path: path,
		db:   db,
	}

	dispatcher, err := newWriteDispatcher(c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	c.dispatcher = dispatcher
	return c, nil
}

// connectionString builds the driver DSN, enabling foreign key enforcement
// and a busy timeout on every connection.
func connectionString(path string) string {
	options := "_foreign_keys=on&_busy_timeout=5000"
	if strings.Contains(path, "?") {
		return path + "&" + options
	}
	return path + "?" + options
}

// IsSpecialPath reports whether path bypasses filename normalization: the
// private in-memory marker, or a shared in-memory URI such as
// "file:name?mode=memory&cache=shared".
func IsSpecialPath(path string) bool {
	// Each connection has a private database.
	if path == MemoryPath {
		return true
	}
	// Shared in-memory database addressable from multiple connections.
	if strings.HasPrefix(path, "file:") && strings.Contains(path, "mode=memory") {
		return true
	}
	return false
}

// SharedMemoryURI builds the canonical URI for a named shared in-memory
// database. The instance survives as long as any connection to it is open.
func SharedMemoryURI(uniqueName string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", uniqueName)
}

// Path returns the resolved database path.
func (c *DatabaseContext) Path() string {
	return c.path
}

// AcquireConnection opens a new dedicated connection, registers it and
// returns it. No upper bound on live connections is enforced here.
func (c *DatabaseContext) AcquireConnection(ctx context.Context) (*sql.Conn, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	c.mu.Lock()
	c.connections = append(c.connections, conn)
	open := len(c.connections)
	c.mu.Unlock()

	metrics.DBConnectionsOpen.Set(float64(open))
	return conn, nil
}

// ReleaseConnection removes conn from the connection set and closes it.
func (c *DatabaseContext) ReleaseConnection(conn *sql.Conn) error {
	c.mu.Lock()
	idx := slices.Index(c.connections, conn)
	if idx < 0 {
		c.mu.Unlock()
		return ErrConnectionNotAcquired
	}
	c.connections = slices.Delete(c.connections, idx, idx+1)
	open := len(c.connections)
	c.mu.Unlock()

	metrics.DBConnectionsOpen.Set(float64(open))
	return conn.Close()
}

// QueueWrite submits a write action to the dispatcher. The action receives
// the open write transaction and must not commit or roll it back itself.
// complete may be nil if the caller does not care about the outcome.
// Returns ErrWritesDisabled once Close or the dispatcher's Stop has begun.
func (c *DatabaseContext) QueueWrite(write WriteFunc, complete CompletionFunc) error {
	return c.dispatcher.Put(WriteEntry{Write: write, Complete: complete})
}

// Dispatcher returns the context's write dispatcher.
func (c *DatabaseContext) Dispatcher() *WriteDispatcher {
	return c.dispatcher
}

// WritesEnabled reports whether QueueWrite still accepts writes.
func (c *DatabaseContext) WritesEnabled() bool {
	return c.dispatcher.Accepting()
}

// Close stops the write dispatcher, then verifies that every acquired
// connection has been released. A non-empty connection set is a lifecycle
// violation by the caller and is reported as a ConnectionsLeakedError
// rather than silently ignored; the pool stays open so the leaked
// connections can be released and Close retried.
func (c *DatabaseContext) Close() error {
	c.dispatcher.Stop()

	c.mu.Lock()
	open := len(c.connections)
	c.mu.Unlock()

	if open > 0 {
		// Leave the pool open so the leaked connections stay usable for
		// diagnosis; the caller can release them and call Close again.
		return &ConnectionsLeakedError{Open: open}
	}
	return c.db.Close()
}

// IsClosed reports whether the connection set is empty and the dispatcher
// has fully stopped.
func (c *DatabaseContext) IsClosed() bool {
	c.mu.Lock()
	open := len(c.connections)
	c.mu.Unlock()
	return open == 0 && c.dispatcher.IsStopped()
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// MaxSQLVariables infers the SQLITE_MAX_VARIABLE_NUMBER of the linked
// SQLite library by binary search against a scratch in-memory database.
// Callers use the result to chunk bulk statements so the bound-parameter
// count stays under the limit.
//
// Some builds fail with "too many terms in compound SELECT" before the
// variable limit is reached; that is a distinct, likely lower limit, and
// is treated the same way.
func MaxSQLVariables() (int, error) {
	db, err := sql.Open("sqlite3", MemoryPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open scratch database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Pin one connection: a private in-memory database exists per
	// connection, so the probe must not hop between pooled sessions.
	conn, err := db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to open scratch connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "CREATE TABLE t (test)"); err != nil {
		return 0, err
	}

	low, high := 0, 100000
	for high-1 > low {
		guess := (high + low) / 2

		query := "INSERT INTO t VALUES " + placeholderRows(guess)
		args := make([]any, guess)
		for i := range args {
			args[i] = strconv.Itoa(i)
		}

		_, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			msg := err.Error()
			if strings.Contains(msg, "too many SQL variables") ||
				strings.Contains(msg, "too many terms in compound SELECT") {
				high = guess
				continue
			}
			return 0, err
		}
		low = guess
	}
	return low, nil
}

// placeholderRows builds "(?),(?),...,(?)" with n single-column rows.
func placeholderRows(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("(?)")
	}
	return b.String()
}

// Package test provides testing utilities for database operations.
package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/erfanjahi0/pulsechat/pkg/db"
)

// SqliteParams are the connection parameters used for test databases. They
// match the ones the server uses by default.
const SqliteParams = "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"

// OpenSqlite opens a new temp SQLite database for testing.
// It removes the database file when the test is done using tb.Cleanup.
// If ctx is nil, context.TODO() is used.
func OpenSqlite(ctx context.Context, tb testing.TB) (*db.DB, error) {
	if ctx == nil {
		ctx = context.TODO()
	}
	dbpath := filepath.Join(tb.TempDir(), "test.db")
	dbx, err := db.Open(ctx, "sqlite", dbpath+SqliteParams)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	tb.Cleanup(func() {
		if err := dbx.Close(); err != nil {
			tb.Error(err)
		}
	})
	return dbx, nil
}

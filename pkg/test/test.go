// Package test provides helpers shared by tests across packages.
package test

import (
	"context"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/db/migrate"
)

var (
	used = map[int]struct{}{}
	lock sync.Mutex
)

// RandomPort returns a random port number.
// This is mainly used for testing.
func RandomPort() int {
	addr, _ := net.Listen("tcp", ":0") //nolint:gosec
	_ = addr.Close()
	port := addr.Addr().(*net.TCPAddr).Port
	lock.Lock()

	if _, ok := used[port]; ok {
		lock.Unlock()
		return RandomPort()
	}

	used[port] = struct{}{}
	lock.Unlock()
	return port
}

// OpenDB opens a migrated SQLite database in a temp directory. The database
// is closed when the test finishes.
func OpenDB(ctx context.Context, tb testing.TB) *db.DB {
	tb.Helper()
	if ctx == nil {
		ctx = context.TODO()
	}

	dsn := filepath.Join(tb.TempDir(), "pulse.db") +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"
	dbx, err := db.Open(ctx, "sqlite", dsn)
	if err != nil {
		tb.Fatalf("open database: %v", err)
	}
	tb.Cleanup(func() {
		if err := dbx.Close(); err != nil {
			tb.Error(err)
		}
	})

	if err := migrate.Migrate(ctx, dbx); err != nil {
		tb.Fatalf("migrate database: %v", err)
	}

	return dbx
}

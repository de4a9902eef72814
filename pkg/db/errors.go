package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/lib/pq"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	driverSqlite   = "sqlite"
	driverPostgres = "postgres"
)

var (
	// ErrDuplicateKey is a constraint violation error.
	ErrDuplicateKey = errors.New("duplicate key value violates table constraint")

	// ErrRecordNotFound is returned when a record is not found.
	ErrRecordNotFound = errors.New("record not found")

	// ErrSerialization is returned when a transaction keeps conflicting with
	// concurrent transactions after all retries are spent.
	ErrSerialization = errors.New("could not serialize transaction")

	// ErrTxTimeout is returned when a single transaction attempt exceeds its
	// deadline.
	ErrTxTimeout = errors.New("transaction timed out")
)

// WrapError is a convenient function that unite various database driver
// errors to consistent errors.
func WrapError(err error) error {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}

		// Handle sqlite constraint error.
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) {
			code := liteErr.Code()
			if code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
				code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
				return ErrDuplicateKey
			}
		}

		// Handle postgres constraint error.
		var pgErr *pq.Error
		if errors.As(err, &pgErr) {
			if pgErr.Code.Name() == "unique_violation" {
				return ErrDuplicateKey
			}
		}
	}
	return err
}

// IsSerializationError reports whether err is a transient conflict with a
// concurrent transaction that is safe to retry.
func IsSerializationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSerialization) {
		return true
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Code.Name() {
		case "serialization_failure", "deadlock_detected":
			return true
		}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// Extended result codes keep the primary code in the low byte.
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}

	return false
}

// IsUnavailable reports whether err means the store could not be reached or
// did not answer in time.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTxTimeout) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		// Class 08 is connection exception, 57P is operator intervention.
		class := string(pgErr.Code.Class())
		return class == "08" || class == "57"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_IOERR, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_FULL, sqlite3.SQLITE_READONLY:
			return true
		}
	}

	return false
}

// Package db provides database interface and connection management for Pulse.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/erfanjahi0/pulsechat/pkg/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

// DB is the database connection.
type DB struct {
	*sqlx.DB
	logger *log.Logger
}

// Open opens a database connection.
func Open(ctx context.Context, driverName string, dsn string) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, err
	}

	d := &DB{
		DB: db,
	}

	if config.IsVerbose() {
		logger := log.FromContext(ctx).WithPrefix("db")
		d.logger = logger
	}

	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.DB.Close()
}

// Tx is a database transaction.
type Tx struct {
	*sqlx.Tx
	logger *log.Logger
}

// Transaction runs fn in a transaction.
func (d *DB) Transaction(fn func(tx *Tx) error) error {
	return d.TransactionContext(context.Background(), fn)
}

// TransactionContext runs fn in a transaction. The transaction is rolled back
// when fn returns an error and committed otherwise.
func (d *DB) TransactionContext(ctx context.Context, fn func(tx *Tx) error) error {
	txx, err := d.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	tx := &Tx{txx, d.logger}
	if err := fn(tx); err != nil {
		return rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			// this is ok because whoever did finish the tx should have also written the error already.
			return nil
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// TxOptions configures RetryTransactionContext.
type TxOptions struct {
	// Timeout bounds a single attempt. Zero means no bound besides the
	// caller's context.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts made after a
	// serialization conflict.
	MaxRetries int
}

// RetryTransactionContext runs fn in a serializable transaction and commits
// it as one unit. Attempts that fail with a serialization conflict are rolled
// back and retried with exponential backoff, at most opts.MaxRetries times.
// Any other error rolls the transaction back and is returned as is.
//
// PostgreSQL transactions run with SERIALIZABLE isolation. SQLite
// transactions are serializable by construction; use "_txlock=immediate" in
// the data source to take the write lock up front.
func (d *DB) RetryTransactionContext(ctx context.Context, opts TxOptions, fn func(ctx context.Context, tx *Tx) error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 10 * time.Millisecond
	eb.MaxInterval = 500 * time.Millisecond
	eb.MaxElapsedTime = 0

	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx) //nolint:gosec

	var attempts int
	err := backoff.Retry(func() error {
		attempts++
		err := d.attempt(ctx, opts.Timeout, fn)
		if err == nil {
			return nil
		}
		if IsSerializationError(err) {
			if d.logger != nil {
				d.logger.Debug("retrying transaction", "attempt", attempts, "err", err)
			}
			return err
		}
		return backoff.Permanent(err)
	}, bo)
	if err != nil && IsSerializationError(err) {
		return fmt.Errorf("%w: transaction failed after %d attempts: %w", ErrSerialization, attempts, err)
	}

	return err
}

func (d *DB) attempt(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx *Tx) error) error {
	actx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	txx, err := d.DB.BeginTxx(actx, &sql.TxOptions{Isolation: d.isolation()})
	if err != nil {
		return timedOut(ctx, actx, fmt.Errorf("failed to begin transaction: %w", err))
	}

	tx := &Tx{txx, d.logger}
	if err := fn(actx, tx); err != nil {
		return timedOut(ctx, actx, rollback(tx, err))
	}

	if err := tx.Commit(); err != nil {
		return timedOut(ctx, actx, fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

// timedOut marks err as a transaction timeout when the attempt's own deadline
// expired while the caller's context is still live.
func timedOut(parent, attempt context.Context, err error) error {
	if parent.Err() == nil && errors.Is(attempt.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTxTimeout, err)
	}
	return err
}

func (d *DB) isolation() sql.IsolationLevel {
	if d.DriverName() == driverPostgres {
		return sql.LevelSerializable
	}
	return sql.LevelDefault
}

func rollback(tx *Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		if errors.Is(rerr, sql.ErrTxDone) {
			return err
		}
		return fmt.Errorf("failed to rollback: %s: %w", err.Error(), rerr)
	}

	return err
}

package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/db/internal/test"
	"github.com/matryer/is"
)

func openWithTable(t *testing.T) *db.DB {
	t.Helper()
	is := is.New(t)
	dbx, err := test.OpenSqlite(context.TODO(), t)
	is.NoErr(err)
	_, err = dbx.ExecContext(context.TODO(), "CREATE TABLE items (name TEXT PRIMARY KEY)")
	is.NoErr(err)
	return dbx
}

func count(t *testing.T, dbx *db.DB) int {
	t.Helper()
	var n int
	if err := dbx.GetContext(context.TODO(), &n, "SELECT COUNT(*) FROM items"); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestRetryTransactionCommits(t *testing.T) {
	is := is.New(t)
	dbx := openWithTable(t)

	err := dbx.RetryTransactionContext(context.TODO(), db.TxOptions{MaxRetries: 3}, func(ctx context.Context, tx *db.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "a")
		return err
	})
	is.NoErr(err)
	is.Equal(count(t, dbx), 1)
}

func TestRetryTransactionRetriesConflicts(t *testing.T) {
	is := is.New(t)
	dbx := openWithTable(t)

	var attempts int
	err := dbx.RetryTransactionContext(context.TODO(), db.TxOptions{MaxRetries: 3}, func(ctx context.Context, tx *db.Tx) error {
		attempts++
		if _, err := tx.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "a"); err != nil {
			return err
		}
		if attempts < 3 {
			return fmt.Errorf("conflict: %w", db.ErrSerialization)
		}
		return nil
	})
	is.NoErr(err)
	is.Equal(attempts, 3)
	is.Equal(count(t, dbx), 1) // earlier attempts were rolled back
}

func TestRetryTransactionExhausted(t *testing.T) {
	is := is.New(t)
	dbx := openWithTable(t)

	var attempts int
	err := dbx.RetryTransactionContext(context.TODO(), db.TxOptions{MaxRetries: 2}, func(ctx context.Context, tx *db.Tx) error {
		attempts++
		if _, err := tx.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "a"); err != nil {
			return err
		}
		return db.ErrSerialization
	})
	is.True(errors.Is(err, db.ErrSerialization))
	is.Equal(attempts, 3)
	is.Equal(count(t, dbx), 0)
}

func TestRetryTransactionTerminalError(t *testing.T) {
	is := is.New(t)
	dbx := openWithTable(t)

	boom := errors.New("boom")
	var attempts int
	err := dbx.RetryTransactionContext(context.TODO(), db.TxOptions{MaxRetries: 5}, func(ctx context.Context, tx *db.Tx) error {
		attempts++
		if _, err := tx.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "a"); err != nil {
			return err
		}
		return boom
	})
	is.True(errors.Is(err, boom))
	is.Equal(attempts, 1)
	is.Equal(count(t, dbx), 0)
}

func TestRetryTransactionDuplicateKey(t *testing.T) {
	is := is.New(t)
	dbx := openWithTable(t)

	insert := func(ctx context.Context, tx *db.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO items (name) VALUES (?)", "a")
		return db.WrapError(err)
	}
	is.NoErr(dbx.RetryTransactionContext(context.TODO(), db.TxOptions{}, insert))
	err := dbx.RetryTransactionContext(context.TODO(), db.TxOptions{}, insert)
	is.True(errors.Is(err, db.ErrDuplicateKey))
}

func TestRetryTransactionTimeout(t *testing.T) {
	is := is.New(t)
	dbx := openWithTable(t)

	err := dbx.RetryTransactionContext(context.TODO(), db.TxOptions{Timeout: 20 * time.Millisecond, MaxRetries: 3}, func(ctx context.Context, tx *db.Tx) error {
		<-ctx.Done()
		return ctx.Err()
	})
	is.True(errors.Is(err, db.ErrTxTimeout))
	is.True(db.IsUnavailable(err))
}

func TestTransactionContextRollback(t *testing.T) {
	is := is.New(t)
	dbx := openWithTable(t)

	err := dbx.TransactionContext(context.TODO(), func(tx *db.Tx) error {
		if _, err := tx.ExecContext(context.TODO(), "INSERT INTO items (name) VALUES (?)", "a"); err != nil {
			return err
		}
		return errors.New("abort")
	})
	is.True(err != nil)
	is.Equal(count(t, dbx), 0)
}

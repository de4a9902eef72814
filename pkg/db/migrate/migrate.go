package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/erfanjahi0/pulsechat/pkg/db"
)

const (
	driverSQLite3  = "sqlite3"
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
)

// ErrNothingToRollback is returned by Rollback when no migration has been
// applied.
var ErrNothingToRollback = errors.New("there are no migrations to rollback")

// MigrateFunc is a function that executes a migration.
type MigrateFunc func(ctx context.Context, tx *db.Tx) error //nolint:revive

// Migration is a struct that contains the name of the migration and the
// function to execute it.
type Migration struct {
	Version  int64
	Name     string
	Migrate  MigrateFunc
	Rollback MigrateFunc
}

// Migrations is a database model to store migrations.
type Migrations struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Version int64  `db:"version"`
}

func (Migrations) schema(driverName string) string {
	switch driverName {
	case driverSQLite3, driverSQLite:
		return `CREATE TABLE IF NOT EXISTS migrations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				version INTEGER NOT NULL UNIQUE
			);
		`
	case driverPostgres:
		return `CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			version INTEGER NOT NULL UNIQUE
		);
	`
	default:
		return ""
	}
}

// Migrate runs the migrations.
func Migrate(ctx context.Context, dbx *db.DB) error {
	logger := log.FromContext(ctx).WithPrefix("migrate")
	return dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		if !hasTable(ctx, tx, "migrations") {
			schema := Migrations{}.schema(tx.DriverName())
			if schema == "" {
				return fmt.Errorf("unsupported database driver %q", tx.DriverName())
			}
			if _, err := tx.ExecContext(ctx, schema); err != nil {
				return err
			}
		}

		migrs, err := latest(ctx, tx)
		if err != nil {
			return err
		}

		for _, m := range migrations {
			if m.Version <= migrs.Version {
				continue
			}

			logger.Infof("running migration %d. %s", m.Version, m.Name)
			if err := m.Migrate(ctx, tx); err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO migrations (name, version) VALUES (?, ?)"), m.Name, m.Version); err != nil {
				return err
			}
		}

		return nil
	})
}

// Rollback rolls back a migration.
func Rollback(ctx context.Context, dbx *db.DB) error {
	logger := log.FromContext(ctx).WithPrefix("migrate")
	return dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		if !hasTable(ctx, tx, "migrations") {
			return ErrNothingToRollback
		}

		migrs, err := latest(ctx, tx)
		if err != nil {
			return err
		}

		if migrs.Version == 0 || len(migrations) < int(migrs.Version) {
			return ErrNothingToRollback
		}

		m := migrations[migrs.Version-1]
		logger.Infof("rolling back migration %d. %s", m.Version, m.Name)
		if err := m.Rollback(ctx, tx); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM migrations WHERE version = ?"), migrs.Version); err != nil {
			return err
		}

		return nil
	})
}

// Version returns the latest applied migration version, or zero when the
// database has not been migrated.
func Version(ctx context.Context, dbx *db.DB) (int64, error) {
	var version int64
	err := dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		if !hasTable(ctx, tx, "migrations") {
			return nil
		}
		m, err := latest(ctx, tx)
		version = m.Version
		return err
	})
	return version, err
}

func latest(ctx context.Context, tx *db.Tx) (Migrations, error) {
	var migrs Migrations
	if err := tx.GetContext(ctx, &migrs, tx.Rebind("SELECT * FROM migrations ORDER BY version DESC LIMIT 1")); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return migrs, err
		}
	}
	return migrs, nil
}

func hasTable(ctx context.Context, tx *db.Tx, tableName string) bool {
	var query string
	switch tx.DriverName() {
	case driverSQLite3, driverSQLite:
		query = "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
	case driverPostgres:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?"
	default:
		return false
	}

	query = tx.Rebind(query)
	var name string
	err := tx.GetContext(ctx, &name, query, tableName)
	return err == nil
}

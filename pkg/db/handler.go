package db

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// Handler is a database handler. Both *DB and *Tx implement it so store
// methods can run inside or outside a transaction.
type Handler interface {
	DriverName() string
	Rebind(string) string

	SelectContext(context.Context, interface{}, string, ...interface{}) error
	GetContext(context.Context, interface{}, string, ...interface{}) error
	QueryxContext(context.Context, string, ...interface{}) (*sqlx.Rows, error)
	QueryRowxContext(context.Context, string, ...interface{}) *sqlx.Row
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
}

var (
	_ Handler = (*DB)(nil)
	_ Handler = (*Tx)(nil)
)

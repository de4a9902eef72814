package models

import (
	"database/sql"
	"time"
)

// Account represents an account row.
type Account struct {
	ID              string         `db:"id"`
	Email           string         `db:"email"`
	DisplayName     string         `db:"display_name"`
	Password        sql.NullString `db:"password"`
	Handle          sql.NullString `db:"handle"`
	HandleChangedAt sql.NullTime   `db:"handle_changed_at"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

package models

import "time"

// HandleReservation binds a normalized handle to the account that owns it.
type HandleReservation struct {
	Handle     string    `db:"handle"`
	AccountID  string    `db:"account_id"`
	ReservedAt time.Time `db:"reserved_at"`
}

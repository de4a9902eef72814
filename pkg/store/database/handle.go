package database

import (
	"context"
	"time"

	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/db/models"
	"github.com/erfanjahi0/pulsechat/pkg/store"
)

type handleStore struct{}

var _ store.HandleStore = &handleStore{}

// GetReservation implements store.HandleStore.
func (*handleStore) GetReservation(ctx context.Context, h db.Handler, handle string) (models.HandleReservation, error) {
	var r models.HandleReservation
	query := h.Rebind("SELECT * FROM handle_reservations WHERE handle = ?;")
	err := h.GetContext(ctx, &r, query, handle)
	return r, db.WrapError(err)
}

// GetReservationByAccountID implements store.HandleStore.
func (*handleStore) GetReservationByAccountID(ctx context.Context, h db.Handler, accountID string) (models.HandleReservation, error) {
	var r models.HandleReservation
	query := h.Rebind("SELECT * FROM handle_reservations WHERE account_id = ? ORDER BY reserved_at DESC LIMIT 1;")
	err := h.GetContext(ctx, &r, query, accountID)
	return r, db.WrapError(err)
}

// CreateReservation implements store.HandleStore.
func (*handleStore) CreateReservation(ctx context.Context, h db.Handler, handle string, accountID string, at time.Time) error {
	query := h.Rebind("INSERT INTO handle_reservations (handle, account_id, reserved_at) VALUES (?, ?, ?);")
	_, err := h.ExecContext(ctx, query, handle, accountID, at)
	return db.WrapError(err)
}

// DeleteReservation implements store.HandleStore. Only a reservation owned by
// accountID is removed.
func (*handleStore) DeleteReservation(ctx context.Context, h db.Handler, handle string, accountID string) error {
	query := h.Rebind("DELETE FROM handle_reservations WHERE handle = ? AND account_id = ?;")
	res, err := h.ExecContext(ctx, query, handle, accountID)
	return affected(res, err)
}

// CountReservations implements store.HandleStore.
func (*handleStore) CountReservations(ctx context.Context, h db.Handler) (int64, error) {
	var n int64
	query := h.Rebind("SELECT COUNT(*) FROM handle_reservations;")
	err := h.GetContext(ctx, &n, query)
	return n, db.WrapError(err)
}

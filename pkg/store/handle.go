package store

import (
	"context"
	"time"

	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/db/models"
)

// HandleStore is a store for handle reservations. Handles passed to it are
// expected to be normalized already.
type HandleStore interface {
	GetReservation(ctx context.Context, h db.Handler, handle string) (models.HandleReservation, error)
	GetReservationByAccountID(ctx context.Context, h db.Handler, accountID string) (models.HandleReservation, error)
	CreateReservation(ctx context.Context, h db.Handler, handle string, accountID string, at time.Time) error
	DeleteReservation(ctx context.Context, h db.Handler, handle string, accountID string) error
	CountReservations(ctx context.Context, h db.Handler) (int64, error)
}

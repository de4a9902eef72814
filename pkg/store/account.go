package store

import (
	"context"
	"time"

	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/db/models"
)

// AccountStore is an interface for managing accounts.
type AccountStore interface {
	GetAccountByID(ctx context.Context, h db.Handler, id string) (models.Account, error)
	FindAccountByEmail(ctx context.Context, h db.Handler, email string) (models.Account, error)
	GetAllAccounts(ctx context.Context, h db.Handler) ([]models.Account, error)
	CreateAccount(ctx context.Context, h db.Handler, acc models.Account) error
	DeleteAccountByID(ctx context.Context, h db.Handler, id string) error
	SetAccountPassword(ctx context.Context, h db.Handler, id string, password string, at time.Time) error
	SetAccountHandle(ctx context.Context, h db.Handler, id string, handle string, changedAt time.Time) error
}

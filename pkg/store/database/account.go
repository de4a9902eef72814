package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/charmbracelet/log"
	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/db/models"
	"github.com/erfanjahi0/pulsechat/pkg/store"
)

type accountStore struct {
	logger *log.Logger
}

var _ store.AccountStore = (*accountStore)(nil)

// GetAccountByID implements store.AccountStore.
func (*accountStore) GetAccountByID(ctx context.Context, h db.Handler, id string) (models.Account, error) {
	var m models.Account
	query := h.Rebind(`SELECT * FROM accounts WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, db.WrapError(err)
}

// FindAccountByEmail implements store.AccountStore.
func (*accountStore) FindAccountByEmail(ctx context.Context, h db.Handler, email string) (models.Account, error) {
	var m models.Account
	query := h.Rebind(`SELECT * FROM accounts WHERE email = ?;`)
	err := h.GetContext(ctx, &m, query, email)
	return m, db.WrapError(err)
}

// GetAllAccounts implements store.AccountStore.
func (*accountStore) GetAllAccounts(ctx context.Context, h db.Handler) ([]models.Account, error) {
	var ms []models.Account
	query := h.Rebind(`SELECT * FROM accounts ORDER BY created_at ASC, id ASC;`)
	err := h.SelectContext(ctx, &ms, query)
	return ms, db.WrapError(err)
}

// CreateAccount implements store.AccountStore.
func (*accountStore) CreateAccount(ctx context.Context, h db.Handler, acc models.Account) error {
	query := h.Rebind(`INSERT INTO accounts (id, email, display_name, password, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?);`)
	_, err := h.ExecContext(ctx, query, acc.ID, acc.Email, acc.DisplayName, acc.Password, acc.CreatedAt, acc.UpdatedAt)
	return db.WrapError(err)
}

// DeleteAccountByID implements store.AccountStore. Reservations owned by the
// account are removed with it.
func (s *accountStore) DeleteAccountByID(ctx context.Context, h db.Handler, id string) error {
	// Not every connection enforces foreign keys, so release the
	// reservations explicitly.
	query := h.Rebind(`DELETE FROM handle_reservations WHERE account_id = ?;`)
	res, err := h.ExecContext(ctx, query, id)
	if err != nil {
		return db.WrapError(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Debug("released reservations", "account", id, "count", n)
	}

	query = h.Rebind(`DELETE FROM accounts WHERE id = ?;`)
	res, err = h.ExecContext(ctx, query, id)
	return affected(res, err)
}

// SetAccountPassword implements store.AccountStore.
func (*accountStore) SetAccountPassword(ctx context.Context, h db.Handler, id string, password string, at time.Time) error {
	query := h.Rebind(`UPDATE accounts SET password = ?, updated_at = ? WHERE id = ?;`)
	res, err := h.ExecContext(ctx, query, password, at, id)
	return affected(res, err)
}

// SetAccountHandle implements store.AccountStore.
func (*accountStore) SetAccountHandle(ctx context.Context, h db.Handler, id string, handle string, changedAt time.Time) error {
	query := h.Rebind(`UPDATE accounts SET handle = ?, handle_changed_at = ?, updated_at = ? WHERE id = ?;`)
	res, err := h.ExecContext(ctx, query, handle, changedAt, changedAt, id)
	return affected(res, err)
}

// affected turns an update that matched no rows into db.ErrRecordNotFound.
func affected(res sql.Result, err error) error {
	if err != nil {
		return db.WrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return db.WrapError(err)
	}
	if n == 0 {
		return db.ErrRecordNotFound
	}
	return nil
}

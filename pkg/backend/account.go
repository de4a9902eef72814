package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/db/models"
	"github.com/erfanjahi0/pulsechat/pkg/proto"
	"github.com/erfanjahi0/pulsechat/pkg/utils"
	"github.com/google/uuid"
)

const maxAccountIDLength = 64

// CreateAccount signs up a new account. When opts.Handle is set the handle is
// reserved in the same transaction, so either both succeed or neither does.
func (d *Backend) CreateAccount(ctx context.Context, opts proto.AccountOptions) (proto.Account, error) {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	if err := validateAccountID(id); err != nil {
		return nil, err
	}

	email := utils.NormalizeEmail(opts.Email)
	if err := utils.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %s", proto.ErrInvalidAccount, err)
	}

	var handle string
	if opts.Handle != "" {
		var err error
		handle, err = d.normalizeHandle(opts.Handle)
		if err != nil {
			return nil, err
		}
	}

	var password sql.NullString
	if opts.Password != "" {
		hash, err := HashPassword(opts.Password)
		if err != nil {
			return nil, err
		}
		password = sql.NullString{String: hash, Valid: true}
	}

	now := d.now()
	m := models.Account{
		ID:          id,
		Email:       email,
		DisplayName: strings.TrimSpace(opts.DisplayName),
		Password:    password,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := d.tx(ctx, func(ctx context.Context, tx *db.Tx) error {
		if err := d.store.CreateAccount(ctx, tx, m); err != nil {
			if errors.Is(err, db.ErrDuplicateKey) {
				return proto.ErrAccountExist
			}
			return err
		}

		if handle != "" {
			_, err := d.reserveInitial(ctx, tx, id, handle)
			return err
		}

		return nil
	}); err != nil {
		return nil, d.mapError(err, "create account", "account", id, "email", email)
	}

	d.logger.Info("account created", "account", id, "handle", handle)
	return d.Account(ctx, id)
}

// Account finds an account by ID.
func (d *Backend) Account(ctx context.Context, id string) (proto.Account, error) {
	m, err := d.store.GetAccountByID(ctx, d.db, id)
	if err != nil {
		return nil, d.mapError(err, "find account", "account", id)
	}

	return &account{m}, nil
}

// AccountByEmail finds an account by email address.
func (d *Backend) AccountByEmail(ctx context.Context, email string) (proto.Account, error) {
	m, err := d.store.FindAccountByEmail(ctx, d.db, utils.NormalizeEmail(email))
	if err != nil {
		return nil, d.mapError(err, "find account", "email", email)
	}

	return &account{m}, nil
}

// Accounts returns all accounts, oldest first.
func (d *Backend) Accounts(ctx context.Context) ([]proto.Account, error) {
	ms, err := d.store.GetAllAccounts(ctx, d.db)
	if err != nil {
		return nil, d.mapError(err, "list accounts")
	}

	accounts := make([]proto.Account, 0, len(ms))
	for _, m := range ms {
		accounts = append(accounts, &account{m})
	}

	return accounts, nil
}

// DeleteAccount deletes an account and releases its handle.
func (d *Backend) DeleteAccount(ctx context.Context, id string) error {
	if err := d.tx(ctx, func(ctx context.Context, tx *db.Tx) error {
		return d.store.DeleteAccountByID(ctx, tx, id)
	}); err != nil {
		return d.mapError(err, "delete account", "account", id)
	}

	d.logger.Info("account deleted", "account", id)
	return nil
}

// SetPassword sets the password of an account.
func (d *Backend) SetPassword(ctx context.Context, id string, rawPassword string) error {
	if rawPassword == "" {
		return fmt.Errorf("%w: password cannot be empty", proto.ErrInvalidAccount)
	}

	password, err := HashPassword(rawPassword)
	if err != nil {
		return err
	}

	if err := d.tx(ctx, func(ctx context.Context, tx *db.Tx) error {
		return d.store.SetAccountPassword(ctx, tx, id, password, d.now())
	}); err != nil {
		return d.mapError(err, "set password", "account", id)
	}

	return nil
}

// Authenticate signs in with an email and password.
func (d *Backend) Authenticate(ctx context.Context, email string, password string) (proto.Account, error) {
	acc, err := d.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, proto.ErrAccountNotFound) {
			return nil, proto.ErrInvalidCredentials
		}
		return nil, err
	}

	if acc.Password() == "" || !VerifyPassword(password, acc.Password()) {
		return nil, proto.ErrInvalidCredentials
	}

	return acc, nil
}

func validateAccountID(id string) error {
	if len(id) > maxAccountIDLength {
		return fmt.Errorf("%w: id must be at most %d characters long", proto.ErrInvalidAccount, maxAccountIDLength)
	}
	for _, r := range id {
		if r <= ' ' || r == 0x7f {
			return fmt.Errorf("%w: id cannot contain spaces or control characters", proto.ErrInvalidAccount)
		}
	}
	return nil
}

type account struct {
	account models.Account
}

var _ proto.Account = (*account)(nil)

// ID implements proto.Account.
func (a *account) ID() string {
	return a.account.ID
}

// Email implements proto.Account.
func (a *account) Email() string {
	return a.account.Email
}

// DisplayName implements proto.Account.
func (a *account) DisplayName() string {
	return a.account.DisplayName
}

// Handle implements proto.Account.
func (a *account) Handle() string {
	if a.account.Handle.Valid {
		return a.account.Handle.String
	}
	return ""
}

// HandleChangedAt implements proto.Account.
func (a *account) HandleChangedAt() time.Time {
	if a.account.HandleChangedAt.Valid {
		return a.account.HandleChangedAt.Time.UTC()
	}
	return time.Time{}
}

// Password implements proto.Account.
func (a *account) Password() string {
	if a.account.Password.Valid {
		return a.account.Password.String
	}
	return ""
}

// CreatedAt implements proto.Account.
func (a *account) CreatedAt() time.Time {
	return a.account.CreatedAt.UTC()
}

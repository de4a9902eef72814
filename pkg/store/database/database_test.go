package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/db/models"
	"github.com/erfanjahi0/pulsechat/pkg/store"
	"github.com/erfanjahi0/pulsechat/pkg/store/database"
	"github.com/erfanjahi0/pulsechat/pkg/test"
	"github.com/matryer/is"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (context.Context, *db.DB, store.Store) {
	t.Helper()
	ctx := context.TODO()
	dbx := test.OpenDB(ctx, t)
	return ctx, dbx, database.New(ctx, dbx)
}

func createAccount(ctx context.Context, t *testing.T, dbx *db.DB, s store.Store, id, email string) {
	t.Helper()
	err := s.CreateAccount(ctx, dbx, models.Account{
		ID:        id,
		Email:     email,
		Password:  sql.NullString{String: "hash", Valid: true},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestAccounts(t *testing.T) {
	is := is.New(t)
	ctx, dbx, s := setup(t)

	createAccount(ctx, t, dbx, s, "u1", "u1@example.com")
	createAccount(ctx, t, dbx, s, "u2", "u2@example.com")

	acc, err := s.GetAccountByID(ctx, dbx, "u1")
	is.NoErr(err)
	is.Equal(acc.Email, "u1@example.com")
	is.True(!acc.Handle.Valid)
	is.True(!acc.HandleChangedAt.Valid)

	acc, err = s.FindAccountByEmail(ctx, dbx, "u2@example.com")
	is.NoErr(err)
	is.Equal(acc.ID, "u2")

	all, err := s.GetAllAccounts(ctx, dbx)
	is.NoErr(err)
	is.Equal(len(all), 2)

	err = s.CreateAccount(ctx, dbx, models.Account{ID: "u3", Email: "u1@example.com", CreatedAt: now, UpdatedAt: now})
	is.True(errors.Is(err, db.ErrDuplicateKey))

	_, err = s.GetAccountByID(ctx, dbx, "nope")
	is.True(errors.Is(err, db.ErrRecordNotFound))
}

func TestSetAccountHandle(t *testing.T) {
	is := is.New(t)
	ctx, dbx, s := setup(t)
	createAccount(ctx, t, dbx, s, "u1", "u1@example.com")

	is.NoErr(s.SetAccountHandle(ctx, dbx, "u1", "alice", now))
	acc, err := s.GetAccountByID(ctx, dbx, "u1")
	is.NoErr(err)
	is.Equal(acc.Handle.String, "alice")
	is.True(acc.HandleChangedAt.Valid)
	is.True(acc.HandleChangedAt.Time.Equal(now))

	err = s.SetAccountHandle(ctx, dbx, "nope", "bob", now)
	is.True(errors.Is(err, db.ErrRecordNotFound))
}

func TestReservations(t *testing.T) {
	is := is.New(t)
	ctx, dbx, s := setup(t)
	createAccount(ctx, t, dbx, s, "u1", "u1@example.com")
	createAccount(ctx, t, dbx, s, "u2", "u2@example.com")

	is.NoErr(s.CreateReservation(ctx, dbx, "alice", "u1", now))

	err := s.CreateReservation(ctx, dbx, "alice", "u2", now)
	is.True(errors.Is(err, db.ErrDuplicateKey)) // handle is globally unique

	r, err := s.GetReservation(ctx, dbx, "alice")
	is.NoErr(err)
	is.Equal(r.AccountID, "u1")
	is.True(r.ReservedAt.Equal(now))

	r, err = s.GetReservationByAccountID(ctx, dbx, "u1")
	is.NoErr(err)
	is.Equal(r.Handle, "alice")

	n, err := s.CountReservations(ctx, dbx)
	is.NoErr(err)
	is.Equal(n, int64(1))

	// Only the owner can release a reservation.
	err = s.DeleteReservation(ctx, dbx, "alice", "u2")
	is.True(errors.Is(err, db.ErrRecordNotFound))
	is.NoErr(s.DeleteReservation(ctx, dbx, "alice", "u1"))

	_, err = s.GetReservation(ctx, dbx, "alice")
	is.True(errors.Is(err, db.ErrRecordNotFound))
}

func TestDeleteAccountReleasesReservation(t *testing.T) {
	is := is.New(t)
	ctx, dbx, s := setup(t)
	createAccount(ctx, t, dbx, s, "u1", "u1@example.com")
	is.NoErr(s.CreateReservation(ctx, dbx, "alice", "u1", now))

	is.NoErr(s.DeleteAccountByID(ctx, dbx, "u1"))
	_, err := s.GetReservation(ctx, dbx, "alice")
	is.True(errors.Is(err, db.ErrRecordNotFound))

	err = s.DeleteAccountByID(ctx, dbx, "u1")
	is.True(errors.Is(err, db.ErrRecordNotFound))
}

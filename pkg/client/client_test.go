package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/erfanjahi0/pulsechat/pkg/backend"
	"github.com/erfanjahi0/pulsechat/pkg/client"
	"github.com/erfanjahi0/pulsechat/pkg/config"
	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/proto"
	"github.com/erfanjahi0/pulsechat/pkg/store/database"
	"github.com/erfanjahi0/pulsechat/pkg/test"
	"github.com/erfanjahi0/pulsechat/pkg/web"
	"github.com/matryer/is"
)

func setup(t *testing.T) (*httptest.Server, *quartz.Mock) {
	t.Helper()
	ctx := context.TODO()
	dbx := test.OpenDB(ctx, t)

	cfg := config.DefaultConfig()
	cfg.DataPath = t.TempDir()
	cfg.Session.KeyPath = filepath.Join(cfg.DataPath, "keys", "session_ed25519")
	cfg.Session.Expiry = "30d"

	clock := quartz.NewMock(t)
	clock.Set(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))

	be := backend.New(ctx, cfg, dbx, database.New(ctx, dbx), backend.WithClock(clock))
	ctx = config.WithContext(ctx, cfg)
	ctx = db.WithContext(ctx, dbx)
	ctx = backend.WithContext(ctx, be)

	srv := httptest.NewServer(web.NewRouter(ctx))
	t.Cleanup(srv.Close)
	return srv, clock
}

func signup(t *testing.T, url, id string) *client.Client {
	t.Helper()
	ctx := context.TODO()
	c, err := client.New(url)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.CreateAccount(ctx, proto.CreateAccountRequest{
		ID:       id,
		Email:    id + "@example.com",
		Password: "hunter2",
	}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := c.Login(ctx, id+"@example.com", "hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return c
}

func TestNewInvalidURL(t *testing.T) {
	is := is.New(t)
	_, err := client.New("ftp://example.com")
	is.True(err != nil)
}

func TestScenario(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	srv, clock := setup(t)

	u1 := signup(t, srv.URL, "u1")
	u2 := signup(t, srv.URL, "u2")
	is.True(u1.Token() != "")

	me, err := u1.Me(ctx)
	is.NoErr(err)
	is.Equal(me.ID, "u1")

	ok, err := u1.HandleAvailable(ctx, "alice", "")
	is.NoErr(err)
	is.True(ok)

	res, err := u1.ReserveHandle(ctx, "alice")
	is.NoErr(err)
	is.Equal(res.Handle, "alice")

	_, err = u2.ReserveHandle(ctx, "alice")
	is.True(errors.Is(err, proto.ErrHandleTaken))
	is.True(client.IsCode(err, proto.CodeHandleTaken))

	ok, err = u2.HandleAvailable(ctx, "alice", "u2")
	is.NoErr(err)
	is.True(!ok)

	ok, err = u1.HandleAvailable(ctx, "alice", "u1")
	is.NoErr(err)
	is.True(ok)

	id, err := u2.LookupHandle(ctx, "alice")
	is.NoErr(err)
	is.Equal(id, "u1")

	_, err = u1.ChangeHandle(ctx, "alice2", "alice")
	is.True(errors.Is(err, proto.ErrCooldownActive))
	var cerr *proto.CooldownError
	is.True(errors.As(err, &cerr))
	is.Equal(cerr.DaysRemaining, 7)

	clock.Advance(7 * 24 * time.Hour)
	res, err = u1.ChangeHandle(ctx, "alice2", "")
	is.NoErr(err)
	is.Equal(res.Handle, "alice2")

	_, err = u2.LookupHandle(ctx, "alice")
	is.True(errors.Is(err, proto.ErrHandleNotFound))

	_, err = u2.ReserveHandle(ctx, "alice")
	is.NoErr(err)
}

func TestInvalidHandle(t *testing.T) {
	is := is.New(t)
	srv, _ := setup(t)
	c := signup(t, srv.URL, "u1")

	_, err := c.ReserveHandle(context.TODO(), "no spaces")
	is.True(errors.Is(err, proto.ErrInvalidHandle))
	var aerr *client.Error
	is.True(errors.As(err, &aerr))
	is.Equal(aerr.StatusCode, http.StatusUnprocessableEntity)
}

func TestUnauthenticated(t *testing.T) {
	is := is.New(t)
	srv, _ := setup(t)
	c, err := client.New(srv.URL)
	is.NoErr(err)

	_, err = c.Me(context.TODO())
	is.True(errors.Is(err, proto.ErrUnauthorized))

	_, err = c.Login(context.TODO(), "nobody@example.com", "x")
	is.True(errors.Is(err, proto.ErrInvalidCredentials))
}

func TestNonJSONError(t *testing.T) {
	is := is.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := client.New(srv.URL)
	is.NoErr(err)
	_, err = c.LookupHandle(context.TODO(), "alice")
	var aerr *client.Error
	is.True(errors.As(err, &aerr))
	is.Equal(aerr.StatusCode, http.StatusBadGateway)
	is.Equal(aerr.Unwrap(), nil)
}

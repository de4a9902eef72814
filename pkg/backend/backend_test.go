package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/erfanjahi0/pulsechat/pkg/config"
	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/proto"
	"github.com/erfanjahi0/pulsechat/pkg/store"
	"github.com/erfanjahi0/pulsechat/pkg/store/database"
	"github.com/erfanjahi0/pulsechat/pkg/test"
)

var epoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type env struct {
	ctx   context.Context
	cfg   *config.Config
	db    *db.DB
	store store.Store
	clock *quartz.Mock
	b     *Backend
}

func setup(t *testing.T, opts ...func(*config.Config)) *env {
	t.Helper()
	ctx := context.TODO()
	dbx := test.OpenDB(ctx, t)

	cfg := config.DefaultConfig()
	cfg.DataPath = t.TempDir()
	cfg.Session.KeyPath = filepath.Join(cfg.DataPath, "keys", "session_ed25519")
	for _, opt := range opts {
		opt(cfg)
	}

	clock := quartz.NewMock(t)
	clock.Set(epoch)

	st := database.New(ctx, dbx)
	return &env{
		ctx:   ctx,
		cfg:   cfg,
		db:    dbx,
		store: st,
		clock: clock,
		b:     New(ctx, cfg, dbx, st, WithClock(clock)),
	}
}

// withStore returns a backend sharing e's database, config, and clock but
// using st as its store.
func (e *env) withStore(st store.Store) *Backend {
	return New(e.ctx, e.cfg, e.db, st, WithClock(e.clock))
}

func (e *env) account(t *testing.T, id string) proto.Account {
	t.Helper()
	acc, err := e.b.CreateAccount(e.ctx, proto.AccountOptions{
		ID:       id,
		Email:    id + "@example.com",
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("create account %q: %v", id, err)
	}
	return acc
}

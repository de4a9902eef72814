package jobs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/erfanjahi0/pulsechat/pkg/backend"
	"github.com/erfanjahi0/pulsechat/pkg/config"
	"github.com/erfanjahi0/pulsechat/pkg/proto"
	"github.com/erfanjahi0/pulsechat/pkg/store/database"
	"github.com/erfanjahi0/pulsechat/pkg/test"
	"github.com/matryer/is"
)

func TestRegistered(t *testing.T) {
	is := is.New(t)
	job, ok := List()["reservation-stats"]
	is.True(ok)

	cfg := config.DefaultConfig()
	ctx := config.WithContext(context.TODO(), cfg)
	is.Equal(job.Runner.Spec(ctx), "@every 1m")
}

func TestReservationStats(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	dbx := test.OpenDB(ctx, t)
	cfg := config.DefaultConfig()
	cfg.DataPath = t.TempDir()
	cfg.Session.KeyPath = filepath.Join(cfg.DataPath, "keys", "session_ed25519")

	be := backend.New(ctx, cfg, dbx, database.New(ctx, dbx))
	ctx = backend.WithContext(config.WithContext(ctx, cfg), be)

	_, err := be.CreateAccount(ctx, proto.AccountOptions{ID: "u1", Email: "u1@example.com", Handle: "alice"})
	is.NoErr(err)

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	is.NoErr(List()["reservation-stats"].Runner.Run(ctx))
}

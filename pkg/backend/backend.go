package backend

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/erfanjahi0/pulsechat/pkg/config"
	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/proto"
	"github.com/erfanjahi0/pulsechat/pkg/store"
	"github.com/gobwas/glob"
)

// Backend is the Pulse backend that handles accounts, sessions, and handle
// reservations. It keeps no state between calls besides configuration;
// everything else lives in the database.
type Backend struct {
	ctx      context.Context
	cfg      *config.Config
	db       *db.DB
	store    store.Store
	logger   *log.Logger
	clock    quartz.Clock
	reserved []glob.Glob
}

var _ proto.HandleService = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithClock sets the clock used for reservation timestamps and cooldowns.
func WithClock(c quartz.Clock) Option {
	return func(b *Backend) {
		b.clock = c
	}
}

// New returns a new Pulse backend.
func New(ctx context.Context, cfg *config.Config, db *db.DB, st store.Store, opts ...Option) *Backend {
	logger := log.FromContext(ctx).WithPrefix("backend")
	b := &Backend{
		ctx:    ctx,
		cfg:    cfg,
		db:     db,
		store:  st,
		logger: logger,
		clock:  quartz.NewReal(),
	}

	for _, opt := range opts {
		opt(b)
	}

	for _, pattern := range cfg.Handle.Reserved {
		g, err := glob.Compile(pattern)
		if err != nil {
			logger.Warn("ignoring invalid reserved handle pattern", "pattern", pattern, "err", err)
			continue
		}
		b.reserved = append(b.reserved, g)
	}

	return b
}

// Store returns the backend's store.
func (d *Backend) Store() store.Store {
	return d.store
}

// Ping reports whether the database is reachable.
func (d *Backend) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/erfanjahi0/pulsechat/pkg/backend"
	"github.com/erfanjahi0/pulsechat/pkg/config"
	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/db/migrate"
	"github.com/erfanjahi0/pulsechat/pkg/store"
	"github.com/erfanjahi0/pulsechat/pkg/store/database"
	"github.com/spf13/cobra"
)

// InitDBContext opens the database and adds it to the command context.
func InitDBContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return config.ErrNilConfig
	}
	if _, err := os.Stat(cfg.DataPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(cfg.DataPath, os.ModePerm); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	dbx, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.DataSource)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	cmd.SetContext(db.WithContext(ctx, dbx))

	return nil
}

// InitBackendContext opens the database, applies pending migrations, and
// adds the database, store, and backend to the command context.
func InitBackendContext(cmd *cobra.Command, args []string) error {
	if err := InitDBContext(cmd, args); err != nil {
		return err
	}

	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	dbx := db.FromContext(ctx)
	if err := migrate.Migrate(ctx, dbx); err != nil {
		dbx.Close() //nolint:errcheck
		return fmt.Errorf("migration: %w", err)
	}

	dbstore := database.New(ctx, dbx)
	ctx = store.WithContext(ctx, dbstore)
	be := backend.New(ctx, cfg, dbx, dbstore)
	ctx = backend.WithContext(ctx, be)

	cmd.SetContext(ctx)

	return nil
}

// CloseDBContext closes the database context.
func CloseDBContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	dbx := db.FromContext(ctx)
	if dbx != nil {
		if err := dbx.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	return nil
}

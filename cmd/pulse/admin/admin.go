package admin

import (
	"fmt"

	"github.com/erfanjahi0/pulsechat/cmd"
	"github.com/erfanjahi0/pulsechat/pkg/db"
	"github.com/erfanjahi0/pulsechat/pkg/db/migrate"
	"github.com/spf13/cobra"
)

// NewCommand returns the admin command.
func NewCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "admin",
		Short: "Administrate the server",
	}

	migrateCmd := &cobra.Command{
		Use:                "migrate",
		Short:              "Migrate the database to the latest version",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  cmd.InitDBContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			db := db.FromContext(ctx)
			if err := migrate.Migrate(ctx, db); err != nil {
				return fmt.Errorf("migration: %w", err)
			}

			return printVersion(c, db)
		},
	}

	rollbackCmd := &cobra.Command{
		Use:                "rollback",
		Short:              "Rollback the database to the previous version",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  cmd.InitDBContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			db := db.FromContext(ctx)
			if err := migrate.Rollback(ctx, db); err != nil {
				return fmt.Errorf("rollback: %w", err)
			}

			return printVersion(c, db)
		},
	}

	c.AddCommand(
		migrateCmd,
		rollbackCmd,
	)

	return c
}

func printVersion(c *cobra.Command, dbx *db.DB) error {
	v, err := migrate.Version(c.Context(), dbx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.OutOrStdout(), "schema version %d\n", v)
	return nil
}

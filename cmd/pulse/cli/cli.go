// Package cli assembles the pulse command tree.
package cli

import (
	"fmt"

	"github.com/erfanjahi0/pulsechat/cmd"
	"github.com/erfanjahi0/pulsechat/cmd/pulse/account"
	"github.com/erfanjahi0/pulsechat/cmd/pulse/admin"
	"github.com/erfanjahi0/pulsechat/cmd/pulse/handle"
	"github.com/erfanjahi0/pulsechat/cmd/pulse/serve"
	"github.com/erfanjahi0/pulsechat/pkg/backend"
	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

// New returns the root pulse command.
func New(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "pulse",
		Short:        "Handle reservation server for Pulse chat",
		Long:         "Pulse keeps chat handles globally unique and rate limits how often an account can change its handle.",
		SilenceUsage: true,
		Version:      version,
	}

	rootCmd.AddCommand(
		serve.NewCommand(),
		admin.NewCommand(),
		account.NewCommand(),
		handle.NewCommand(),
		tokenCommand(),
		manCommand(rootCmd),
	)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	return rootCmd
}

func tokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:                "token ACCOUNT",
		Short:              "Issue a session token for an account",
		Args:               cobra.ExactArgs(1),
		PersistentPreRunE:  cmd.InitBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			acc, err := be.Account(ctx, args[0])
			if err != nil {
				return err
			}

			token, _, err := be.IssueToken(ctx, acc)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.OutOrStdout(), token)
			return nil
		},
	}
}

func manCommand(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  "Generate man pages",
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE: func(c *cobra.Command, _ []string) error {
			manPage, err := mcobra.NewManPage(1, root)
			if err != nil {
				return err
			}

			manPage = manPage.WithSection("Copyright", "Released under MIT license.")
			fmt.Fprintln(c.OutOrStdout(), manPage.Build(roff.NewDocument()))
			return nil
		},
	}
}

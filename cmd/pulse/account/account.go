package account

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/erfanjahi0/pulsechat/cmd"
	"github.com/erfanjahi0/pulsechat/pkg/backend"
	"github.com/erfanjahi0/pulsechat/pkg/proto"
	"github.com/spf13/cobra"
)

// NewCommand returns the account command.
func NewCommand() *cobra.Command {
	var ojson bool
	c := &cobra.Command{
		Use:                "account",
		Aliases:            []string{"accounts"},
		Short:              "Manage accounts",
		PersistentPreRunE:  cmd.InitBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
	}
	c.PersistentFlags().BoolVar(&ojson, "json", false, "output as JSON")

	var opts proto.AccountOptions
	createCmd := &cobra.Command{
		Use:   "create EMAIL",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			o := opts
			o.Email = args[0]
			acc, err := be.CreateAccount(ctx, o)
			if err != nil {
				return err
			}

			if ojson {
				return writeJSON(c.OutOrStdout(), proto.NewAccountResponse(acc))
			}
			fmt.Fprintln(c.OutOrStdout(), acc.ID())
			return nil
		},
	}
	createCmd.Flags().StringVar(&opts.ID, "id", "", "account id, generated when empty")
	createCmd.Flags().StringVarP(&opts.DisplayName, "name", "n", "", "display name")
	createCmd.Flags().StringVarP(&opts.Password, "password", "p", "", "sign-in password")
	createCmd.Flags().StringVar(&opts.Handle, "handle", "", "reserve this handle for the account")

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List accounts",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			accs, err := be.Accounts(ctx)
			if err != nil {
				return err
			}

			if ojson {
				res := make([]proto.AccountResponse, 0, len(accs))
				for _, acc := range accs {
					res = append(res, proto.NewAccountResponse(acc))
				}
				return writeJSON(c.OutOrStdout(), res)
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "EMAIL", "HANDLE", "CREATED")
			for _, acc := range accs {
				t.Row(acc.ID(), acc.Email(), acc.Handle(), humanize.Time(acc.CreatedAt()))
			}
			fmt.Fprintln(c.OutOrStdout(), t.String())
			return nil
		},
	}

	infoCmd := &cobra.Command{
		Use:   "info ID",
		Short: "Show account information",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			acc, err := be.Account(ctx, args[0])
			if err != nil {
				return err
			}

			if ojson {
				return writeJSON(c.OutOrStdout(), proto.NewAccountResponse(acc))
			}

			w := c.OutOrStdout()
			fmt.Fprintf(w, "ID: %s\n", acc.ID())
			fmt.Fprintf(w, "Email: %s\n", acc.Email())
			if name := acc.DisplayName(); name != "" {
				fmt.Fprintf(w, "Name: %s\n", name)
			}
			handle := acc.Handle()
			if handle == "" {
				handle = "-"
			}
			fmt.Fprintf(w, "Handle: %s\n", handle)
			if t := acc.HandleChangedAt(); !t.IsZero() {
				fmt.Fprintf(w, "Handle changed: %s\n", humanize.Time(t))
			}
			fmt.Fprintf(w, "Created: %s\n", humanize.Time(acc.CreatedAt()))
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an account and release its handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			return be.DeleteAccount(ctx, args[0])
		},
	}

	setPasswordCmd := &cobra.Command{
		Use:   "set-password ID PASSWORD",
		Short: "Set the sign-in password of an account",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			return be.SetPassword(ctx, args[0], strings.Join(args[1:], " "))
		},
	}

	c.AddCommand(
		createCmd,
		listCmd,
		infoCmd,
		deleteCmd,
		setPasswordCmd,
	)

	return c
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

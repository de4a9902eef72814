package handle

import (
	"fmt"
	"strconv"

	"github.com/erfanjahi0/pulsechat/cmd"
	"github.com/erfanjahi0/pulsechat/pkg/backend"
	"github.com/spf13/cobra"
)

// NewCommand returns the handle command.
func NewCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                "handle",
		Aliases:            []string{"handles"},
		Short:              "Manage handle reservations",
		PersistentPreRunE:  cmd.InitBackendContext,
		PersistentPostRunE: cmd.CloseDBContext,
	}

	reserveCmd := &cobra.Command{
		Use:   "reserve ACCOUNT HANDLE",
		Short: "Reserve the first handle of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			res, err := be.ReserveInitialHandle(ctx, args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(c.OutOrStdout(), "%s reserved for %s\n", res.Handle, res.AccountID)
			return nil
		},
	}

	var old string
	changeCmd := &cobra.Command{
		Use:   "change ACCOUNT HANDLE",
		Short: "Change the handle of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			res, err := be.ReserveHandleChange(ctx, args[0], args[1], old)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.OutOrStdout(), "%s reserved for %s\n", res.Handle, res.AccountID)
			return nil
		},
	}
	changeCmd.Flags().StringVar(&old, "old", "", "the handle being released, defaults to the current one")

	var account string
	availableCmd := &cobra.Command{
		Use:   "available HANDLE",
		Short: "Check whether a handle can be reserved",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			ok, err := be.IsHandleAvailable(ctx, args[0], account)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.OutOrStdout(), strconv.FormatBool(ok))
			return nil
		},
	}
	availableCmd.Flags().StringVar(&account, "account", "", "treat handles owned by this account as available")

	lookupCmd := &cobra.Command{
		Use:   "lookup HANDLE",
		Short: "Show the account holding a handle",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			be := backend.FromContext(ctx)
			id, err := be.AccountIDByHandle(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(c.OutOrStdout(), id)
			return nil
		},
	}

	c.AddCommand(
		reserveCmd,
		changeCmd,
		availableCmd,
		lookupCmd,
	)

	return c
}

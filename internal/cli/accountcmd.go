package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/paperdesk/account"
)

func newAccountCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect and reset the paper account",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the account snapshot",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEngine(rc, printAccount)
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Replace the account with a fresh one at the starting balance",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withEngine(rc, func(e *account.Engine) error {
					if err := e.ResetAccount(); err != nil {
						return err
					}
					return printAccount(e)
				})
			},
		},
		&cobra.Command{
			Use:   "set-balance AMOUNT",
			Short: "Replace the account with a fresh one at the given balance",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := strconv.ParseFloat(args[0], 64)
				if err != nil || amount <= 0 {
					return fmt.Errorf("bad balance %q", args[0])
				}
				return withEngine(rc, func(e *account.Engine) error {
					if err := e.SetBalance(amount); err != nil {
						return err
					}
					return printAccount(e)
				})
			},
		},
	)

	return cmd
}

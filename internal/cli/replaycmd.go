package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/paperdesk/account"
	"github.com/rustyeddy/paperdesk/replay"
)

func newReplayCmd(rc *RootConfig) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Replay recorded mark prices from a CSV file or zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var steps []replay.Step
			var err error
			if strings.HasSuffix(strings.ToLower(args[0]), ".zip") {
				steps, err = replay.LoadArchive(args[0])
			} else {
				steps, err = replay.LoadFile(args[0])
			}
			if err != nil {
				return err
			}

			return withEngine(rc, func(e *account.Engine) error {
				if err := replay.Run(e, steps, wait); err != nil {
					return err
				}
				fmt.Printf("replayed %d price steps\n", len(steps))
				return printAccount(e)
			})
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Honor step delays in real time")
	return cmd
}

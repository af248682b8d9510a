package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// RootConfig carries the persistent flag values into subcommands.
type RootConfig struct {
	ConfigPath string
	DBPath     string
	MirrorURL  string
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:           "paperdesk",
		Short:         "Paper-trading ledger, journal, and replay tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", "", "SQLite database for snapshots and journal")
	cmd.PersistentFlags().StringVar(&rc.MirrorURL, "mirror-url", "", "Remote mirror endpoint (optional)")

	// Subcommands
	cmd.AddCommand(
		newRunCmd(rc),
		newTradeCmd(rc),
		newAccountCmd(rc),
		newJournalCmd(rc),
		newExportCmd(rc),
		newReplayCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("paperdesk (dev)")
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

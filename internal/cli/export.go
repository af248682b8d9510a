package cli

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/paperdesk/journal"
)

func newExportCmd(rc *RootConfig) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the closed-trade journal as xz-compressed CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rc)
			if err != nil {
				return err
			}
			j, err := openJournalDB(cfg)
			if err != nil {
				return err
			}
			defer j.Close()

			recs, err := j.ListAllTrades()
			if err != nil {
				return fmt.Errorf("list trades: %w", err)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()

			xw, err := xz.NewWriter(f)
			if err != nil {
				return fmt.Errorf("xz writer: %w", err)
			}

			cw := csv.NewWriter(xw)
			if err := cw.Write(journal.TradeHeader()); err != nil {
				return err
			}
			for _, rec := range recs {
				if err := cw.Write(journal.TradeRow(rec)); err != nil {
					return err
				}
			}
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			if err := xw.Close(); err != nil {
				return fmt.Errorf("finish xz stream: %w", err)
			}

			fmt.Printf("exported %d trades to %s\n", len(recs), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "./trades.csv.xz", "Output file")
	return cmd
}

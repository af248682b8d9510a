package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/paperdesk/journal"
)

func newJournalCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Query the closed-trade journal",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "trade TRADE_ID",
			Short: "Print one closed trade as an Org block",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withJournal(rc, func(j journalQuerier) error {
					rec, err := j.GetTrade(args[0])
					if err != nil {
						return err
					}
					fmt.Println(journal.FormatTradeOrg(rec))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "today",
			Short: "Print trades closed today",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				start, end, err := dayBounds(time.Local, time.Now().Format("2006-01-02"))
				if err != nil {
					return err
				}
				return listTrades(rc, start, end)
			},
		},
		&cobra.Command{
			Use:   "day YYYY-MM-DD",
			Short: "Print trades closed on the given day",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				start, end, err := dayBounds(time.Local, args[0])
				if err != nil {
					return err
				}
				return listTrades(rc, start, end)
			},
		},
	)

	return cmd
}

func listTrades(rc *RootConfig, start, end time.Time) error {
	return withJournal(rc, func(j journalQuerier) error {
		recs, err := j.ListTradesClosedBetween(start, end)
		if err != nil {
			return fmt.Errorf("query trades: %w", err)
		}
		fmt.Println(journal.FormatTradesOrg(recs))
		return nil
	})
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date: %w", err)
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)
	return start, end, nil
}

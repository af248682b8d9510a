package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/paperdesk/account"
	"github.com/rustyeddy/paperdesk/ledger"
)

func newTradeCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Open, mark and close paper positions",
	}

	cmd.AddCommand(
		newTradeOpenCmd(rc),
		newTradeCloseCmd(rc),
		newTradeCloseAllCmd(rc),
		newTradeMarkCmd(rc),
	)

	return cmd
}

func newTradeOpenCmd(rc *RootConfig) *cobra.Command {
	var stop, take float64

	cmd := &cobra.Command{
		Use:   "open SYMBOL long|short SIZE PRICE",
		Short: "Open a position at the given fill price",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("bad size %q", args[2])
			}
			price, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("bad price %q", args[3])
			}

			var sl, tp *float64
			if cmd.Flags().Changed("stop") {
				sl = &stop
			}
			if cmd.Flags().Changed("take") {
				tp = &take
			}

			return withEngine(rc, func(e *account.Engine) error {
				id, err := e.PlaceTrade(args[0], ledger.Side(args[1]), size, price, sl, tp)
				if err != nil {
					return err
				}
				fmt.Printf("OPEN  %s %s %s size=%s entry=%s\n", id, args[0], args[1], args[2], args[3])
				return printAccount(e)
			})
		},
	}

	cmd.Flags().Float64Var(&stop, "stop", 0, "Stop-loss price")
	cmd.Flags().Float64Var(&take, "take", 0, "Take-profit price")
	return cmd
}

func newTradeCloseCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "close ID PRICE",
		Short: "Close one position at the given price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("bad price %q", args[1])
			}
			return withEngine(rc, func(e *account.Engine) error {
				if err := e.ClosePosition(args[0], price); err != nil {
					return err
				}
				return printAccount(e)
			})
		},
	}
}

func newTradeCloseAllCmd(rc *RootConfig) *cobra.Command {
	var profitable, losing bool

	cmd := &cobra.Command{
		Use:   "close-all PRICE",
		Short: "Close all (or all profitable / all losing) positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("bad price %q", args[0])
			}
			if profitable && losing {
				return fmt.Errorf("--profitable and --losing are mutually exclusive")
			}
			return withEngine(rc, func(e *account.Engine) error {
				switch {
				case profitable:
					err = e.CloseAllProfitable(price)
				case losing:
					err = e.CloseAllLosing(price)
				default:
					err = e.CloseAllPositions(price)
				}
				if err != nil {
					return err
				}
				return printAccount(e)
			})
		},
	}

	cmd.Flags().BoolVar(&profitable, "profitable", false, "Only close positions in profit at PRICE")
	cmd.Flags().BoolVar(&losing, "losing", false, "Only close positions at a loss at PRICE")
	return cmd
}

func newTradeMarkCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "mark SYMBOL PRICE",
		Short: "Re-mark open positions in SYMBOL at the given price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("bad price %q", args[1])
			}
			return withEngine(rc, func(e *account.Engine) error {
				if err := e.UpdatePrices(args[0], price); err != nil {
					return err
				}
				return printAccount(e)
			})
		},
	}
}

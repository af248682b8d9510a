package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/paperdesk/account"
	"github.com/rustyeddy/paperdesk/ledger"
)

func newRunCmd(rc *RootConfig) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scripted simulation from config (or a builtin demo)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rc)
			if err != nil {
				return err
			}
			e, err := openEngine(cfg)
			if err != nil {
				return err
			}
			defer e.Close()

			if len(cfg.Simulation.PriceSteps) == 0 {
				return demoRun(e)
			}

			for _, ps := range cfg.Simulation.PriceSteps {
				if wait {
					d, _ := ps.ParseDuration()
					time.Sleep(d)
				}
				if err := e.UpdatePrices(ps.Symbol, ps.Price); err != nil {
					return err
				}
				fmt.Printf("MARK  %s %.2f\n", ps.Symbol, ps.Price)
			}
			return printAccount(e)
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Honor step delays in real time")
	return cmd
}

// demoRun is the out-of-the-box scenario: open a long, watch it gain,
// close it. Mirrors what the dashboard does on first load.
func demoRun(e *account.Engine) error {
	id, err := e.PlaceTrade("ES", ledger.Long, 1, 5900.00, nil, nil)
	if err != nil {
		return err
	}
	fmt.Printf("OPEN  %s ES long size=1 entry=5900.00\n", id)

	if err := e.UpdatePrices("ES", 5906.50); err != nil {
		return err
	}
	fmt.Println("MARK  ES 5906.50")

	if err := e.ClosePosition(id, 5906.50); err != nil {
		return err
	}
	fmt.Println("CLOSE", id)

	return printAccount(e)
}

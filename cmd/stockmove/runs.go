package main

import (
	"github.com/spf13/cobra"

	"github.com/forfunphy/stockmove/internal/adapters/export"
	"github.com/forfunphy/stockmove/internal/adapters/notify"
)

var (
	runsLimit  int
	runsTrades string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List journaled runs, or print one run's trades as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if runsTrades != "" {
			trades, err := a.store.RunTrades(ctx, runsTrades)
			if err != nil {
				return err
			}
			return export.WriteTradesCSV(cmd.OutOrStdout(), trades)
		}

		runs, err := a.store.ListRuns(ctx, runsLimit)
		if err != nil {
			return err
		}
		notify.NewConsoleWriter(cmd.OutOrStdout(), verbose).PrintRuns(runs)
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of most recent runs to list")
	runsCmd.Flags().StringVar(&runsTrades, "trades", "", "print the closed trades of this run id as CSV")
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/forfunphy/stockmove/internal/adapters/notify"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>...",
	Short: "Normalize CSV price tables and store them as the instrument catalog",
	Long: "Reads one or more CSV tables (date, code, name, open, high, low, close, volume),\n" +
		"skips malformed rows, computes moving averages and replaces the stored catalog.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		console := notify.NewConsoleWriter(cmd.OutOrStdout(), verbose)
		rep, skipped, err := a.importFiles(cmd.Context(), args)
		if err != nil {
			if len(skipped) > 0 {
				console.PrintImport(rep, skipped, 0)
			}
			return err
		}
		instruments := a.session.Instruments()
		console.PrintImport(rep, skipped, len(instruments))
		console.PrintInstruments(instruments)
		return nil
	},
}

var instrumentsCmd = &cobra.Command{
	Use:   "instruments",
	Short: "List the instruments in the stored catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.loadData(cmd.Context()); err != nil {
			return err
		}
		notify.NewConsoleWriter(cmd.OutOrStdout(), verbose).PrintInstruments(a.session.Instruments())
		return nil
	},
}

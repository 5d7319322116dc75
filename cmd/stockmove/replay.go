package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/forfunphy/stockmove/internal/adapters/export"
	"github.com/forfunphy/stockmove/internal/adapters/notify"
	"github.com/forfunphy/stockmove/internal/application/engine"
	"github.com/forfunphy/stockmove/internal/domain"
)

var (
	replayInstrument string
	replayStrategy   string
	replayStart      string
	replayOut        string
	replayRealtime   bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay one instrument to the end of its data and print the report",
	Args:  cobra.NoArgs,
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().StringVarP(&replayInstrument, "instrument", "i", "", "instrument code (default: data.instrument or the first code)")
	replayCmd.Flags().StringVar(&replayStrategy, "strategy", "", "BUY_TODAY_SELL_TOMORROW | WEEKDAY_STRATEGY (overrides config)")
	replayCmd.Flags().StringVar(&replayStart, "start", "", "start month YYYY-MM (overrides config)")
	replayCmd.Flags().StringVarP(&replayOut, "out", "o", "", "write closed trades to this CSV file")
	replayCmd.Flags().BoolVar(&replayRealtime, "realtime", false, "pace ticks at playback.speed_ms instead of running back to back")
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.loadData(ctx); err != nil {
		return err
	}

	code := replayInstrument
	if code == "" {
		code = cfg.Data.Instrument
	}
	if code != "" {
		if err := a.session.SelectInstrument(code); err != nil {
			return err
		}
	}

	bt := a.backtest
	if !cfg.Backtest.HasStart() {
		if series := a.session.Controller().Series(); series.Len() > 0 {
			first := series.Bars[0].Time()
			bt.StartYear, bt.StartMonth = first.Year(), first.Month()
		}
	}
	bt, err = replayConfig(bt)
	if err != nil {
		return err
	}
	if bt.Strategy == domain.StrategyManual {
		return fmt.Errorf("replay: MANUAL needs an operator, use `stockmove serve`: %w", domain.ErrNotManual)
	}
	if err := a.session.Reconfigure(bt); err != nil {
		return err
	}

	console := notify.NewConsoleWriter(cmd.OutOrStdout(), verbose)
	runner := engine.NewRunner(a.session.Controller(), append(a.session.Observers(), console)...)

	start := time.Now()
	if err := runner.PlayToEnd(ctx, replayRealtime); err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	snap := a.session.Snapshot()
	slog.Info("replay complete",
		"code", snap.Code,
		"run_id", snap.RunID,
		"bars", snap.SeriesLength,
		"trades", len(snap.Trades),
		"elapsed", time.Since(start),
	)
	if err := console.Report(ctx, snap); err != nil {
		return err
	}

	if replayOut != "" {
		if err := export.WriteTradesFile(replayOut, snap.Trades); err != nil {
			return err
		}
		slog.Info("trades written", "path", replayOut, "count", len(snap.Trades))
	}
	return nil
}

// replayConfig applies the command line overrides to the configured backtest.
func replayConfig(bt domain.BacktestConfig) (domain.BacktestConfig, error) {
	if replayStrategy != "" {
		bt.Strategy = domain.StrategyKind(replayStrategy)
	}
	if replayStart != "" {
		t, err := time.Parse("2006-01", replayStart)
		if err != nil {
			return bt, fmt.Errorf("replay: --start %q: %w", replayStart, err)
		}
		bt.StartYear, bt.StartMonth = t.Year(), t.Month()
	}
	return bt, nil
}

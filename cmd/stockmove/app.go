package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/forfunphy/stockmove/internal/adapters/csvtable"
	"github.com/forfunphy/stockmove/internal/adapters/storage"
	"github.com/forfunphy/stockmove/internal/application/engine"
	"github.com/forfunphy/stockmove/internal/domain"
	"github.com/forfunphy/stockmove/internal/ports"
)

// app is the wiring shared by every subcommand.
type app struct {
	store    *storage.SQLiteStorage
	session  *engine.Session
	backtest domain.BacktestConfig
}

// openApp opens the store and builds a session around a controller
// configured from cfg.
func openApp() (*app, error) {
	bt, err := cfg.Backtest.ToDomain()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("open storage %q: %w", cfg.Storage.DSN, err)
	}

	ctrl := engine.NewController(nil, bt)
	ctrl.SetSpeed(cfg.Speed())
	ctrl.SetWindowSize(cfg.Playback.WindowSize)

	var journal ports.TradeJournal
	if cfg.Storage.Journal {
		journal = store
	}
	return &app{
		store:    store,
		session:  engine.NewSession(ctrl, store, journal),
		backtest: bt,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("storage close failed", "err", err)
	}
}

// importFiles reads paths and imports them into the session.
func (a *app) importFiles(ctx context.Context, paths []string) (domain.NormalizeReport, []domain.SkippedRow, error) {
	table, err := csvtable.LoadFiles(ctx, paths)
	if err != nil {
		return domain.NormalizeReport{}, nil, err
	}
	rep, err := a.session.Import(ctx, table.Records)
	return rep, append(table.Skipped, rep.Skipped...), err
}

// loadData imports the configured files when there are any, otherwise it
// restores the catalog saved by the last import.
func (a *app) loadData(ctx context.Context) error {
	if len(cfg.Data.Files) > 0 {
		_, _, err := a.importFiles(ctx, cfg.Data.Files)
		return err
	}
	ok, err := a.session.Restore(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no data: run `stockmove import <file.csv>` or set data.files: %w", domain.ErrNoData)
	}
	return nil
}

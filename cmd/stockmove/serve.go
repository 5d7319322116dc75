package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/forfunphy/stockmove/internal/adapters/httpapi"
	"github.com/forfunphy/stockmove/internal/adapters/notify"
	"github.com/forfunphy/stockmove/internal/application/engine"
	"github.com/forfunphy/stockmove/internal/domain"
	"github.com/forfunphy/stockmove/internal/ports"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the playback engine behind the HTTP control API",
	Long: "Loads data.files (or the stored catalog), then serves /api/v1 on api.addr.\n" +
		"Playback is driven by play/pause/step requests; the runner paces ticks.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// an empty store is fine here; data can arrive through POST /import
	if err := a.loadData(ctx); err != nil && !errors.Is(err, domain.ErrNoData) {
		return err
	}
	if cfg.Data.Instrument != "" {
		if err := a.session.SelectInstrument(cfg.Data.Instrument); err != nil {
			slog.Warn("configured instrument not found", "code", cfg.Data.Instrument)
		}
	}

	observers := a.session.Observers()
	if verbose {
		observers = append(observers, ports.TickObserver(notify.NewConsole(true)))
	}
	runner := engine.NewRunner(a.session.Controller(), observers...)

	srv := &http.Server{
		Addr: cfg.API.Addr,
		Handler: httpapi.NewRouter(a.session, httpapi.Options{
			AllowedOrigins: cfg.API.AllowedOrigins,
			Release:        cfg.Log.Level != "debug",
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("stockmove serving",
		"addr", cfg.API.Addr,
		"instruments", len(a.session.Instruments()),
		"selected", a.session.SelectedCode(),
		"journal", cfg.Storage.Journal,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("stockmove stopped cleanly")
	return nil
}

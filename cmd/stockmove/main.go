package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/forfunphy/stockmove/config"
)

const defaultConfigPath = "config/config.yaml"

var (
	configPath string
	verbose    bool
	logFormat  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "stockmove",
	Short:         "Replay daily stock bars one day at a time against a trading rule",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if verbose {
			loaded.Log.Level = "debug"
		}
		if logFormat != "" {
			loaded.Log.Format = logFormat
		}
		setupLogger(loaded.Log)
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "set log level to debug and print moving averages per tick")
	rootCmd.PersistentFlags().StringVar(&logFormat, "format", "", "log format: text|json (overrides config)")

	rootCmd.AddCommand(importCmd, instrumentsCmd, replayCmd, serveCmd, runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("stockmove failed", "err", err)
		os.Exit(1)
	}
}

// loadConfig reads --config. A missing file at the default path falls back
// to built-in defaults; an explicit path must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	loaded, err := config.Load(configPath)
	if err == nil {
		return loaded, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	return nil, fmt.Errorf("load config: %w", err)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// stdout carries the replay report
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

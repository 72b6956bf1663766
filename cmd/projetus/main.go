package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/farxc/projetus/internal/config"
	"github.com/farxc/projetus/internal/db"
	"github.com/farxc/projetus/internal/env"
	"github.com/farxc/projetus/internal/logger"
	"github.com/farxc/projetus/internal/store"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbosity  int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "projetus",
	Short: "PROJETUS extraction pipeline",
	Long:  "Normalizes Brazilian government transfer-proposal files into a relational model with lineage and reconciliation.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", env.GetString("PROJETUS_CONFIG", "config.yaml"), "path to config.yaml")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")
	rootCmd.AddCommand(runCmd, serveCmd)
}

// buildLogger maps -v/-vv onto the four-level logger the way the reference
// scales its own Logger.MinLevel: 0 -> warnings and up, 1 -> info, 2+ -> debug.
func buildLogger() *logger.Logger {
	level := logger.LevelWarn
	switch {
	case verbosity >= 2:
		level = logger.LevelDebug
	case verbosity == 1:
		level = logger.LevelInfo
	}
	return &logger.Logger{MinLevel: level}
}

func loadAppConfig() (config.Config, error) {
	return config.Load(configPath)
}

func openStorage(cfg config.Config) (*store.Storage, error) {
	conn, err := db.New(cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.MaxIdleTime)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	storage := store.NewStorage(conn)
	if err := storage.EnsureSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return storage, nil
}

// notifyContext wires SIGINT/SIGTERM into ctx cancellation, per §6.3's
// "130: interrupted" exit code and §4.11's cooperative-cancellation contract.
func notifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

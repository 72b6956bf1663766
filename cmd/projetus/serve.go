package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/farxc/projetus/internal/alert"
	"github.com/farxc/projetus/internal/dryrun"
	"github.com/farxc/projetus/internal/env"
	"github.com/farxc/projetus/internal/health"
	"github.com/farxc/projetus/internal/orchestrator"
	"github.com/farxc/projetus/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the daily scheduler and health endpoint, run until signal",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", env.GetString("PROJETUS_ADDR", ":8080"), "health endpoint listen address")
}

// runServe implements §6.3's `serve`: a cron.Cron fires the Orchestrator
// daily at extraction.hour:minute in extraction.timezone, and an
// http.Server answers /health and /ready the whole time. Both stop on
// SIGINT/SIGTERM.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	log := buildLogger()

	storage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer storage.DB.Close()

	loc, err := time.LoadLocation(cfg.Extraction.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Extraction.Timezone, err)
	}

	orch := orchestrator.New(storage, cfg, log)
	alerter := alert.New(cfg.Alerting, log)

	c := cron.New(cron.WithLocation(loc))
	spec := fmt.Sprintf("%d %d * * *", cfg.Extraction.Minute, cfg.Extraction.Hour)
	const component = "Scheduler"
	_, err = c.AddFunc(spec, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		log.Info(component, "scheduled run starting")
		result, runErr := orch.Run(ctx, orchestrator.RunOptions{
			Dir:     dryrun.FindLatestDataDirectory(cfg.Extraction.RawDataRoot),
			Trigger: store.TriggerTypeScheduled,
		})
		alerter.Send(summaryMessage(result, runErr))
		if runErr != nil {
			log.Error(component, "scheduled run failed: %v", runErr)
		}
	})
	if err != nil {
		return fmt.Errorf("register schedule %q: %w", spec, err)
	}
	c.Start()
	defer c.Stop()
	log.Info(component, "scheduler started: spec=%s timezone=%s", spec, cfg.Extraction.Timezone)

	publisher := health.New(storage, "projetus")
	srv := &http.Server{
		Addr:         serveAddr,
		Handler:      publisher.Mount(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  time.Minute,
	}

	ctx, cancel := notifyContext()
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		log.Info("HealthPublisher", "listening: addr=%s", serveAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info(component, "shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("health server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

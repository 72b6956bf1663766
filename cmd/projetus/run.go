package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/farxc/projetus/internal/alert"
	"github.com/farxc/projetus/internal/dryrun"
	"github.com/farxc/projetus/internal/orchestrator"
	"github.com/farxc/projetus/internal/store"
	"github.com/spf13/cobra"
)

var dryRunFlag bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a single pipeline run",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "parse and validate only, write nothing")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	log := buildLogger()

	if dryRunFlag {
		report := dryrun.Run(cfg.Extraction.RawDataRoot)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		if code := report.ExitCode(); code != exitSuccess {
			os.Exit(code)
		}
		return nil
	}

	storage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer storage.DB.Close()

	ctx, cancel := notifyContext()
	defer cancel()

	orch := orchestrator.New(storage, cfg, log)
	result, runErr := orch.Run(ctx, orchestrator.RunOptions{Dir: dryrun.FindLatestDataDirectory(cfg.Extraction.RawDataRoot), Trigger: store.TriggerTypeManual})

	alerter := alert.New(cfg.Alerting, log)
	alerter.Send(summaryMessage(result, runErr))

	if runErr != nil {
		return runErr
	}
	fmt.Printf("run %s finished: status=%s records=%d\n", result.RunID, result.Status, result.Counts.Total())
	return nil
}

func summaryMessage(result orchestrator.RunResult, runErr error) alert.Message {
	if runErr != nil {
		return alert.Message{
			RunID:    result.RunID,
			Subject:  "PROJETUS run failed",
			Body:     runErr.Error(),
			Severity: alert.SeverityCritical,
		}
	}
	severity := alert.SeverityInfo
	if result.Status == store.StatusPartial {
		severity = alert.SeverityWarning
	}
	return alert.Message{
		RunID:    result.RunID,
		Subject:  fmt.Sprintf("PROJETUS run %s: %s", result.RunID, result.Status),
		Body:     fmt.Sprintf("records=%d skipped_groups=%d warnings=%d", result.Counts.Total(), len(result.SkippedGroups), len(result.Warnings)),
		Severity: severity,
	}
}

package main

import (
	"context"
	"errors"

	"github.com/farxc/projetus/internal/orchestrator"
)

// Exit codes per §6.3: 0 success/partial, 1 infra failure, 2 validation-only
// dry-run failure, 130 interrupted.
const (
	exitSuccess          = 0
	exitInfraFailure     = 1
	exitValidationFailed = 2
	exitInterrupted      = 130
)

func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	var already orchestrator.ErrAlreadyRunning
	if errors.As(err, &already) {
		return exitInfraFailure
	}
	return exitInfraFailure
}

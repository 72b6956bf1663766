package main

import (
	"context"
	"errors"
	"testing"

	"github.com/farxc/projetus/internal/orchestrator"
	"github.com/stretchr/testify/assert"
)

func TestExitCodeForNilIsSuccess(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCodeFor(nil))
}

func TestExitCodeForCanceledIsInterrupted(t *testing.T) {
	assert.Equal(t, exitInterrupted, exitCodeFor(context.Canceled))
}

func TestExitCodeForAlreadyRunningIsInfraFailure(t *testing.T) {
	assert.Equal(t, exitInfraFailure, exitCodeFor(orchestrator.ErrAlreadyRunning{}))
}

func TestExitCodeForOtherErrorIsInfraFailure(t *testing.T) {
	assert.Equal(t, exitInfraFailure, exitCodeFor(errors.New("boom")))
}

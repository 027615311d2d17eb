package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Guide5210/Tensiometer-Arduino/src/logger"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func testApp() *App {
	return &App{
		Logger:  logger.NewLogger("ERROR", "test"),
		Input:   make(chan string, 1),
		Signals: make(chan os.Signal, 1),
	}
}

// -----------------------------------------------------------------------------

func TestRunCancellableCompletesNormally(t *testing.T) {
	a := testApp()

	err := a.runCancellable(func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

// -----------------------------------------------------------------------------

func TestRunCancellableCancelsOnQ(t *testing.T) {
	a := testApp()
	a.Input <- "q"

	err := a.runCancellable(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// -----------------------------------------------------------------------------

func TestRunCancellableSurvivesClosedInput(t *testing.T) {
	a := testApp()
	close(a.Input)

	// A closed stdin must neither cancel the operation nor be mistaken for
	// operator input; the operation runs to completion.
	err := a.runCancellable(func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
			return nil
		}
	})
	assert.NoError(t, err)
}

// -----------------------------------------------------------------------------

func TestRunCancellableCancelsOnSignal(t *testing.T) {
	a := testApp()
	a.Signals <- os.Interrupt

	err := a.runCancellable(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

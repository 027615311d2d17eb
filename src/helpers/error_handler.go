package helpers

import (
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type TensiometerError struct {
	Message string
	Cause   error
}

func (e *TensiometerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TensiometerError) Unwrap() error {
	return e.Cause
}

// ConnectionError: the line channel could not be opened. Fatal; the process
// exits non-zero.
type ConnectionError struct{ TensiometerError }

// WriteError: a command could not be sent. Fatal for the current operation,
// the session returns to idle; the connection is presumed still usable.
type WriteError struct{ TensiometerError }

// TimeoutError: the streaming deadline passed without a clean end marker.
// Recoverable; partial data is retained but flagged.
type TimeoutError struct{ TensiometerError }

// ValidationError: a completed run looks implausible (peak force near zero
// with a large sample count). Recoverable; the operator is offered a retry.
type ValidationError struct{ TensiometerError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewConnectionError(message string, cause error) error {
	return &ConnectionError{TensiometerError{Message: message, Cause: cause}}
}

func NewWriteError(message string, cause error) error {
	return &WriteError{TensiometerError{Message: message, Cause: cause}}
}

func NewTimeoutError(message string) error {
	return &TimeoutError{TensiometerError{Message: message}}
}

func NewValidationError(message string) error {
	return &ValidationError{TensiometerError{Message: message}}
}

// -----------------------------------------------------------------------------

// IsRecoverable reports whether the session can return to idle after err,
// rather than terminating. Connection-level failures are the only fatal class.
func IsRecoverable(err error) bool {
	var connErr *ConnectionError
	return err != nil && !errors.As(err, &connErr)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with exponential backoff.
func RetryWithBackoff(operation string, maxRetries int, baseDelay time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		fmt.Printf("Warning: Attempt %d/%d failed for %s: %v. Retrying in %v\n", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return nil, lastErr
}

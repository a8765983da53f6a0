package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the guidance core. Grounding and generation failures
// are deliberately absent: both are recovered inside the synthesis
// orchestrator via fallback narratives and never surface as errors. The
// conditions below are user-actionable and map to HTTP statuses at the
// server boundary.
var (
	// ErrValidation marks malformed input, e.g. an empty question.
	ErrValidation = errors.New("validation error")

	// ErrRetrievalUnavailable marks an unreachable or timed-out retrieval
	// backend.
	ErrRetrievalUnavailable = errors.New("retrieval backend unavailable")

	// ErrSessionNotFound marks an unknown or expired session id.
	ErrSessionNotFound = errors.New("session not found")
)

// Validationf wraps ErrValidation with detail.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// RetrievalUnavailable wraps the underlying transport error.
func RetrievalUnavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
}

// SessionNotFound wraps ErrSessionNotFound with the offending id.
func SessionNotFound(sessionID string) error {
	return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
}

// internal/providers/provider.go
package providers

import (
	"context"
	"fmt"
)

// Answer is what a platform returns for one prompt. Citations are only
// populated by platforms that surface source URLs natively; for the rest the
// analyzer scans the response text.
type Answer struct {
	Text      string
	Model     string
	Citations []string
}

// Provider is a single AI answer platform. Implementations must be safe for
// concurrent use.
type Provider interface {
	// Answer submits the prompt and returns the platform's response.
	// Failures are reported as *QueryError.
	Answer(ctx context.Context, prompt string) (*Answer, error)

	// Name returns the platform identifier (chatgpt, claude, perplexity, gemini).
	Name() string

	// Model returns the model identifier used for queries.
	Model() string
}

// QueryError is a failed platform query. Transient errors (rate limits,
// server errors, timeouts) are retried by the orchestrator; permanent errors
// (auth, malformed request) fail the task immediately.
type QueryError struct {
	Platform  string
	Transient bool
	Err       error
}

func (e *QueryError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s: %s query error: %v", e.Platform, kind, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as a retryable query failure.
func NewTransientError(platform string, err error) *QueryError {
	return &QueryError{Platform: platform, Transient: true, Err: err}
}

// NewPermanentError wraps err as a non-retryable query failure.
func NewPermanentError(platform string, err error) *QueryError {
	return &QueryError{Platform: platform, Transient: false, Err: err}
}

// IsTransient reports whether err is a retryable *QueryError. Anything that
// is not a QueryError counts as permanent.
func IsTransient(err error) bool {
	qe, ok := err.(*QueryError)
	return ok && qe.Transient
}

// transientStatus classifies HTTP status codes from platform APIs.
func transientStatus(code int) bool {
	return code == 408 || code == 429 || code >= 500
}

// internal/providers/classify.go
package providers

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

// Error classification for the direct-API adapters. Status-bearing API errors
// are classified by status code; everything else (network failures, timeouts)
// is treated as transient so the orchestrator retries it.

func classifyOpenAIError(platform string, err error) *QueryError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if transientStatus(apiErr.StatusCode) {
			return NewTransientError(platform, err)
		}
		return NewPermanentError(platform, err)
	}
	if errors.Is(err, context.Canceled) {
		return NewPermanentError(platform, err)
	}
	return NewTransientError(platform, err)
}

func classifyAnthropicError(platform string, err error) *QueryError {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		if transientStatus(apiErr.StatusCode) {
			return NewTransientError(platform, err)
		}
		return NewPermanentError(platform, err)
	}
	if errors.Is(err, context.Canceled) {
		return NewPermanentError(platform, err)
	}
	return NewTransientError(platform, err)
}

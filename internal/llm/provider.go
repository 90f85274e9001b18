package llm

import (
	"context"
)

// Completion is the text output of one prompt-completion call.
type Completion struct {
	Text           string
	Provider       string
	Model          string
	ProcessingTime int // milliseconds
}

// defines the interface for LLM providers
type Provider interface {
	GenerateCompletion(ctx context.Context, prompt string, requestID string) (*Completion, error)
	GetProviderName() string
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Common error codes
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)

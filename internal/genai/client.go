// Package genai is the text-generation client: a prompt goes in, generated
// text or an error comes out. Providers are interchangeable behind Client.
package genai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("genai: provider returned no text")

// Request is a single generation call.
type Request struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Response is the generated text plus provider bookkeeping.
type Response struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	FinishReason string
}

// Client generates text from a prompt.
type Client interface {
	// Generate sends the prompt and returns the generated text.
	Generate(ctx context.Context, req Request) (*Response, error)
	// Name returns the provider name.
	Name() string
}

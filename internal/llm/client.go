// Package llm streams component markdown from a language model.
package llm

import "context"

// Request is one generation request.
type Request struct {
	System string
	User   string
}

// NewRequest wraps a user's component description in the standard prompts.
func NewRequest(prompt string) Request {
	return Request{System: SystemPrompt, User: BuildUserPrompt(prompt)}
}

// Streamer produces model output incrementally. Stream calls onDelta with
// each non-empty text delta in order and returns when the model finishes,
// the context ends, or onDelta returns an error.
type Streamer interface {
	Stream(ctx context.Context, req Request, onDelta func(string) error) error
	Model() string
	Close()
}

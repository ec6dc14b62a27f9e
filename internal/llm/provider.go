// Package llm abstracts the outbound model call: send system+user text,
// receive raw text or fail. Everything above this package treats the
// model's output as untrusted input.
package llm

import (
	"context"
	"errors"
	"time"
)

// TimeoutCall bounds a single model call. There are no retries; one
// failure is final for the request and the caller falls back to the
// heuristic path.
const TimeoutCall = 60 * time.Second

// Domain errors for the llm package.
var (
	ErrNoChoices = errors.New("model returned no choices")
	ErrNoAPIKey  = errors.New("api key is required")
)

// Provider is the outbound model invoker.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai").
	Name() string
	// Generate sends one completion request and returns the raw response.
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// Request is a single model invocation.
type Request struct {
	Model           string
	Messages        []Message
	ReasoningEffort string // "minimal", "low", "medium", "high"; "" omits
	MaxOutputTokens int
}

// Message is one chat message.
type Message struct {
	Role    string // "system" or "user"
	Content string
}

// Response is the raw model output plus usage accounting.
type Response struct {
	Content      string
	FinishReason string
	InputTokens  int
	OutputTokens int
	Model        string
}

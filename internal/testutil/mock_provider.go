// Package testutil provides shared test helpers and mocks.
package testutil

import (
	"context"
	"sync"

	"github.com/Motiontography/motiontography-bot/internal/llm"
)

// MockProvider implements llm.Provider for tests without live API calls.
// Set Content to the canned raw model text; set Err to simulate failures.
type MockProvider struct {
	mu           sync.Mutex
	ProviderName string // provider identifier; defaults to "mock"
	Content      string // canned raw response text
	Err          error  // if set, Generate returns this error
	CallCount    int    // incremented on each Generate call
	LastRequest  *llm.Request
}

// Name returns the provider identifier (implements llm.Provider).
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Generate returns the canned response or the configured error, recording
// the request for assertions.
func (m *MockProvider) Generate(_ context.Context, req *llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	m.CallCount++
	reqCopy := *req
	m.LastRequest = &reqCopy
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return &llm.Response{
		Content:      m.Content,
		FinishReason: "stop",
		InputTokens:  10,
		OutputTokens: 20,
		Model:        req.Model,
	}, nil
}

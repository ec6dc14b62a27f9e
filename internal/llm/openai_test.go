package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockOpenAI returns an httptest server that answers chat completion
// requests with the given content, capturing the decoded request body.
func mockOpenAI(t *testing.T, content string, captured *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-5-mini",
			"choices": []map[string]interface{}{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 42, "completion_tokens": 17, "total_tokens": 59},
		})
	}))
}

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider("")
	require.ErrorIs(t, err, ErrNoAPIKey)

	p, err := NewOpenAIProvider("sk-test")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
}

func TestOpenAIGenerate(t *testing.T) {
	var captured map[string]interface{}
	srv := mockOpenAI(t, `{"reply": "Sessions start at $250."}`, &captured)
	defer srv.Close()

	p := NewOpenAIProviderWithBaseURL("test-key", srv.URL)
	resp, err := p.Generate(context.Background(), &Request{
		Model: "gpt-5-mini",
		Messages: []Message{
			{Role: "system", Content: "You answer customer questions."},
			{Role: "user", Content: "how much?"},
		},
		ReasoningEffort: "low",
		MaxOutputTokens: 600,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"reply": "Sessions start at $250."}`, resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 42, resp.InputTokens)
	assert.Equal(t, 17, resp.OutputTokens)
	assert.Equal(t, "gpt-5-mini", resp.Model)

	assert.Equal(t, "gpt-5-mini", captured["model"])
	msgs := captured["messages"].([]interface{})
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
	assert.Equal(t, "low", captured["reasoning_effort"])
}

func TestOpenAIGenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-5-mini",
			"choices": []interface{}{},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProviderWithBaseURL("test-key", srv.URL)
	_, err := p.Generate(context.Background(), &Request{Model: "gpt-5-mini"})
	require.ErrorIs(t, err, ErrNoChoices)
}

func TestOpenAIGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAIProviderWithBaseURL("test-key", srv.URL)
	_, err := p.Generate(context.Background(), &Request{Model: "gpt-5-mini"})
	require.Error(t, err)
}

package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Motiontography/motiontography-bot/internal/kb"
	"github.com/Motiontography/motiontography-bot/internal/testutil"
)

const engineKB = `
business:
  name: Motiontography
  phone: "(615) 555-0142"
  website: https://motiontography.com
  address: 428 Halcyon Avenue
  city: Nashville
  state: TN
links:
  portrait:
    studio: https://book.example.com/portrait-studio
    on_location: https://book.example.com/portrait-location
intents:
  - id: pricing
    triggers:
      - how much
      - pricing
    answer: Portrait sessions start at $250.
    followups:
      - Want the full price list?
    route:
      package: portrait
  - id: location
    triggers:
      - where are you
    answer: We are at 428 Halcyon Avenue in Nashville.
  - id: blank
    triggers:
      - rsvp codeword
    answer: ""
policy:
  grounding: Only answer from this knowledge base.
  tone: warm and brief
`

func engineSnap(t *testing.T) *kb.KnowledgeBase {
	t.Helper()
	snap, err := kb.Parse([]byte(engineKB))
	require.NoError(t, err)
	return snap
}

func modelSettings() ModelSettings {
	return ModelSettings{
		Model:           "gpt-5-mini",
		ReasoningEffort: "low",
		Verbosity:       "low",
		MaxOutputTokens: 600,
	}
}

func TestEngineHeuristicMatch(t *testing.T) {
	snap := engineSnap(t)
	e := NewEngine()
	assert.False(t, e.ModelEnabled())

	res := e.Handle(context.Background(), "How much is a portrait session?", snap)
	assert.Equal(t, "Portrait sessions start at $250.", res.Reply)
	assert.Equal(t, "pricing", res.MatchedIntentID)
	assert.Equal(t, []string{"Want the full price list?"}, res.Followups)
	assert.Equal(t, "https://book.example.com/portrait-studio", res.RouteURL)
	assert.False(t, res.UsedModel)
	assert.False(t, res.Escalated)
	assert.GreaterOrEqual(t, res.MatchScore, 2.0)
}

func TestEngineHeuristicRedactsAnswer(t *testing.T) {
	snap := engineSnap(t)
	res := NewEngine().Handle(context.Background(), "where are you located", snap)
	require.Equal(t, "location", res.MatchedIntentID)
	assert.NotContains(t, res.Reply, "428 Halcyon")
	assert.Contains(t, res.Reply, "studio in Nashville, TN")
}

func TestEngineNoMatchEscalates(t *testing.T) {
	snap := engineSnap(t)
	res := NewEngine().Handle(context.Background(), "asdkjhaskjdh", snap)
	assert.True(t, res.Escalated)
	assert.Empty(t, res.MatchedIntentID)
	assert.Zero(t, res.MatchScore)
	assert.Contains(t, res.Reply, "(615) 555-0142")
	assert.Contains(t, res.Reply, "https://motiontography.com/contact")
	assert.Empty(t, res.RouteURL)
}

func TestEngineEmptyAnswerEscalates(t *testing.T) {
	snap := engineSnap(t)
	res := NewEngine().Handle(context.Background(), "rsvp codeword please", snap)
	assert.True(t, res.Escalated, "a matched intent with no answer text cannot be shown")
	assert.Empty(t, res.MatchedIntentID)
	assert.GreaterOrEqual(t, res.MatchScore, 2.0, "the score survives for diagnostics")
	assert.Contains(t, res.Reply, "(615) 555-0142")
}

func TestEngineModelSuccess(t *testing.T) {
	snap := engineSnap(t)
	mock := &testutil.MockProvider{Content: `{
		"intent_id": "pricing",
		"confidence": 0.92,
		"reply": "Portraits start at $250 at our spot on 428 Halcyon Avenue.",
		"followups": ["Want the full price list?"],
		"links_shared": ["https://book.example.com/portrait-studio"],
		"kb_evidence": ["intents.pricing.answer"],
		"escalated": false
	}`}
	e := NewEngine(WithModel(mock, modelSettings()))
	require.True(t, e.ModelEnabled())

	res := e.Handle(context.Background(), "how much are portraits?", snap)
	assert.True(t, res.UsedModel)
	assert.Equal(t, "pricing", res.MatchedIntentID)
	assert.InDelta(t, 0.92, res.MatchScore, 1e-9)
	assert.Equal(t, "https://book.example.com/portrait-studio", res.RouteURL)
	assert.Equal(t, []string{"intents.pricing.answer"}, res.Evidence)
	assert.NotContains(t, res.Reply, "428 Halcyon", "model output is redacted too")
	assert.Contains(t, res.Reply, "studio in Nashville, TN")

	require.NotNil(t, mock.LastRequest)
	assert.Equal(t, "gpt-5-mini", mock.LastRequest.Model)
	require.Len(t, mock.LastRequest.Messages, 2)
	assert.NotContains(t, mock.LastRequest.Messages[1].Content, "address: 428",
		"the business address is pre-redacted before it reaches the provider")
	assert.Contains(t, mock.LastRequest.Messages[1].Content, "studio in Nashville, TN")
}

func TestEngineModelFailureFallsBack(t *testing.T) {
	snap := engineSnap(t)
	mock := &testutil.MockProvider{Err: errors.New("upstream timeout")}
	e := NewEngine(WithModel(mock, modelSettings()))

	res := e.Handle(context.Background(), "How much is a portrait session?", snap)
	assert.Equal(t, 1, mock.CallCount, "the model was attempted once")
	assert.False(t, res.UsedModel)
	assert.Equal(t, "pricing", res.MatchedIntentID, "fallback is the full heuristic path")
	assert.Equal(t, "Portrait sessions start at $250.", res.Reply)
}

func TestEngineModelParseFailureFallsBack(t *testing.T) {
	snap := engineSnap(t)
	mock := &testutil.MockProvider{Content: "Sure! Portraits start at $250."}
	e := NewEngine(WithModel(mock, modelSettings()))

	res := e.Handle(context.Background(), "How much is a portrait session?", snap)
	assert.False(t, res.UsedModel, "non-JSON model output aborts the model path")
	assert.Equal(t, "pricing", res.MatchedIntentID)
}

func TestEngineModelEscalates(t *testing.T) {
	snap := engineSnap(t)
	mock := &testutil.MockProvider{Content: `{"escalated": true, "reply": "", "confidence": 0.1}`}
	e := NewEngine(WithModel(mock, modelSettings()))

	res := e.Handle(context.Background(), "do you rent drones?", snap)
	assert.True(t, res.UsedModel)
	assert.True(t, res.Escalated)
	assert.Contains(t, res.Reply, "(615) 555-0142", "escalation uses the fixed safety text")
	assert.Empty(t, res.RouteURL)
}

func TestEngineModelEmptyReplyEscalates(t *testing.T) {
	snap := engineSnap(t)
	mock := &testutil.MockProvider{Content: `{"reply": "", "confidence": 0.4, "escalated": false}`}
	e := NewEngine(WithModel(mock, modelSettings()))

	res := e.Handle(context.Background(), "anything", snap)
	assert.True(t, res.Escalated, "a blank model answer is never shown as-is")
	assert.Contains(t, res.Reply, "(615) 555-0142")
}

func TestBuildSystemPrompt(t *testing.T) {
	snap := engineSnap(t)
	prompt := buildSystemPrompt(snap, "low")
	assert.Contains(t, prompt, "Motiontography")
	assert.Contains(t, prompt, "Only answer from this knowledge base.")
	assert.Contains(t, prompt, `"studio in Nashville, TN"`)
	assert.Contains(t, prompt, "two or three short sentences")
	assert.NotContains(t, prompt, "428 Halcyon")
}

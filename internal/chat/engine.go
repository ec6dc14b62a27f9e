package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Motiontography/motiontography-bot/internal/kb"
	"github.com/Motiontography/motiontography-bot/internal/llm"
	"github.com/Motiontography/motiontography-bot/internal/match"
	botel "github.com/Motiontography/motiontography-bot/internal/otel"
	"github.com/Motiontography/motiontography-bot/internal/respond"
)

var tracer = botel.Tracer("github.com/Motiontography/motiontography-bot/internal/chat")

// ModelSettings parameterizes the optional model path.
type ModelSettings struct {
	Model           string
	ReasoningEffort string
	Verbosity       string
	MaxOutputTokens int
}

// Engine answers one message at a time against a KB snapshot. It holds no
// per-request state; a single Engine serves concurrent requests.
type Engine struct {
	provider llm.Provider
	settings ModelSettings
}

// Option configures the Engine.
type Option func(*Engine)

// WithModel enables the model path with the given provider and settings.
func WithModel(p llm.Provider, s ModelSettings) Option {
	return func(e *Engine) {
		e.provider = p
		e.settings = s
	}
}

// NewEngine creates an Engine. Without WithModel it runs heuristic-only.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ModelEnabled reports whether the model path is configured.
func (e *Engine) ModelEnabled() bool {
	return e.provider != nil && e.settings.Model != ""
}

// Handle answers one message. It never returns an error for matching or
// model issues; the worst outcome is the escalation reply. Callers must
// reject empty messages before invoking it.
func (e *Engine) Handle(ctx context.Context, message string, snap *kb.KnowledgeBase) *Result {
	ctx, span := tracer.Start(ctx, "chat.handle")
	defer span.End()

	red := respond.NewRedactor(snap.Business)

	if e.ModelEnabled() {
		res, err := e.tryModel(ctx, message, snap, red)
		if err == nil {
			span.SetAttributes(
				attribute.Bool("chat.used_model", true),
				attribute.Bool("chat.escalated", res.Escalated),
			)
			return res
		}
		// Model failures are recovered locally: log for the operator,
		// never surface to the caller.
		log.Warn().Err(err).Func(botel.LogTraceFields(ctx)).Msg("model_path_failed")
	}

	res := e.heuristic(message, snap, red)
	span.SetAttributes(
		attribute.Bool("chat.used_model", false),
		attribute.Bool("chat.escalated", res.Escalated),
		attribute.Float64("chat.match_score", res.MatchScore),
	)
	return res
}

// heuristic runs the intent selector and formats the winning intent, or
// escalates. A matched intent that formats to empty text is treated as if
// the match had failed.
func (e *Engine) heuristic(message string, snap *kb.KnowledgeBase, red *respond.Redactor) *Result {
	sel := match.Select(message, snap.Intents)
	if !sel.Matched {
		return e.escalate(snap, red, float64(sel.Score))
	}

	rep := respond.Format(sel.Intent, snap.Links)
	if rep.Text == "" {
		return e.escalate(snap, red, float64(sel.Score))
	}

	return &Result{
		Reply:           red.Apply(rep.Text),
		Followups:       rep.Followups,
		RouteURL:        rep.RouteURL,
		MatchedIntentID: sel.Intent.ID,
		MatchScore:      float64(sel.Score),
		Evidence:        []string{},
	}
}

// escalate centralizes the safety-net reply; every escalation goes through
// here, never an inlined template.
func (e *Engine) escalate(snap *kb.KnowledgeBase, red *respond.Redactor, score float64) *Result {
	rep := respond.Escalation(snap.Business)
	return &Result{
		Reply:      red.Apply(rep.Text),
		Followups:  rep.Followups,
		MatchScore: score,
		Escalated:  true,
		Evidence:   []string{},
	}
}

// tryModel runs the model path end to end. Any failure (transport, empty
// content, parse) aborts the whole path; partial model output is never
// mixed with heuristic output.
func (e *Engine) tryModel(ctx context.Context, message string, snap *kb.KnowledgeBase, red *respond.Redactor) (*Result, error) {
	ctx, span := tracer.Start(ctx, "chat.model_attempt",
		trace.WithAttributes(botel.GenAIRequestModel.String(e.settings.Model)))
	defer span.End()

	kbText, err := snap.ForModel()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("serializing kb for model: %w", err)
	}

	resp, err := e.provider.Generate(ctx, &llm.Request{
		Model: e.settings.Model,
		Messages: []llm.Message{
			{Role: "system", Content: buildSystemPrompt(snap, e.settings.Verbosity)},
			{Role: "user", Content: buildUserPrompt(kbText, message)},
		},
		ReasoningEffort: e.settings.ReasoningEffort,
		MaxOutputTokens: e.settings.MaxOutputTokens,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	reply, err := decodeModelReply(resp.Content)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	res := &Result{
		Reply:           red.Apply(reply.Reply),
		Followups:       reply.Followups,
		MatchedIntentID: reply.IntentID,
		MatchScore:      reply.Confidence,
		UsedModel:       true,
		Escalated:       reply.Escalated,
		Evidence:        reply.KBEvidence,
	}
	if len(reply.LinksShared) > 0 {
		res.RouteURL = reply.LinksShared[0]
	}
	// An escalating or empty model reply still gets the fixed safety text
	// so the user never sees a blank answer.
	if res.Escalated || res.Reply == "" {
		esc := respond.Escalation(snap.Business)
		res.Reply = red.Apply(esc.Text)
		res.Followups = esc.Followups
		res.RouteURL = ""
		res.Escalated = true
	}
	return res, nil
}

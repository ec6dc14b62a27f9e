// Package chat is the single entry point for answering a customer message:
// it tries the model path when configured, falls back to the heuristic
// matcher on any model failure, applies the address redaction pass, and
// always produces one Result.
package chat

import "time"

// Result is the unified outcome of one chat request.
//
// MatchScore carries two incomparable scales: a whole-number trigger score
// on the heuristic path, a 0.0-1.0 confidence on the model path. UsedModel
// is the mandatory disambiguator; never compare the number across paths.
type Result struct {
	Reply           string   `json:"reply"`
	Followups       []string `json:"followups"`
	RouteURL        string   `json:"route_url,omitempty"`
	MatchedIntentID string   `json:"matched_intent_id,omitempty"`
	MatchScore      float64  `json:"match_score"`
	UsedModel       bool     `json:"used_model"`
	Escalated       bool     `json:"escalated"`
	Evidence        []string `json:"evidence,omitempty"`
}

// AuditRecord is the per-request record handed to the transcript sink.
// ClientMeta passes through verbatim; the core never inspects it.
type AuditRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	ClientMeta string    `json:"client_meta,omitempty"`
	Message    string    `json:"message"`
	Result     *Result   `json:"result"`
}

package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// modelReply is the fully-populated shape coerced out of raw model text.
// Every field is defaulted independently; a modelReply is never partially
// trusted.
type modelReply struct {
	IntentID    string
	Confidence  float64
	Reply       string
	Followups   []string
	LinksShared []string
	KBEvidence  []string
	Escalated   bool
}

// decodeModelReply strips optional code-fence markers, parses the text as
// JSON, and coerces each field defensively: wrong-typed fields default
// rather than being trusted. A parse failure is a hard failure of the
// model path; the orchestrator catches it and falls back to the heuristic.
func decodeModelReply(raw string) (*modelReply, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripFences(raw)), &fields); err != nil {
		return nil, fmt.Errorf("decoding model reply: %w", err)
	}
	return &modelReply{
		IntentID:    asString(fields["intent_id"]),
		Confidence:  asNumber(fields["confidence"]),
		Reply:       asString(fields["reply"]),
		Followups:   asStrings(fields["followups"]),
		LinksShared: asStrings(fields["links_shared"]),
		KBEvidence:  asStrings(fields["kb_evidence"]),
		Escalated:   asBool(fields["escalated"]),
	}, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag on the opening line.
func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if idx := strings.Index(t, "\n"); idx >= 0 {
		t = t[idx+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

func asString(raw json.RawMessage) string {
	var s string
	if raw == nil || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func asNumber(raw json.RawMessage) float64 {
	var f float64
	if raw == nil || json.Unmarshal(raw, &f) != nil {
		return 0
	}
	return f
}

func asBool(raw json.RawMessage) bool {
	var b bool
	if raw == nil || json.Unmarshal(raw, &b) != nil {
		return false
	}
	return b
}

func asStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if raw == nil || json.Unmarshal(raw, &items) != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			out = append(out, s)
		}
	}
	return out
}

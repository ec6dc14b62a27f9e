package kb

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// TriggerKind distinguishes how a trigger is scored.
type TriggerKind int

const (
	// TriggerLiteral is a plain phrase matched as a substring after
	// normalization.
	TriggerLiteral TriggerKind = iota
	// TriggerPattern is a /pattern/flags regex tested against the raw
	// message (patterns may care about original casing or whitespace).
	TriggerPattern
	// TriggerInert is a pattern trigger whose regex failed to compile.
	// It contributes nothing, forever; the failure is decided once at
	// load time, never per request.
	TriggerInert
)

// Trigger is a pre-parsed trigger string. The kind, normalized literal,
// word split, and compiled pattern are all derived once when the KB loads.
type Trigger struct {
	Raw     string
	Kind    TriggerKind
	Literal string         // normalized phrase, literal triggers only
	Words   []string       // whitespace split of Literal
	Pattern *regexp.Regexp // compiled regex, pattern triggers only
}

// UnmarshalYAML parses a trigger scalar into its tagged form.
func (t *Trigger) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*t = ParseTrigger(raw)
	return nil
}

// MarshalYAML round-trips the raw trigger text.
func (t Trigger) MarshalYAML() (interface{}, error) { return t.Raw, nil }

// ParseTrigger classifies a raw trigger string. A trigger is a pattern iff
// it starts with "/" and a second "/" occurs later; "/" alone or "/x" with
// no closing delimiter stays literal text.
func ParseTrigger(raw string) Trigger {
	if strings.HasPrefix(raw, "/") {
		if last := strings.LastIndex(raw, "/"); last > 0 {
			body := raw[1:last]
			flags := raw[last+1:]
			re, err := compilePattern(body, flags)
			if err != nil {
				return Trigger{Raw: raw, Kind: TriggerInert}
			}
			return Trigger{Raw: raw, Kind: TriggerPattern, Pattern: re}
		}
	}
	lit := Normalize(raw)
	return Trigger{
		Raw:     raw,
		Kind:    TriggerLiteral,
		Literal: lit,
		Words:   strings.Fields(lit),
	}
}

// compilePattern translates the JS-style trailing flags that appear in KB
// files (i, m, s) into Go inline flags. Flags with no Go equivalent (g, u)
// are ignored; g is implied by how patterns are used and u by UTF-8.
func compilePattern(body, flags string) (*regexp.Regexp, error) {
	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			inline.WriteRune(f)
		}
	}
	if inline.Len() > 0 {
		body = "(?" + inline.String() + ")" + body
	}
	return regexp.Compile(body)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize case-folds, collapses internal whitespace runs to a single
// space, and trims. Applied to messages and literal triggers before
// comparison; never applied before pattern matching.
func Normalize(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(strings.ToLower(s), " "))
}

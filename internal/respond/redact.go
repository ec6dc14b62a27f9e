package respond

import (
	"regexp"
	"strings"

	"github.com/Motiontography/motiontography-bot/internal/kb"
)

// suffixGroups maps every spelling of a street-word to its full alternation
// so the redactor catches abbreviation variants ("Street", "St", "St.").
var suffixGroups = [][]string{
	{"street", "st"},
	{"avenue", "ave", "av"},
	{"boulevard", "blvd"},
	{"road", "rd"},
	{"drive", "dr"},
	{"lane", "ln"},
	{"court", "ct"},
	{"place", "pl"},
	{"suite", "ste"},
	{"north", "n"},
	{"south", "s"},
	{"east", "e"},
	{"west", "w"},
}

// Redactor scrubs the exact studio address from outbound reply text,
// replacing it with the disclosure-safe location phrase. It is applied
// unconditionally to every reply regardless of origin: KB-authored text is
// already safe, but this guards future KB edits and model leakage.
type Redactor struct {
	pattern *regexp.Regexp
	safe    string
}

// NewRedactor builds a redactor from the business facts. With no address
// configured the redactor is a no-op.
func NewRedactor(b kb.Business) *Redactor {
	tokens := strings.FieldsFunc(b.Address, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '\t'
	})
	if len(tokens) == 0 {
		return &Redactor{}
	}
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tokenPattern(tok)
	}
	// Tokens may be separated by spaces, commas, or periods in the text
	// being scrubbed, in any run.
	expr := `(?i)` + strings.Join(parts, `[\s,.]+`) + `\.?`
	return &Redactor{
		pattern: regexp.MustCompile(expr),
		safe:    b.SafeLocation(),
	}
}

// tokenPattern returns the regex fragment for one address token: street
// words expand to their abbreviation alternation, everything else is
// matched literally.
func tokenPattern(tok string) string {
	low := strings.ToLower(tok)
	for _, group := range suffixGroups {
		for _, spelling := range group {
			if low == spelling {
				return `(?:` + strings.Join(group, `|`) + `)\.?`
			}
		}
	}
	return regexp.QuoteMeta(tok)
}

// Apply replaces occurrences of the address with the safe phrase. Running
// it on already-redacted text is a no-op.
func (r *Redactor) Apply(text string) string {
	if r.pattern == nil {
		return text
	}
	return r.pattern.ReplaceAllString(text, r.safe)
}

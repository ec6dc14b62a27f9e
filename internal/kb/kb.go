// Package kb defines the knowledge base: the curated set of intents,
// business facts, and booking links that every answer must be grounded in.
//
// A KnowledgeBase is loaded from YAML, validated once, and then treated as
// an immutable snapshot for the lifetime of each chat request. Reloading
// produces a fresh snapshot swapped in atomically by the Cache; nothing in
// the request path ever mutates a loaded KB.
package kb

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KnowledgeBase is the validated, read-only snapshot the chat engine
// answers from.
type KnowledgeBase struct {
	Business Business  `yaml:"business" json:"business"`
	Links    LinkTable `yaml:"links" json:"links"`
	Intents  []Intent  `yaml:"intents" json:"intents"`
	Policy   Policy    `yaml:"policy" json:"policy"`
}

// Business holds contact facts. Address is the one fact that must never be
// disclosed verbatim; replies refer to SafeLocation() instead.
type Business struct {
	Name    string `yaml:"name" json:"name"`
	Phone   string `yaml:"phone" json:"phone"`
	Website string `yaml:"website" json:"website"`
	Address string `yaml:"address,omitempty" json:"address,omitempty"`
	City    string `yaml:"city,omitempty" json:"city,omitempty"`
	State   string `yaml:"state,omitempty" json:"state,omitempty"`
}

// SafeLocation is the disclosure-safe stand-in for the street address.
func (b Business) SafeLocation() string {
	switch {
	case b.City != "" && b.State != "":
		return fmt.Sprintf("studio in %s, %s", b.City, b.State)
	case b.City != "":
		return fmt.Sprintf("studio in %s", b.City)
	default:
		return "studio"
	}
}

// Policy holds guardrail metadata injected into the model prompt and
// surfaced in the escalation template.
type Policy struct {
	Grounding  string `yaml:"grounding" json:"grounding"`
	Disclosure string `yaml:"disclosure,omitempty" json:"disclosure,omitempty"`
	Tone       string `yaml:"tone,omitempty" json:"tone,omitempty"`
}

// Intent is one answerable question category.
type Intent struct {
	ID        string     `yaml:"id" json:"id"`
	Triggers  []Trigger  `yaml:"triggers" json:"triggers"`
	Answer    AnswerText `yaml:"answer" json:"answer"`
	Followups []string   `yaml:"followups,omitempty" json:"followups,omitempty"`
	Route     *Route     `yaml:"route,omitempty" json:"route,omitempty"`
}

// Route points at a booking or contact URL, either directly or through the
// link table.
type Route struct {
	URL     string `yaml:"url,omitempty" json:"url,omitempty"`
	Package string `yaml:"package,omitempty" json:"package,omitempty"`
	Mode    string `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// AnswerText accepts either a single YAML scalar or a sequence of blocks.
// Reply() joins non-empty blocks with a blank line.
type AnswerText struct {
	Blocks []string
}

// UnmarshalYAML accepts `answer: "text"` and `answer: ["a", "b"]`.
func (a *AnswerText) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		a.Blocks = []string{s}
		return nil
	case yaml.SequenceNode:
		var blocks []string
		if err := node.Decode(&blocks); err != nil {
			return err
		}
		a.Blocks = blocks
		return nil
	default:
		return fmt.Errorf("answer must be a string or a list of strings (line %d)", node.Line)
	}
}

// MarshalYAML round-trips a single block as a scalar.
func (a AnswerText) MarshalYAML() (interface{}, error) {
	if len(a.Blocks) == 1 {
		return a.Blocks[0], nil
	}
	return a.Blocks, nil
}

// Reply joins the answer blocks with a blank-line separator, dropping
// empty blocks first, and trims the result.
func (a AnswerText) Reply() string {
	var kept []string
	for _, b := range a.Blocks {
		if strings.TrimSpace(b) != "" {
			kept = append(kept, strings.TrimSpace(b))
		}
	}
	return strings.Join(kept, "\n\n")
}

// Parse decodes YAML bytes into a KnowledgeBase and validates it.
// Triggers are pre-parsed here (literal vs pattern, compile-once) so the
// scoring path never re-derives trigger kinds per request.
func Parse(data []byte) (*KnowledgeBase, error) {
	var snap KnowledgeBase
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing knowledge base YAML: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// LoadFile reads and parses a knowledge base file from disk.
func LoadFile(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge base %s: %w", path, err)
	}
	snap, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("knowledge base %s: %w", path, err)
	}
	return snap, nil
}

// Validate enforces the shape invariant: a KB is usable only when it carries
// business facts, a link table, intents, and policy metadata. An incomplete
// KB fails fast here rather than producing ungrounded answers later.
func (k *KnowledgeBase) Validate() error {
	var missing []string
	if k.Business.Name == "" && k.Business.Phone == "" && k.Business.Website == "" {
		missing = append(missing, "business")
	}
	if len(k.Links) == 0 {
		missing = append(missing, "links")
	}
	if len(k.Intents) == 0 {
		missing = append(missing, "intents")
	}
	if k.Policy.Grounding == "" {
		missing = append(missing, "policy.grounding")
	}
	if len(missing) > 0 {
		return fmt.Errorf("knowledge base incomplete: missing %s", strings.Join(missing, ", "))
	}
	for i, intent := range k.Intents {
		if intent.ID == "" {
			return fmt.Errorf("intent %d: id is required", i)
		}
		if len(intent.Triggers) == 0 {
			return fmt.Errorf("intent %q: at least one trigger is required", intent.ID)
		}
	}
	return nil
}

// InertTriggers returns the raw text of every trigger whose pattern failed
// to compile. Used by `motionbot validate` to surface authoring mistakes
// that the request path deliberately tolerates.
func (k *KnowledgeBase) InertTriggers() []string {
	var inert []string
	for _, intent := range k.Intents {
		for _, t := range intent.Triggers {
			if t.Kind == TriggerInert {
				inert = append(inert, t.Raw)
			}
		}
	}
	return inert
}

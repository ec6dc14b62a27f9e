package kb

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LinkTable maps a package identifier to its booking link(s).
type LinkTable map[string]LinkEntry

// LinkEntry is either a single URL or a mode-keyed set of URLs (e.g.
// "studio" vs "on_location"). Mode order is preserved from the source file
// so the no-such-mode fallback is deterministic.
type LinkEntry struct {
	URL   string
	Modes []ModeURL
}

// ModeURL is one delivery-mode link within a mode-keyed entry.
type ModeURL struct {
	Mode string
	URL  string
}

// UnmarshalYAML accepts `pkg: "https://..."` and `pkg: {studio: "...", on_location: "..."}`.
func (e *LinkEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&e.URL)
	case yaml.MappingNode:
		// Walk the mapping pairs directly to keep source order.
		for i := 0; i+1 < len(node.Content); i += 2 {
			var mode, url string
			if err := node.Content[i].Decode(&mode); err != nil {
				return err
			}
			if err := node.Content[i+1].Decode(&url); err != nil {
				return err
			}
			e.Modes = append(e.Modes, ModeURL{Mode: mode, URL: url})
		}
		return nil
	default:
		return fmt.Errorf("link entry must be a URL or a mode mapping (line %d)", node.Line)
	}
}

// MarshalYAML round-trips bare-string entries as scalars and mode entries
// as an order-preserving mapping.
func (e LinkEntry) MarshalYAML() (interface{}, error) {
	if len(e.Modes) == 0 {
		return e.URL, nil
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, m := range e.Modes {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: m.Mode},
			&yaml.Node{Kind: yaml.ScalarNode, Value: m.URL},
		)
	}
	return node, nil
}

// ModeURLFor returns the URL for the given mode. A bare-string entry wins
// regardless of mode; a mode-keyed entry prefers the exact mode and falls
// back to the first entry in source order. Empty string means no link.
func (e LinkEntry) ModeURLFor(mode string) string {
	if e.URL != "" {
		return e.URL
	}
	for _, m := range e.Modes {
		if m.Mode == mode && m.URL != "" {
			return m.URL
		}
	}
	for _, m := range e.Modes {
		if m.URL != "" {
			return m.URL
		}
	}
	return ""
}

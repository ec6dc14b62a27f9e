// Package kbdata provides the embedded default knowledge base so the bot
// answers out of the box with no kb_path configured.
package kbdata

import _ "embed"

//go:embed kb.yaml
var defaultKBYAML []byte

// DefaultKBYAML returns the embedded default knowledge base.
func DefaultKBYAML() []byte { return defaultKBYAML }

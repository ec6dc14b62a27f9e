// Package respond turns a selected intent (or the lack of one) into the
// final outbound reply: route resolution, answer formatting, the fixed
// escalation template, and the address redaction pass.
package respond

import "github.com/Motiontography/motiontography-bot/internal/kb"

// DefaultMode is assumed when a package route names no delivery mode.
const DefaultMode = "studio"

// ResolveRoute turns a route descriptor into a concrete URL, or "" when no
// link can be produced. A dangling package id or empty URL degrades to "no
// link"; it never fails the request.
func ResolveRoute(r *kb.Route, links kb.LinkTable) string {
	if r == nil {
		return ""
	}
	if r.URL != "" {
		return r.URL
	}
	if r.Package == "" {
		return ""
	}
	entry, ok := links[r.Package]
	if !ok {
		return ""
	}
	mode := r.Mode
	if mode == "" {
		mode = DefaultMode
	}
	return entry.ModeURLFor(mode)
}

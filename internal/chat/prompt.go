package chat

import (
	"fmt"
	"strings"

	"github.com/Motiontography/motiontography-bot/internal/kb"
)

// verbosityHints maps the configured verbosity level to a concrete length
// instruction in the system prompt.
var verbosityHints = map[string]string{
	"low":    "Keep replies to two or three short sentences.",
	"medium": "Keep replies to a short paragraph.",
	"high":   "Reply with as much detail as the knowledge base supports.",
}

// buildSystemPrompt produces the grounding contract the model must follow:
// answer only from the injected knowledge base, never emit the street
// address, escalate when ungrounded, and output nothing but the JSON shape.
func buildSystemPrompt(snap *kb.KnowledgeBase, verbosity string) string {
	var b strings.Builder
	b.WriteString("You answer customer questions for ")
	if snap.Business.Name != "" {
		b.WriteString(snap.Business.Name)
	} else {
		b.WriteString("a small business")
	}
	b.WriteString(".\n\n")
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- %s\n", snap.Policy.Grounding)
	if snap.Policy.Disclosure != "" {
		fmt.Fprintf(&b, "- %s\n", snap.Policy.Disclosure)
	}
	fmt.Fprintf(&b, "- Never state the exact street address; say %q instead.\n", snap.Business.SafeLocation())
	b.WriteString("- If the knowledge base does not ground an answer, set \"escalated\": true and leave \"reply\" empty.\n")
	if snap.Policy.Tone != "" {
		fmt.Fprintf(&b, "- Tone: %s\n", snap.Policy.Tone)
	}
	if hint, ok := verbosityHints[verbosity]; ok {
		fmt.Fprintf(&b, "- %s\n", hint)
	}
	b.WriteString("\nRespond with a single JSON object and no surrounding prose:\n")
	b.WriteString(`{"intent_id": "", "confidence": 0.0, "reply": "", "followups": [], "links_shared": [], "kb_evidence": [], "escalated": false}`)
	return b.String()
}

// buildUserPrompt injects the pre-redacted KB serialization and the
// customer message.
func buildUserPrompt(kbForModel, message string) string {
	return fmt.Sprintf("Knowledge base:\n---\n%s---\n\nCustomer message: %s", kbForModel, message)
}

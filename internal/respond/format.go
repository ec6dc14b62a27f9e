package respond

import "github.com/Motiontography/motiontography-bot/internal/kb"

// Reply is the formatted output for one intent (or the escalation).
type Reply struct {
	Text      string
	Followups []string
	RouteURL  string
}

// Format assembles the reply for a matched intent. An empty Text after
// formatting means the intent cannot be shown; the caller must substitute
// the escalation reply instead.
func Format(intent *kb.Intent, links kb.LinkTable) Reply {
	followups := intent.Followups
	if followups == nil {
		followups = []string{}
	}
	return Reply{
		Text:      intent.Answer.Reply(),
		Followups: followups,
		RouteURL:  ResolveRoute(intent.Route, links),
	}
}

package respond

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Motiontography/motiontography-bot/internal/kb"
)

// DefaultPhone is used when the KB omits a business phone number, so the
// escalation reply always offers a human channel.
const DefaultPhone = "(312) 555-0184"

// contactPath is appended to the business website to form the contact URL.
const contactPath = "/contact"

// doubledSlashes matches a slash run that follows a non-slash, non-colon
// character, so collapsing never touches the "scheme://" separator.
var doubledSlashes = regexp.MustCompile(`([^:/])/{2,}`)

// Escalation builds the fixed safety-net reply: an apology, a phone
// number, and a contact link. It carries no followups and no route URL;
// callers must mark the result as escalated.
func Escalation(b kb.Business) Reply {
	phone := b.Phone
	if phone == "" {
		phone = DefaultPhone
	}
	text := fmt.Sprintf(
		"I don't want to guess on that one! Call or text us at %s and a real person will get you sorted.",
		phone,
	)
	if contact := ContactURL(b.Website); contact != "" {
		text = fmt.Sprintf(
			"I don't want to guess on that one! Call or text us at %s, or drop us a note at %s and a real person will get you sorted.",
			phone, contact,
		)
	}
	return Reply{Text: text, Followups: []string{}}
}

// ContactURL appends the contact path to the website and collapses any
// accidental doubled path separators. "" in, "" out.
func ContactURL(website string) string {
	if strings.TrimSpace(website) == "" {
		return ""
	}
	joined := strings.TrimSpace(website) + contactPath
	return doubledSlashes.ReplaceAllString(joined, "$1/")
}

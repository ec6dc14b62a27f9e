// Package match implements the heuristic intent scorer: per-trigger
// contributions, per-intent sums, and best-intent selection with a
// confidence floor that keeps coincidental overlaps from being answered.
package match

import (
	"math"
	"strings"

	"github.com/Motiontography/motiontography-bot/internal/kb"
)

// Per-trigger contributions. A literal trigger can earn the substring hit
// and the partial-word bonus independently; a pattern trigger earns the
// pattern hit or nothing.
const (
	PatternHit       = 3
	SubstringHit     = 2
	PartialWordBonus = 1

	// partialWordRatio is the fraction of a multi-word trigger's words
	// that must individually appear in the message to earn the bonus.
	partialWordRatio = 0.7

	// MinScore is the acceptance floor: a best score below this reports
	// no match. One substring hit is the minimum bar.
	MinScore = SubstringHit
)

// TriggerScore returns one trigger's contribution for a message. rawMsg is
// the unmodified message (patterns may need original casing/whitespace);
// normMsg is kb.Normalize(rawMsg), computed once by the caller.
func TriggerScore(rawMsg, normMsg string, t kb.Trigger) int {
	switch t.Kind {
	case kb.TriggerPattern:
		if t.Pattern.MatchString(rawMsg) {
			return PatternHit
		}
		return 0
	case kb.TriggerInert:
		return 0
	}

	if t.Literal == "" {
		return 0
	}
	score := 0
	if strings.Contains(normMsg, t.Literal) {
		score += SubstringHit
	}
	if len(t.Words) >= 2 {
		hits := 0
		for _, w := range t.Words {
			if strings.Contains(normMsg, w) {
				hits++
			}
		}
		need := int(math.Ceil(partialWordRatio * float64(len(t.Words))))
		if hits >= need {
			score += PartialWordBonus
		}
	}
	return score
}

// IntentScore sums TriggerScore over every trigger of the intent. There is
// no normalization across trigger count; richly-tagged intents accumulate
// more opportunities to score, which is intentional.
func IntentScore(rawMsg, normMsg string, intent kb.Intent) int {
	total := 0
	for _, t := range intent.Triggers {
		total += TriggerScore(rawMsg, normMsg, t)
	}
	return total
}

// Selection is the outcome of a full intent scan.
type Selection struct {
	Intent  *kb.Intent
	Score   int
	Matched bool
}

// Select scans every intent, tracks the maximum score, and accepts the best
// intent when it clears MinScore. The strictly-greater comparison means the
// first intent to reach the maximum wins ties against later equals. Score
// is populated even when nothing matched, for diagnostics.
func Select(message string, intents []kb.Intent) Selection {
	norm := kb.Normalize(message)
	best := Selection{}
	for i := range intents {
		s := IntentScore(message, norm, intents[i])
		if s > best.Score {
			best.Score = s
			best.Intent = &intents[i]
		}
	}
	if best.Score < MinScore {
		return Selection{Score: best.Score}
	}
	best.Matched = true
	return best
}

package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Motiontography/motiontography-bot/internal/kb"
)

func intent(id string, triggers ...string) kb.Intent {
	parsed := make([]kb.Trigger, len(triggers))
	for i, t := range triggers {
		parsed[i] = kb.ParseTrigger(t)
	}
	return kb.Intent{ID: id, Triggers: parsed}
}

func TestTriggerScore(t *testing.T) {
	tests := []struct {
		name    string
		message string
		trigger string
		want    int
	}{
		{
			name:    "substring hit",
			message: "how much is a session",
			trigger: "how much",
			want:    SubstringHit + PartialWordBonus, // both words also appear individually
		},
		{
			name:    "single-word substring has no word bonus",
			message: "tell me about pricing",
			trigger: "pricing",
			want:    SubstringHit,
		},
		{
			name:    "partial overlap below the word threshold",
			message: "what do I wear for a maternity shoot",
			trigger: "what to wear",
			want:    0, // 2 of 3 words hit; ceil(0.7*3)=3 required
		},
		{
			name:    "no overlap",
			message: "asdkjhaskjdh",
			trigger: "gift card",
			want:    0,
		},
		{
			name:    "pattern hit",
			message: "Do you have gift cards?",
			trigger: `/\bgift\s*card/i`,
			want:    PatternHit,
		},
		{
			name:    "pattern miss",
			message: "do you have vouchers",
			trigger: `/\bgift\s*card/i`,
			want:    0,
		},
		{
			name:    "inert pattern contributes zero",
			message: "anything at all",
			trigger: `/[broken/i`,
			want:    0,
		},
		{
			name:    "empty literal contributes zero",
			message: "anything",
			trigger: "   ",
			want:    0,
		},
		{
			name:    "case and whitespace insensitive literal",
			message: "  WHAT   TO   WEAR??  ",
			trigger: "what to wear",
			want:    SubstringHit + PartialWordBonus,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trig := kb.ParseTrigger(tt.trigger)
			norm := kb.Normalize(tt.message)
			got := TriggerScore(tt.message, norm, trig)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0, "contributions are never negative")
			assert.LessOrEqual(t, got, PatternHit, "contributions never exceed the maximum")
		})
	}
}

func TestPartialWordThreshold(t *testing.T) {
	// "what to wear" = 3 words; ceil(0.7*3) = 3, so all three must appear.
	trig := kb.ParseTrigger("what to wear")
	msg := "what do I wear for a maternity shoot"
	norm := kb.Normalize(msg)
	// Only "what" and "wear" appear: 2 of 3 words, below threshold, score 0.
	assert.Equal(t, 0, TriggerScore(msg, norm, trig))

	// With a two-word trigger, ceil(0.7*2) = 2: both words present earns the bonus.
	two := kb.ParseTrigger("wear what")
	assert.Equal(t, PartialWordBonus, TriggerScore(msg, norm, two))
}

func TestIntentScoreAdditivity(t *testing.T) {
	in := intent("pricing", "how much", "pricing", "what do you charge", `/\bcost\b/i`)
	msg := "How much does a session cost?"
	norm := kb.Normalize(msg)

	sum := 0
	for _, trig := range in.Triggers {
		sum += TriggerScore(msg, norm, trig)
	}
	assert.Equal(t, sum, IntentScore(msg, norm, in), "intent score is exactly the trigger sum")
	assert.Greater(t, sum, 0)
}

func TestSelectThresholdBoundary(t *testing.T) {
	// A partial-word-only hit scores exactly 1: must escalate.
	weak := intent("weak", "wear what")
	sel := Select("what do I wear for a maternity shoot", []kb.Intent{weak})
	assert.False(t, sel.Matched)
	assert.Equal(t, 1, sel.Score, "score is still reported for diagnostics")

	// A bare substring hit scores exactly 2: must match.
	ok := intent("ok", "pricing")
	sel = Select("tell me about pricing", []kb.Intent{ok})
	require.True(t, sel.Matched)
	assert.Equal(t, 2, sel.Score)
	assert.Equal(t, "ok", sel.Intent.ID)
}

func TestSelectTieBreakFirstWins(t *testing.T) {
	first := intent("first", "gift card")
	second := intent("second", "gift card")
	sel := Select("can I buy a gift card", []kb.Intent{first, second})
	require.True(t, sel.Matched)
	assert.Equal(t, "first", sel.Intent.ID, "earlier intent wins equal scores")
}

func TestSelectWearScenario(t *testing.T) {
	wardrobe := intent("what_to_wear", "what to wear", "what should i wear", "wear", "outfit")
	other := intent("hours", "when are you open")
	sel := Select("what do I wear for a maternity shoot", []kb.Intent{other, wardrobe})
	require.True(t, sel.Matched)
	assert.Equal(t, "what_to_wear", sel.Intent.ID)
	assert.GreaterOrEqual(t, sel.Score, MinScore)
}

func TestSelectGiftCardPattern(t *testing.T) {
	cards := intent("gift_cards", `/\bgift\s*card/i`)
	sel := Select("Do you have gift cards?", []kb.Intent{cards})
	require.True(t, sel.Matched)
	assert.Equal(t, "gift_cards", sel.Intent.ID)
	assert.Equal(t, PatternHit, sel.Score)
}

func TestSelectNoOverlapEscalates(t *testing.T) {
	intents := []kb.Intent{
		intent("pricing", "how much", "pricing"),
		intent("hours", "when are you open"),
	}
	sel := Select("asdkjhaskjdh", intents)
	assert.False(t, sel.Matched)
	assert.Nil(t, sel.Intent)
	assert.Equal(t, 0, sel.Score)
}

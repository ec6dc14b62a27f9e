package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind TriggerKind
	}{
		{name: "plain phrase", raw: "gift card", wantKind: TriggerLiteral},
		{name: "pattern with flags", raw: `/\bgift\s*card/i`, wantKind: TriggerPattern},
		{name: "pattern without flags", raw: `/hello world/`, wantKind: TriggerPattern},
		{name: "lone slash is literal", raw: "/", wantKind: TriggerLiteral},
		{name: "unclosed slash is literal", raw: "/studio", wantKind: TriggerLiteral},
		{name: "invalid pattern is inert", raw: `/[unclosed/`, wantKind: TriggerInert},
		{name: "empty string", raw: "", wantKind: TriggerLiteral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTrigger(tt.raw)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.raw, got.Raw)
		})
	}
}

func TestParseTriggerPatternMatching(t *testing.T) {
	trig := ParseTrigger(`/\bgift\s*card/i`)
	require.Equal(t, TriggerPattern, trig.Kind)
	require.NotNil(t, trig.Pattern)

	assert.True(t, trig.Pattern.MatchString("Do you have gift cards?"))
	assert.True(t, trig.Pattern.MatchString("GIFTCARD please"))
	assert.False(t, trig.Pattern.MatchString("thoughtful carding"))
}

func TestParseTriggerIgnoresJSOnlyFlags(t *testing.T) {
	// g and u have no Go equivalent and must not break compilation.
	trig := ParseTrigger(`/voucher/gi`)
	require.Equal(t, TriggerPattern, trig.Kind)
	assert.True(t, trig.Pattern.MatchString("A VOUCHER please"))
}

func TestParseTriggerLiteralPreParse(t *testing.T) {
	trig := ParseTrigger("  What   To  WEAR ")
	require.Equal(t, TriggerLiteral, trig.Kind)
	assert.Equal(t, "what to wear", trig.Literal)
	assert.Equal(t, []string{"what", "to", "wear"}, trig.Words)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello world"},
		{"  leading and trailing  ", "leading and trailing"},
		{"runs\t\tof   whitespace", "runs of whitespace"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

package format

import (
	"strings"
	"testing"

	"kisansetu-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

func TestFormatStripsEmphasisAndMarksLabel(t *testing.T) {
	out := Format("**Tip:** use *less* water")

	assert.NotContains(t, out, "*")
	assert.Contains(t, out, "💡 Tip:")
	assert.Equal(t, "💡 Tip: use less 💧 water", out)
}

func TestFormatPipeline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "heading and bold removed",
			in:   "## Direct Answer: Sow now",
			want: "✅ Direct Answer: Sow now",
		},
		{
			name: "hyphen and numbered bullets",
			in:   "- Check moisture\n2. Add mulch\n3) Wait",
			want: "🌱 Check moisture\n🌱 Add mulch\n🌱 Wait",
		},
		{
			name: "star and dot bullets",
			in:   "* Check moisture\n• Wait\n– Rest",
			want: "🌱 Check moisture\n🌱 Wait\n🌱 Rest",
		},
		{
			name: "blank runs collapsed and lines trimmed",
			in:   "  first  \n\n\n\n   second\t",
			want: "first\n\nsecond",
		},
		{
			name: "inline code and fences",
			in:   "```\nuse `neem` oil\n```",
			want: "use neem oil",
		},
		{
			name: "underscore emphasis",
			in:   "this is _very_ important and __urgent__",
			want: "this is very important and urgent",
		},
		{
			name: "snake case kept",
			in:   "field_id_value",
			want: "field_id_value",
		},
		{
			name: "domain terms keep casing and plurals",
			in:   "Seeds need Water and good SOIL",
			want: "🌾 Seeds need 💧 Water and good 🟤 SOIL",
		},
		{
			name: "whole words only",
			in:   "planting watery cropland",
			want: "planting watery cropland",
		},
		{
			name: "labels case-insensitive",
			in:   "WARNING: frost tonight\nkey actions: cover beds",
			want: "⚠️ WARNING: frost tonight\n🎯 key actions: cover beds",
		},
		{
			name: "label without colon is not a label",
			in:   "a useful tip for you",
			want: "a useful tip for you",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestFormatIdempotent(t *testing.T) {
	inputs := []string{
		"Direct Answer: Apply compost before the monsoon.\n\nKey Actions:\n- Test your soil pH\n- Use drip irrigation to save water\n- Rotate crops every season\n\nTip: Harvest early to get better market prices and more profit.",
		"Warning: heavy rain expected, delay pesticide spraying.",
		"Plants need fertilizer and seeds need weather that suits the climate.",
		"Steps:\n1. Remove diseased plants\n2. Burn them\nSolution: use resistant seed",
		"Recommendation: watch the market. Important Note: income varies.",
	}

	for _, in := range inputs {
		once := Format(in)
		assert.Equal(t, once, Format(once), in)
	}
}

func TestFormatOutputHasNoMarkup(t *testing.T) {
	in := "# Advice\n**Key Actions:**\n* Use __organic__ `manure`\n* Keep *soil* moist\n\n\n\n### Tip: water in the evening"
	out := Format(in)

	for _, marker := range []string{"*", "#", "`", "__"} {
		assert.NotContains(t, out, marker)
	}
	assert.NotContains(t, out, "\n\n\n")
	assert.Equal(t, out, strings.TrimSpace(out))
}

func TestFormatReply(t *testing.T) {
	assert.Equal(t, UnreadableReply, FormatReply(nil))
	assert.Equal(t, "💡 Tip: rest", FormatReply(llm.PlainText("**Tip:** rest")))
	assert.Equal(t, "🌱 Mulch", FormatReply(llm.StructuredText{Text: "- Mulch"}))
}

// Package format turns raw model text into the plain, glyph-annotated reply shown
// to farmers and handed to speech.
package format

import (
	"regexp"
	"strings"

	"kisansetu-be/pkg/llm"
)

const (
	BulletGlyph = "🌱"

	// UnreadableReply is returned when there is no reply text to format.
	UnreadableReply = "⚠️ Unable to read the advisory response."
)

var (
	reFenceLine    = regexp.MustCompile("(?m)^[ \\t]*```[^\\n]*$")
	reHeading      = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]*`)
	reStarBullet   = regexp.MustCompile(`(?m)^([ \t]*)[*+][ \t]+`)
	reBoldStar     = regexp.MustCompile(`\*\*([^*\n]+?)\*\*`)
	reBoldUnder    = regexp.MustCompile(`__([^_\n]+?)__`)
	reItalicStar   = regexp.MustCompile(`\*([^*\n]+?)\*`)
	reItalicUnder  = regexp.MustCompile(`(^|[^\w])_([^_\n]+?)_([^\w]|$)`)
	reInlineCode   = regexp.MustCompile("`([^`\\n]*)`")
	reListMarker   = regexp.MustCompile(`(?m)^[ \t]*(?:[-•–]|\d+[.)])[ \t]+`)
	reBlankRuns    = regexp.MustCompile(`\n{3,}`)
	reSectionLabel = regexp.MustCompile(`(?i)\b(direct answer|key actions|important note|recommendation|warning|tip|steps|solution):`)
	reDomainTerm   = regexp.MustCompile(`(?i)\b(fertilizer|fertiliser|seed|water|irrigation|soil|crop|plant|harvest|pesticide|disease|weather|climate|profit|income|market)(s)?\b`)
)

var labelGlyphs = map[string]string{
	"direct answer":  "✅",
	"key actions":    "🎯",
	"important note": "📌",
	"recommendation": "👉",
	"warning":        "⚠️",
	"tip":            "💡",
	"steps":          "📋",
	"solution":       "🔧",
}

var termGlyphs = map[string]string{
	"fertilizer": "🧪",
	"fertiliser": "🧪",
	"seed":       "🌾",
	"water":      "💧",
	"irrigation": "💧",
	"soil":       "🟤",
	"crop":       "🌾",
	"plant":      "🌿",
	"harvest":    "🚜",
	"pesticide":  "🐛",
	"disease":    "🦠",
	"weather":    "🌦️",
	"climate":    "🌦️",
	"profit":     "💰",
	"income":     "💰",
	"market":     "🏪",
}

// Format runs the fixed pipeline: strip markup, normalize list markers, tidy
// whitespace, mark section labels, mark farming terms. Running it on its own output
// returns the same text.
func Format(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = stripMarkup(s)
	s = reListMarker.ReplaceAllString(s, BulletGlyph+" ")
	s = tidyWhitespace(s)
	s = prefixOnce(s, reSectionLabel, func(m []string) string {
		return labelGlyphs[strings.ToLower(m[1])]
	})
	s = prefixOnce(s, reDomainTerm, func(m []string) string {
		return termGlyphs[strings.ToLower(m[1])]
	})
	return s
}

// FormatReply formats a model reply, or returns UnreadableReply when there is none.
func FormatReply(reply llm.ModelReply) string {
	text, ok := llm.ReplyText(reply)
	if !ok {
		return UnreadableReply
	}
	return Format(text)
}

func stripMarkup(s string) string {
	s = reFenceLine.ReplaceAllString(s, "")
	s = reHeading.ReplaceAllString(s, "")
	s = reStarBullet.ReplaceAllString(s, "$1- ")
	s = reBoldStar.ReplaceAllString(s, "$1")
	s = reBoldUnder.ReplaceAllString(s, "$1")
	s = reItalicStar.ReplaceAllString(s, "$1")
	// Adjacent _a_ _b_ pairs share a delimiter character, so repeat until stable.
	for i := 0; i < 4; i++ {
		next := reItalicUnder.ReplaceAllString(s, "$1$2$3")
		if next == s {
			break
		}
		s = next
	}
	s = reInlineCode.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "*", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}

func tidyWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = reBlankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// prefixOnce inserts "<glyph> " before each match unless that exact prefix is
// already there.
func prefixOnce(s string, re *regexp.Regexp, glyphFor func(m []string) string) string {
	idx := re.FindAllStringSubmatchIndex(s, -1)
	if len(idx) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, loc := range idx {
		start, end := loc[0], loc[1]
		groups := make([]string, len(loc)/2)
		for g := range groups {
			if loc[2*g] >= 0 {
				groups[g] = s[loc[2*g]:loc[2*g+1]]
			}
		}
		glyph := glyphFor(groups)

		b.WriteString(s[last:start])
		if glyph != "" && !strings.HasSuffix(s[:start], glyph+" ") {
			b.WriteString(glyph)
			b.WriteString(" ")
		}
		b.WriteString(s[start:end])
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

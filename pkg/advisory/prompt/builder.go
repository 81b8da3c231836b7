package prompt

import (
	"fmt"
	"strings"

	"kisansetu-be/pkg/advisory"
	"kisansetu-be/pkg/advisory/conversation"
	"kisansetu-be/pkg/advisory/soil"
)

const (
	DefaultMaxHistoryTurns = 10

	unknownText    = "Unknown"
	unknownMeasure = "?"
)

// Context is everything a single advisory request is built from. It is created per
// request and not modified afterwards.
type Context struct {
	Soil     soil.Profile
	Location *advisory.Coordinates
	History  []conversation.Turn
	Question string
}

// Builder renders a Context into the advisory prompt. Output depends only on its inputs.
type Builder struct {
	maxHistory int
}

func NewBuilder(maxHistoryTurns int) *Builder {
	if maxHistoryTurns <= 0 {
		maxHistoryTurns = DefaultMaxHistoryTurns
	}
	return &Builder{maxHistory: maxHistoryTurns}
}

func (b *Builder) Build(c Context) string {
	var prompt strings.Builder

	b.writeHistory(&prompt, c.History)
	b.writeLocation(&prompt, c.Soil, c.Location)
	b.writeSoil(&prompt, c.Soil)
	b.writeComposition(&prompt, c.Soil)
	b.writeQuestion(&prompt, c.Question)
	b.writeInstructions(&prompt)

	return prompt.String()
}

func (b *Builder) writeHistory(prompt *strings.Builder, history []conversation.Turn) {
	if len(history) == 0 {
		return
	}
	if len(history) > b.maxHistory {
		history = history[len(history)-b.maxHistory:]
	}

	for _, t := range history {
		label := "Farmer"
		if t.Speaker == conversation.SpeakerAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(prompt, "%s: %s\n", label, t.Text)
	}
	prompt.WriteString("\n")
}

func (b *Builder) writeLocation(prompt *strings.Builder, p soil.Profile, loc *advisory.Coordinates) {
	coords := unknownText
	if loc != nil {
		coords = fmt.Sprintf("%.4f, %.4f", loc.Latitude, loc.Longitude)
	}
	fmt.Fprintf(prompt, "LOCATION: %s, %s (%s)\n", text(p.Country), text(p.Region), coords)
}

func (b *Builder) writeSoil(prompt *strings.Builder, p soil.Profile) {
	fmt.Fprintf(prompt, "SOIL: %s, pH %s, Climate: %s\n", text(p.SoilType), measure(p.PH), text(p.Climate))
}

func (b *Builder) writeComposition(prompt *strings.Builder, p soil.Profile) {
	fmt.Fprintf(prompt, "COMPOSITION: Clay %s, Sand %s, Silt %s, Nitrogen %s\n",
		measure(p.Clay), measure(p.Sand), measure(p.Silt), measure(p.Nitrogen))
}

func (b *Builder) writeQuestion(prompt *strings.Builder, question string) {
	prompt.WriteString("QUESTION: ")
	prompt.WriteString(question)
	prompt.WriteString("\n\n")
}

func (b *Builder) writeInstructions(prompt *strings.Builder) {
	prompt.WriteString("INSTRUCTIONS:\n")
	prompt.WriteString("1. Start with a direct one-sentence answer.\n")
	prompt.WriteString("2. Then give 3-5 bullet-point action items, each under 25 words.\n")
	prompt.WriteString("3. Use plain, non-technical language a farmer can follow.\n")
	prompt.WriteString("4. End with one practical tip tied to this soil and climate.\n")
}

func text(v string) string {
	if strings.TrimSpace(v) == "" {
		return unknownText
	}
	return v
}

func measure(v string) string {
	if strings.TrimSpace(v) == "" {
		return unknownMeasure
	}
	return v
}

package prompt

import (
	"fmt"
	"strings"
	"testing"

	"kisansetu-be/pkg/advisory"
	"kisansetu-be/pkg/advisory/conversation"
	"kisansetu-be/pkg/advisory/soil"

	"github.com/stretchr/testify/assert"
)

var alluvial = soil.Profile{
	Country:  "India",
	Region:   "Andhra Pradesh",
	SoilType: "Alluvial Clay Loam",
	PH:       "6.5-7.5",
	Clay:     "35%",
	Sand:     "30%",
	Silt:     "35%",
	Nitrogen: "Medium",
	Climate:  "Tropical Monsoon",
}

func TestBuildLayout(t *testing.T) {
	loc := &advisory.Coordinates{Latitude: 16.29914, Longitude: 80.45751}
	out := NewBuilder(0).Build(Context{Soil: alluvial, Location: loc, Question: "When should I sow paddy?"})

	want := "LOCATION: India, Andhra Pradesh (16.2991, 80.4575)\n" +
		"SOIL: Alluvial Clay Loam, pH 6.5-7.5, Climate: Tropical Monsoon\n" +
		"COMPOSITION: Clay 35%, Sand 30%, Silt 35%, Nitrogen Medium\n" +
		"QUESTION: When should I sow paddy?\n\n" +
		"INSTRUCTIONS:\n"
	assert.True(t, strings.HasPrefix(out, want), out)
	assert.Contains(t, out, "3-5 bullet-point action items")
	assert.Contains(t, out, "one practical tip tied to this soil and climate")
}

func TestBuildMissingFieldsKeepStructure(t *testing.T) {
	out := NewBuilder(0).Build(Context{Question: "Is it going to rain?"})

	assert.Contains(t, out, "LOCATION: Unknown, Unknown (Unknown)\n")
	assert.Contains(t, out, "SOIL: Unknown, pH ?, Climate: Unknown\n")
	assert.Contains(t, out, "COMPOSITION: Clay ?, Sand ?, Silt ?, Nitrogen ?\n")
}

func TestBuildHistoryPrecedesSections(t *testing.T) {
	history := []conversation.Turn{
		conversation.UserTurn("My leaves are yellow."),
		conversation.AssistantTurn("That may be nitrogen deficiency."),
	}
	out := NewBuilder(0).Build(Context{Soil: alluvial, History: history, Question: "What should I apply?"})

	assert.True(t, strings.HasPrefix(out, "Farmer: My leaves are yellow.\nAssistant: That may be nitrogen deficiency.\n\nLOCATION:"), out)
}

func TestBuildBoundsHistory(t *testing.T) {
	var history []conversation.Turn
	for i := 0; i < 6; i++ {
		history = append(history, conversation.UserTurn(fmt.Sprintf("question %d", i)))
	}
	out := NewBuilder(2).Build(Context{History: history, Question: "q"})

	assert.NotContains(t, out, "question 3")
	assert.Contains(t, out, "Farmer: question 4\nFarmer: question 5\n")
}

func TestBuildQuestionVerbatim(t *testing.T) {
	questions := []string{
		"",
		"What about **bold** and `code`?",
		strings.Repeat("very long question about irrigation schedules ", 200),
		"पानी कब देना चाहिए?",
	}
	for _, q := range questions {
		out := NewBuilder(0).Build(Context{Soil: alluvial, Question: q})
		assert.Contains(t, out, "QUESTION: "+q+"\n")
	}
}

func TestBuildDeterministic(t *testing.T) {
	c := Context{
		Soil:     alluvial,
		Location: &advisory.Coordinates{Latitude: 1, Longitude: 2},
		History:  []conversation.Turn{conversation.UserTurn("hi")},
		Question: "q",
	}
	b := NewBuilder(0)
	assert.Equal(t, b.Build(c), b.Build(c))
}

package gemini

import (
	"testing"

	"kisansetu-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestToContentsSplitsSystemMessages(t *testing.T) {
	system, contents := toContents([]llm.Message{
		{Role: llm.RoleSystem, Content: "You are a farming assistant."},
		{Role: llm.RoleUser, Content: "Which fertilizer?"},
		{Role: llm.RoleAssistant, Content: "For which crop?"},
		{Role: llm.RoleUser, Content: "Paddy"},
	})

	require.NotNil(t, system)
	assert.Equal(t, "You are a farming assistant.", system.Parts[0].Text)
	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "Paddy", contents[2].Parts[0].Text)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "Sow "}, {Text: "in June."}}},
		}},
	}
	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Sow in June.", text)

	_, err = responseText(&genai.GenerateContentResponse{})
	require.Error(t, err)
	pe, ok := llm.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, llm.KindInvariant, pe.Kind)
}

func TestGenerateConfigTemperature(t *testing.T) {
	assert.Nil(t, generateConfig(llm.Options{}).Temperature)

	cfg := generateConfig(llm.Options{Temperature: 0.4})
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.4, *cfg.Temperature, 1e-6)
}

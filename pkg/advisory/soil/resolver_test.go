package soil

import (
	"context"
	"errors"
	"testing"

	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/pkg/advisory"
	"kisansetu-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	text    string
	err     error
	prompts []string
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.Generate(ctx, history[len(history)-1].Content, options...)
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.text, s.err
}

var (
	india  = advisory.Coordinates{Latitude: 20.0, Longitude: 78.0}
	london = advisory.Coordinates{Latitude: 51.5, Longitude: -0.1}
)

func newResolver(p llm.LLMProvider) *Resolver {
	return NewResolver(p, logger.NewNopLogger())
}

func TestResolveFallbackTiers(t *testing.T) {
	tests := []struct {
		name        string
		provider    *stubProvider
		coords      advisory.Coordinates
		wantSource  Source
		wantCountry string
	}{
		{
			name:        "network failure inside India",
			provider:    &stubProvider{err: errors.New("dial tcp: timeout")},
			coords:      india,
			wantSource:  SourceRegionHeuristic,
			wantCountry: "India",
		},
		{
			name:        "network failure outside India",
			provider:    &stubProvider{err: errors.New("dial tcp: timeout")},
			coords:      london,
			wantSource:  SourceGenericDefault,
			wantCountry: "Unknown",
		},
		{
			name:        "garbage output inside India",
			provider:    &stubProvider{text: "I cannot determine the soil for that location."},
			coords:      india,
			wantSource:  SourceRegionHeuristic,
			wantCountry: "India",
		},
		{
			name:        "unbalanced braces outside India",
			provider:    &stubProvider{text: `{"country": "UK", "soilType": "Clay"`},
			coords:      london,
			wantSource:  SourceGenericDefault,
			wantCountry: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newResolver(tt.provider).Resolve(context.Background(), tt.coords)

			assert.Equal(t, tt.wantSource, p.Source)
			assert.Equal(t, tt.wantCountry, p.Country)
			assert.True(t, p.Complete())
			assert.Len(t, tt.provider.prompts, 1, "exactly one attempt")
		})
	}
}

func TestResolveIndiaHeuristicValues(t *testing.T) {
	p := newResolver(&stubProvider{err: errors.New("boom")}).Resolve(context.Background(), india)

	assert.Equal(t, "Alluvial Clay Loam", p.SoilType)
	assert.Equal(t, "6.5-7.5", p.PH)
	assert.Equal(t, "35%", p.Clay)
}

func TestResolveGenericValues(t *testing.T) {
	p := newResolver(&stubProvider{err: errors.New("boom")}).Resolve(context.Background(), london)

	assert.Equal(t, "Mixed Soil", p.SoilType)
	assert.Equal(t, "Unknown", p.Region)
}

func TestResolveStrictJSON(t *testing.T) {
	out := `{"country":"India","region":"Andhra Pradesh","soilType":"Black Cotton Soil","ph":"7.5-8.5",
"clay":"50%","sand":"20%","silt":"30%","nitrogen":"Low","climate":"Semi-arid","description":"Good for cotton."}`

	p := newResolver(&stubProvider{text: out}).Resolve(context.Background(), india)

	assert.Equal(t, SourceLLM, p.Source)
	assert.Equal(t, "Black Cotton Soil", p.SoilType)
	assert.Equal(t, "Andhra Pradesh", p.Region)
	assert.Equal(t, "Good for cotton.", p.Description)
}

func TestResolveLenientExtraction(t *testing.T) {
	out := "Here is the profile:\n```json\n{\"country\": \"India\", \"soil_type\": \"Red {laterite}\", \"pH\": \"5.5-6.5\", \"clay\": 40}\n```\nHope this helps!"

	p := newResolver(&stubProvider{text: out}).Resolve(context.Background(), india)

	require.Equal(t, SourceLLM, p.Source)
	assert.Equal(t, "Red {laterite}", p.SoilType)
	assert.Equal(t, "5.5-6.5", p.PH)
	assert.Equal(t, "40%", p.Clay)
}

func TestResolveBackfillsMissingFieldsFromRegionTable(t *testing.T) {
	p := newResolver(&stubProvider{text: `{"country":"India","soilType":"Laterite","clay":""}`}).Resolve(context.Background(), india)

	assert.Equal(t, SourceLLM, p.Source)
	assert.Equal(t, "Laterite", p.SoilType)
	assert.Equal(t, indiaDefault.Clay, p.Clay, "blank values count as missing")
	assert.Equal(t, indiaDefault.Climate, p.Climate)
	assert.True(t, p.Complete())

	p = newResolver(&stubProvider{text: `{"soilType":"Loam"}`}).Resolve(context.Background(), london)
	assert.Equal(t, genericDefault.PH, p.PH)
	assert.Equal(t, "Loam", p.SoilType)
}

func TestResolveWithoutProvider(t *testing.T) {
	p := newResolver(nil).Resolve(context.Background(), india)
	assert.Equal(t, SourceRegionHeuristic, p.Source)
}

func TestPromptMentionsCoordinates(t *testing.T) {
	prompt := BuildPrompt(advisory.Coordinates{Latitude: 16.2991, Longitude: 80.4575})
	assert.Contains(t, prompt, "16.2991")
	assert.Contains(t, prompt, "80.4575")
	assert.Contains(t, prompt, `"clay": "clay percentage, e.g. 35%"`)
}

func TestInIndiaBoundaries(t *testing.T) {
	assert.True(t, InIndia(advisory.Coordinates{Latitude: 8.0, Longitude: 68.0}))
	assert.True(t, InIndia(advisory.Coordinates{Latitude: 37.0, Longitude: 97.0}))
	assert.False(t, InIndia(advisory.Coordinates{Latitude: 7.99, Longitude: 80}))
	assert.False(t, InIndia(advisory.Coordinates{Latitude: 20, Longitude: 97.01}))
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: `noise {"a":1} tail`, want: `{"a":1}`, ok: true},
		{in: `{"a":{"b":2}} {"c":3}`, want: `{"a":{"b":2}}`, ok: true},
		{in: `{"a":"}"}`, want: `{"a":"}"}`, ok: true},
		{in: `{"a":"\"}"}`, want: `{"a":"\"}"}`, ok: true},
		{in: `no object`, ok: false},
		{in: `{"a":1`, ok: false},
	}
	for _, tt := range tests {
		got, ok := extractObject(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

package soil

import (
	"context"
	"fmt"

	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/pkg/advisory"
	"kisansetu-be/pkg/llm"
)

const module = "SOIL"

const promptTemplate = `You are an agricultural soil scientist.
For the location at latitude %.4f and longitude %.4f, describe the typical topsoil and climate.

Respond with ONLY a JSON object, no markdown and no commentary, using exactly these keys:
{
  "country": "country name",
  "region": "state or province",
  "soilType": "common soil type name",
  "ph": "typical pH range, e.g. 6.5-7.5",
  "clay": "clay percentage, e.g. 35%%",
  "sand": "sand percentage, e.g. 30%%",
  "silt": "silt percentage, e.g. 35%%",
  "nitrogen": "Low, Medium or High",
  "climate": "climate type",
  "description": "one sentence on what this soil suits"
}`

// Resolver asks the model for a soil profile and degrades to fixed tables when the
// call fails or the output cannot be parsed.
type Resolver struct {
	provider llm.LLMProvider
	logger   logger.ILogger
}

func NewResolver(provider llm.LLMProvider, log logger.ILogger) *Resolver {
	return &Resolver{provider: provider, logger: log}
}

// BuildPrompt renders the fixed request for c.
func BuildPrompt(c advisory.Coordinates) string {
	return fmt.Sprintf(promptTemplate, c.Latitude, c.Longitude)
}

// Resolve never fails. The returned profile always has every text field set and a
// Source describing which tier produced it.
func (r *Resolver) Resolve(ctx context.Context, c advisory.Coordinates) Profile {
	fallback := DefaultFor(c)

	if r.provider == nil {
		return fallback
	}

	text, err := r.provider.Generate(ctx, BuildPrompt(c), llm.WithTemperature(0.2))
	if err != nil {
		r.logger.Warn(module, "Soil lookup failed, using region default", map[string]interface{}{
			"error":  err.Error(),
			"coords": c.String(),
			"source": fallback.Source,
		})
		return fallback
	}

	profile, err := parseProfile(text)
	if err != nil {
		r.logger.Warn(module, "Unparseable soil profile, using region default", map[string]interface{}{
			"error":  err.Error(),
			"coords": c.String(),
			"source": fallback.Source,
		})
		return fallback
	}

	profile.backfill(fallback)
	profile.Source = SourceLLM
	r.logger.Info(module, "Soil profile resolved", map[string]interface{}{
		"coords":    c.String(),
		"soil_type": profile.SoilType,
		"country":   profile.Country,
	})
	return profile
}

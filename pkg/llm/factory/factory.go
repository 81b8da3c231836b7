package factory

import (
	"context"
	"fmt"

	"kisansetu-be/pkg/llm"
	"kisansetu-be/pkg/llm/gemini"
	"kisansetu-be/pkg/llm/huggingface"
	"kisansetu-be/pkg/llm/ollama"
	"kisansetu-be/pkg/llm/relay"
)

const (
	ProviderGemini      = "gemini"
	ProviderHuggingFace = "huggingface"
	ProviderOllama      = "ollama"
	ProviderRelay       = "relay"
)

// Settings selects and configures one backend.
type Settings struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(ctx context.Context, s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case ProviderGemini:
		p, err := gemini.NewGeminiProvider(ctx, s.APIKey, s.Model)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderHuggingFace:
		return huggingface.NewHuggingFaceProvider(s.APIKey, s.BaseURL, s.Model), nil
	case ProviderOllama:
		baseURL := s.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, s.Model), nil
	case ProviderRelay:
		if s.BaseURL == "" {
			return nil, fmt.Errorf("relay provider requires a base url")
		}
		return relay.NewRelayProvider(s.BaseURL, s.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}

// NewAudioProvider returns the multimodal backend for voice turns. Only gemini and
// relay accept inline audio.
func NewAudioProvider(ctx context.Context, s Settings) (llm.AudioProvider, error) {
	switch s.Provider {
	case ProviderGemini:
		p, err := gemini.NewGeminiProvider(ctx, s.APIKey, s.Model)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderRelay:
		if s.BaseURL == "" {
			return nil, fmt.Errorf("relay provider requires a base url")
		}
		return relay.NewRelayProvider(s.BaseURL, s.APIKey), nil
	default:
		return nil, fmt.Errorf("provider %s does not accept audio input", s.Provider)
	}
}

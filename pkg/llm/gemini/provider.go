package gemini

import (
	"context"
	"fmt"
	"strings"

	"kisansetu-be/pkg/llm"

	"google.golang.org/genai"
)

const (
	providerName = "gemini"
	DefaultModel = "gemini-2.0-flash"
)

// GeminiProvider talks to the Gemini API through the genai SDK. It serves text chat
// and multimodal audio requests.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

var (
	_ llm.LLMProvider   = (*GeminiProvider)(nil)
	_ llm.AudioProvider = (*GeminiProvider)(nil)
)

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: p.model}, options...)
	system, contents := toContents(history)
	if len(contents) == 0 {
		return "", llm.NewInvariantError(providerName, "no user content to send")
	}

	cfg := generateConfig(opts)
	if system != nil {
		cfg.SystemInstruction = system
	}

	resp, err := p.client.Models.GenerateContent(ctx, opts.Model, contents, cfg)
	if err != nil {
		return "", llm.NewTransportError(providerName, err)
	}
	return responseText(resp)
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

// GenerateFromAudio sends the instruction and the inline clip as one user turn.
func (p *GeminiProvider) GenerateFromAudio(ctx context.Context, instruction string, audio llm.AudioInput, options ...llm.Option) (llm.ModelReply, error) {
	opts := llm.Apply(llm.Options{Model: p.model}, options...)

	data, err := audio.Bytes()
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}

	contents := []*genai.Content{{
		Role: string(genai.RoleUser),
		Parts: []*genai.Part{
			{Text: instruction},
			{InlineData: &genai.Blob{MIMEType: audio.MIMEType, Data: data}},
		},
	}}

	resp, err := p.client.Models.GenerateContent(ctx, opts.Model, contents, generateConfig(opts))
	if err != nil {
		return nil, llm.NewTransportError(providerName, err)
	}
	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return llm.PlainText(text), nil
}

func generateConfig(opts llm.Options) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if opts.Temperature > 0 {
		t := float32(opts.Temperature)
		cfg.Temperature = &t
	}
	return cfg
}

// toContents splits system messages into a system instruction and maps the rest
// onto Gemini's user/model roles.
func toContents(history []llm.Message) (*genai.Content, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleAssistant, "model":
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleModel),
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleUser),
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}

	if len(system) == 0 {
		return nil, contents
	}
	return &genai.Content{Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}}}, contents
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", llm.NewInvariantError(providerName, "no candidates in response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", llm.NewInvariantError(providerName, "candidate has no text parts")
	}
	return b.String(), nil
}

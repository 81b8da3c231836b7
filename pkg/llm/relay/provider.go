// Package relay forwards prompts to an HTTP backend that owns the model credentials.
// The backend answers with a JSON string, {"text": ...} or {"response": ...}.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"kisansetu-be/pkg/llm"
)

const providerName = "relay"

type RelayProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

var (
	_ llm.LLMProvider   = (*RelayProvider)(nil)
	_ llm.AudioProvider = (*RelayProvider)(nil)
)

type relayRequest struct {
	Messages    []llm.Message `json:"messages,omitempty"`
	Prompt      string        `json:"prompt,omitempty"`
	Audio       *relayAudio   `json:"audio,omitempty"`
	Model       string        `json:"model,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type relayAudio struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

func NewRelayProvider(endpoint, apiKey string) *RelayProvider {
	return &RelayProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *RelayProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{}, options...)
	reply, err := p.send(ctx, relayRequest{
		Messages:    history,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	text, _ := llm.ReplyText(reply)
	return text, nil
}

func (p *RelayProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func (p *RelayProvider) GenerateFromAudio(ctx context.Context, instruction string, audio llm.AudioInput, options ...llm.Option) (llm.ModelReply, error) {
	opts := llm.Apply(llm.Options{}, options...)
	return p.send(ctx, relayRequest{
		Prompt:      instruction,
		Audio:       &relayAudio{Data: audio.Base64, MIMEType: audio.MIMEType},
		Model:       opts.Model,
		Temperature: opts.Temperature,
	})
}

func (p *RelayProvider) send(ctx context.Context, body relayRequest) (llm.ModelReply, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, llm.NewTransportError(providerName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llm.NewTransportError(providerName, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, llm.NewStatusError(providerName, resp.StatusCode, string(raw))
	}

	reply, err := llm.DecodeReply(raw)
	if err != nil {
		return nil, &llm.ProviderError{Provider: providerName, Kind: llm.KindInvariant, Err: err}
	}
	return reply, nil
}

package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"kisansetu-be/pkg/llm"
)

const (
	providerName        = "huggingface"
	defaultRouterURL    = "https://router.huggingface.co/v1"
	defaultInferenceURL = "https://router.huggingface.co/hf-inference/models"
)

type HuggingFaceProvider struct {
	apiKey       string
	baseURL      string
	inferenceURL string
	model        string
	client       *http.Client
}

var _ llm.LLMProvider = (*HuggingFaceProvider)(nil)

// Request Payload Structure (OpenAI Compatible)
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewHuggingFaceProvider(apiKey, baseURL, model string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = defaultRouterURL
	}
	return &HuggingFaceProvider{
		apiKey:       apiKey,
		baseURL:      baseURL,
		inferenceURL: defaultInferenceURL,
		model:        model,
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

// WithInferenceURL overrides the task-inference endpoint used for image classification.
func (p *HuggingFaceProvider) WithInferenceURL(url string) *HuggingFaceProvider {
	if url != "" {
		p.inferenceURL = url
	}
	return p
}

func (p *HuggingFaceProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{
		Model:     p.model,
		MaxTokens: 500,
	}, options...)

	reqBody := chatRequest{
		Model:       opts.Model,
		Messages:    history,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	p.authorize(req)

	bodyBytes, err := p.do(req)
	if err != nil {
		return "", err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", llm.NewInvariantError(providerName, "failed to decode response: "+err.Error())
	}
	if chatResp.Error != nil {
		return "", llm.NewInvariantError(providerName, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", llm.NewInvariantError(providerName, "empty choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	messages := []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	}
	return p.Chat(ctx, messages, options...)
}

// Classification is one label scored by an image-classification model.
type Classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassifyImage posts raw image bytes to an image-classification model and returns
// labels ordered by descending score.
func (p *HuggingFaceProvider) ClassifyImage(ctx context.Context, model string, image []byte, contentType string) ([]Classification, error) {
	url := fmt.Sprintf("%s/%s", p.inferenceURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	p.authorize(req)

	bodyBytes, err := p.do(req)
	if err != nil {
		return nil, err
	}

	var labels []Classification
	if err := json.Unmarshal(bodyBytes, &labels); err != nil {
		return nil, llm.NewInvariantError(providerName, "failed to decode classification: "+err.Error())
	}
	if len(labels) == 0 {
		return nil, llm.NewInvariantError(providerName, "no labels returned")
	}
	sort.SliceStable(labels, func(i, j int) bool { return labels[i].Score > labels[j].Score })
	return labels, nil
}

func (p *HuggingFaceProvider) authorize(req *http.Request) {
	if p.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	}
}

func (p *HuggingFaceProvider) do(req *http.Request) ([]byte, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, llm.NewTransportError(providerName, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llm.NewTransportError(providerName, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, llm.NewStatusError(providerName, resp.StatusCode, string(bodyBytes))
	}
	return bodyBytes, nil
}

package aiprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/famvault/server/internal/domain/ai"
)

const anthropicVersion = "2023-06-01"

// AnthropicAdapter implements ai.Provider against the Anthropic messages
// API.
type AnthropicAdapter struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewAnthropicAdapter creates an Anthropic adapter.
func NewAnthropicAdapter(client *http.Client, baseURL, apiKey string) *AnthropicAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	return &AnthropicAdapter{client: client, baseURL: baseURL, apiKey: apiKey}
}

// Name returns the provider identifier.
func (a *AnthropicAdapter) Name() ai.ProviderName {
	return ai.ProviderAnthropic
}

// Chat performs a non-streaming message completion. The messages API takes
// the system prompt as a top-level field and rejects system-role messages.
func (a *AnthropicAdapter) Chat(ctx context.Context, req *ai.ChatRequest) (*ai.ChatResult, error) {
	type wireMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	messages := make([]wireMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == ai.RoleSystem {
			continue
		}
		messages = append(messages, wireMessage{Role: string(m.Role), Content: m.Content})
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		// max_tokens is mandatory on this API.
		maxTokens = 1024
	}

	body := map[string]any{
		"model":      req.Model,
		"messages":   messages,
		"max_tokens": maxTokens,
	}
	if req.System != "" {
		body["system"] = req.System
	}
	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var anthropicResp struct {
		Model   string `json:"model"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&anthropicResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	response := placeholderResponse
	for _, block := range anthropicResp.Content {
		if block.Type == "text" && block.Text != "" {
			response = block.Text
			break
		}
	}

	model := anthropicResp.Model
	if model == "" {
		model = req.Model
	}

	return &ai.ChatResult{
		Response: response,
		Model:    model,
		Usage: ai.TokenUsage{
			Prompt:     anthropicResp.Usage.InputTokens,
			Completion: anthropicResp.Usage.OutputTokens,
			Total:      anthropicResp.Usage.InputTokens + anthropicResp.Usage.OutputTokens,
		},
	}, nil
}

var _ ai.Provider = (*AnthropicAdapter)(nil)

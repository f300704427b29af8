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

// placeholderResponse is substituted when a provider returns a structurally
// valid reply with no usable content, so callers never see an empty string.
const placeholderResponse = "I'm sorry, I wasn't able to generate a response. Please try again."

// OpenAIAdapter implements ai.Provider against the OpenAI chat completions
// API.
type OpenAIAdapter struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewOpenAIAdapter creates an OpenAI adapter.
func NewOpenAIAdapter(client *http.Client, baseURL, apiKey string) *OpenAIAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIAdapter{client: client, baseURL: baseURL, apiKey: apiKey}
}

// Name returns the provider identifier.
func (a *OpenAIAdapter) Name() ai.ProviderName {
	return ai.ProviderOpenAI
}

// Chat performs a non-streaming chat completion.
func (a *OpenAIAdapter) Chat(ctx context.Context, req *ai.ChatRequest) (*ai.ChatResult, error) {
	type wireMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	messages := make([]wireMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, wireMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, wireMessage{Role: string(m.Role), Content: m.Content})
	}

	body := map[string]any{
		"model":    req.Model,
		"messages": messages,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	}

	respBody, err := a.doRequest(ctx, "/chat/completions", body)
	if err != nil {
		return nil, err
	}
	defer respBody.Close()

	var openaiResp struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(respBody).Decode(&openaiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	response := placeholderResponse
	if len(openaiResp.Choices) > 0 && openaiResp.Choices[0].Message.Content != "" {
		response = openaiResp.Choices[0].Message.Content
	}

	model := openaiResp.Model
	if model == "" {
		model = req.Model
	}

	return &ai.ChatResult{
		Response: response,
		Model:    model,
		Usage: ai.TokenUsage{
			Prompt:     openaiResp.Usage.PromptTokens,
			Completion: openaiResp.Usage.CompletionTokens,
			Total:      openaiResp.Usage.TotalTokens,
		},
	}, nil
}

func (a *OpenAIAdapter) doRequest(ctx context.Context, path string, body map[string]any) (io.ReadCloser, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return resp.Body, nil
}

var _ ai.Provider = (*OpenAIAdapter)(nil)

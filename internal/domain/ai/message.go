package ai

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single turn in a conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TokenUsage reports token counts for one completed provider call.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// ChatRequest is the normalized request handed to a provider adapter.
type ChatRequest struct {
	Messages    []ChatMessage
	System      string
	Model       string
	MaxTokens   int
	Temperature *float64
}

// ChatResult is the normalized result returned by a provider adapter.
type ChatResult struct {
	Response string
	Model    string
	Usage    TokenUsage
}

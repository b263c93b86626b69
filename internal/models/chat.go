package models

// ToolCall records one invocation of a business tool during a chat turn.
type ToolCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// ChatResult is what the engine hands back to the transport layer for one
// message: the reply text, any tool calls made, whether the turn should be
// escalated to a human, the routed intent, and the (possibly new) session.
type ChatResult struct {
	Reply     string                 `json:"reply"`
	ToolCalls []ToolCall             `json:"tool_calls"`
	Escalated bool                   `json:"escalated"`
	Intent    string                 `json:"intent"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	SessionID string                 `json:"session_id"`
}

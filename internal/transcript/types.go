// Package transcript decodes Claude agent JSONL transcript logs into
// normalized display entries and supports offset-resumable incremental reads.
package transcript

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind discriminates the normalized entry variants.
type Kind string

const (
	KindUserMessage   Kind = "user_message"
	KindAssistantText Kind = "assistant_text"
	KindToolCall      Kind = "tool_call"
	KindToolResult    Kind = "tool_result"
	KindThinking      Kind = "thinking"
	KindHookEvent     Kind = "hook_event"
	KindAgentSpawn    Kind = "agent_spawn"
)

// ToolOutcome is a tool result folded into its originating ToolCall entry.
// It is populated only by the merge pass, never by the decoder.
type ToolOutcome struct {
	Content string
	IsError bool
}

// Entry is a single normalized, display-ready transcript entry.
// Timestamp is nil when the source line carried none.
type Entry struct {
	Kind      Kind
	Timestamp *time.Time

	// KindUserMessage, KindAssistantText, KindThinking
	Text string

	// KindThinking: decoded collapsed; visibility is a presentation concern
	Collapsed bool

	// KindToolCall
	ToolID    string
	ToolName  string
	ToolInput string
	Result    *ToolOutcome

	// KindToolResult
	ToolUseID string
	Content   string
	IsError   bool

	// KindHookEvent
	Event    string
	HookName string
	Command  string

	// KindAgentSpawn
	AgentType   string
	Description string
}

// rawEntry is one line of the JSONL wire format. Unknown top-level type
// tags and unknown fields decode successfully and are ignored upstream.
type rawEntry struct {
	Type      string          `json:"type"`
	Message   *rawMessage     `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
}

type rawMessage struct {
	Role    string       `json:"role,omitempty"`
	Content contentValue `json:"content,omitempty"`
	Model   string       `json:"model,omitempty"`
}

// contentValue is either a plain string or an ordered list of content blocks.
type contentValue struct {
	Text   string
	Blocks []contentBlock
	IsText bool
}

func (c *contentValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		c.IsText = true
		return nil
	}
	var blocks []contentBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return fmt.Errorf("content is neither string nor block list")
	}
	c.Blocks = blocks
	return nil
}

// contentBlock is one element of a block-list message content. The type tag
// selects which fields are meaningful; unrecognized tags are dropped by the
// decoder rather than failing the line.
type contentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Thinking  string          `json:"thinking,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   *bool           `json:"is_error,omitempty"`
}

// toolResultBlock is a sub-block of a tool_result content list.
type toolResultBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

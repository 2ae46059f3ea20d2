package transcript

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// DecodeLine decodes one non-empty JSONL line into zero or more normalized
// entries. A schema mismatch returns a non-nil error for diagnostic recording
// and never fails the overall parse. Unrecognized top-level type tags decode
// to zero entries with no error.
func DecodeLine(line []byte) ([]Entry, error) {
	var raw rawEntry
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, err
	}

	switch raw.Type {
	case "user":
		if raw.Message == nil {
			return nil, nil
		}
		return decodeUserMessage(raw.Message, raw.Timestamp), nil
	case "assistant":
		if raw.Message == nil {
			return nil, nil
		}
		return decodeAssistantMessage(raw.Message, raw.Timestamp), nil
	case "progress":
		if len(raw.Data) == 0 {
			return nil, nil
		}
		return decodeProgressData(raw.Data, raw.Timestamp), nil
	default:
		return nil, nil
	}
}

// decodeUserMessage turns user message content into interleaved UserMessage
// and ToolResult entries. Contiguous text blocks accumulate and flush before
// any tool_result block.
func decodeUserMessage(msg *rawMessage, ts *time.Time) []Entry {
	var entries []Entry

	if msg.Content.IsText {
		if msg.Content.Text != "" {
			entries = append(entries, Entry{Kind: KindUserMessage, Text: msg.Content.Text, Timestamp: ts})
		}
		return entries
	}

	var textParts []string
	flush := func() {
		if len(textParts) > 0 {
			entries = append(entries, Entry{Kind: KindUserMessage, Text: strings.Join(textParts, "\n"), Timestamp: ts})
			textParts = nil
		}
	}

	for _, block := range msg.Content.Blocks {
		switch block.Type {
		case "text":
			textParts = append(textParts, block.Text)
		case "tool_result":
			flush()
			entries = append(entries, Entry{
				Kind:      KindToolResult,
				ToolUseID: block.ToolUseID,
				Content:   flattenToolResultContent(block.Content),
				IsError:   block.IsError != nil && *block.IsError,
				Timestamp: ts,
			})
		}
	}
	flush()

	return entries
}

func decodeAssistantMessage(msg *rawMessage, ts *time.Time) []Entry {
	if msg.Content.IsText {
		return []Entry{{Kind: KindAssistantText, Text: msg.Content.Text, Timestamp: ts}}
	}
	return decodeBlocks(msg.Content.Blocks, ts)
}

// decodeBlocks handles the assistant-style block list: text, tool_use,
// tool_result and thinking blocks in original order. Unknown tags drop.
func decodeBlocks(blocks []contentBlock, ts *time.Time) []Entry {
	var entries []Entry
	for _, block := range blocks {
		switch block.Type {
		case "text":
			if block.Text != "" {
				entries = append(entries, Entry{Kind: KindAssistantText, Text: block.Text, Timestamp: ts})
			}
		case "tool_use":
			entries = append(entries, Entry{
				Kind:      KindToolCall,
				ToolID:    block.ID,
				ToolName:  block.Name,
				ToolInput: prettyInput(block.Input),
				Timestamp: ts,
			})
		case "tool_result":
			entries = append(entries, Entry{
				Kind:      KindToolResult,
				ToolUseID: block.ToolUseID,
				Content:   flattenToolResultContent(block.Content),
				IsError:   block.IsError != nil && *block.IsError,
				Timestamp: ts,
			})
		case "thinking":
			if block.Thinking != "" {
				entries = append(entries, Entry{Kind: KindThinking, Text: block.Thinking, Collapsed: true, Timestamp: ts})
			}
		}
	}
	return entries
}

// progressData is the opaque payload of a progress entry. It may embed a
// nested message, a hook-event descriptor and an agent-spawn descriptor; a
// single line can yield entries from several of these sub-paths at once.
type progressData struct {
	Message *struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"message,omitempty"`
	HookEvent   string `json:"hookEvent,omitempty"`
	HookName    string `json:"hookName,omitempty"`
	Command     string `json:"command,omitempty"`
	AgentType   string `json:"agentType,omitempty"`
	Description string `json:"description,omitempty"`
}

func decodeProgressData(data json.RawMessage, ts *time.Time) []Entry {
	var payload progressData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}

	var entries []Entry

	if payload.Message != nil && (payload.Message.Role == "assistant" || payload.Message.Role == "user") {
		var blocks []contentBlock
		// Tool results also arrive here as role=user; both roles share the
		// assistant-style block path.
		if err := json.Unmarshal(payload.Message.Content, &blocks); err == nil {
			entries = append(entries, decodeBlocks(blocks, ts)...)
		}
	}

	if payload.HookEvent != "" {
		entries = append(entries, Entry{
			Kind:      KindHookEvent,
			Event:     payload.HookEvent,
			HookName:  payload.HookName,
			Command:   payload.Command,
			Timestamp: ts,
		})
	}

	if payload.AgentType != "" {
		entries = append(entries, Entry{
			Kind:        KindAgentSpawn,
			AgentType:   payload.AgentType,
			Description: payload.Description,
			Timestamp:   ts,
		})
	}

	return entries
}

// prettyInput renders a tool input object as indented JSON for display.
func prettyInput(input json.RawMessage) string {
	if len(input) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, input, "", "  "); err != nil {
		return string(input)
	}
	return buf.String()
}

// flattenToolResultContent joins a tool result's content, which may be a
// plain string or a list of text sub-blocks, into a single string.
func flattenToolResultContent(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}
	var blocks []toolResultBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

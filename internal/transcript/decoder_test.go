package transcript

import (
	"testing"
)

func TestDecodeUserStringContent(t *testing.T) {
	line := `{"type":"user","timestamp":"2024-05-01T10:00:00Z","message":{"role":"user","content":"hello there"}}`
	entries, err := DecodeLine([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Kind != KindUserMessage || entries[0].Text != "hello there" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
	if entries[0].Timestamp == nil {
		t.Error("expected timestamp to be set")
	}
}

func TestDecodeUserBlocksInterleaved(t *testing.T) {
	line := `{"type":"user","message":{"role":"user","content":[` +
		`{"type":"text","text":"first"},` +
		`{"type":"text","text":"second"},` +
		`{"type":"tool_result","tool_use_id":"t1","content":"ok","is_error":true},` +
		`{"type":"text","text":"after"}]}}`
	entries, err := DecodeLine([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Kind != KindUserMessage || entries[0].Text != "first\nsecond" {
		t.Errorf("accumulated text not flushed before tool result: %+v", entries[0])
	}
	if entries[1].Kind != KindToolResult || entries[1].ToolUseID != "t1" || !entries[1].IsError {
		t.Errorf("unexpected tool result: %+v", entries[1])
	}
	if entries[2].Kind != KindUserMessage || entries[2].Text != "after" {
		t.Errorf("trailing text not flushed: %+v", entries[2])
	}
}

func TestDecodeToolResultBlockListContent(t *testing.T) {
	line := `{"type":"user","message":{"content":[` +
		`{"type":"tool_result","tool_use_id":"t2","content":[` +
		`{"type":"text","text":"line one"},{"type":"image"},{"type":"text","text":"line two"}]}]}}`
	entries, err := DecodeLine([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Content != "line one\nline two" {
		t.Errorf("expected flattened content, got %q", entries[0].Content)
	}
	if entries[0].IsError {
		t.Error("is_error should default to false")
	}
}

func TestDecodeAssistantBlocks(t *testing.T) {
	line := `{"type":"assistant","message":{"role":"assistant","content":[` +
		`{"type":"thinking","thinking":"pondering"},` +
		`{"type":"text","text":"I will run ls"},` +
		`{"type":"tool_use","id":"t1","name":"Bash","input":{"command":"ls"}},` +
		`{"type":"server_tool_use","id":"x"}]}}`
	entries, err := DecodeLine([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries (unknown block dropped), got %d", len(entries))
	}
	if entries[0].Kind != KindThinking || !entries[0].Collapsed {
		t.Errorf("thinking should decode collapsed: %+v", entries[0])
	}
	if entries[1].Kind != KindAssistantText {
		t.Errorf("unexpected entry: %+v", entries[1])
	}
	tc := entries[2]
	if tc.Kind != KindToolCall || tc.ToolID != "t1" || tc.ToolName != "Bash" {
		t.Errorf("unexpected tool call: %+v", tc)
	}
	if tc.Result != nil {
		t.Error("decoder must never populate a tool call result")
	}
	if tc.ToolInput == "" {
		t.Error("expected pretty-printed input")
	}
}

func TestDecodeAssistantStringContent(t *testing.T) {
	line := `{"type":"assistant","message":{"content":"plain reply"}}`
	entries, err := DecodeLine([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Kind != KindAssistantText || entries[0].Text != "plain reply" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestDecodeProgressMultiplePaths(t *testing.T) {
	// A single progress line may carry an embedded message, a hook event
	// and an agent spawn at once; all sub-paths emit.
	line := `{"type":"progress","data":{` +
		`"message":{"role":"assistant","content":[{"type":"text","text":"working"}]},` +
		`"hookEvent":"PreToolUse","hookName":"lint","command":"make lint",` +
		`"agentType":"explorer","description":"scan the repo"}}`
	entries, err := DecodeLine([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Kind != KindAssistantText || entries[0].Text != "working" {
		t.Errorf("unexpected message entry: %+v", entries[0])
	}
	if entries[1].Kind != KindHookEvent || entries[1].Event != "PreToolUse" || entries[1].Command != "make lint" {
		t.Errorf("unexpected hook entry: %+v", entries[1])
	}
	if entries[2].Kind != KindAgentSpawn || entries[2].AgentType != "explorer" {
		t.Errorf("unexpected spawn entry: %+v", entries[2])
	}
}

func TestDecodeProgressUserRoleToolResult(t *testing.T) {
	line := `{"type":"progress","data":{"message":{"role":"user","content":[` +
		`{"type":"tool_result","tool_use_id":"t9","content":"done"}]}}}`
	entries, err := DecodeLine([]byte(line))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Kind != KindToolResult || entries[0].ToolUseID != "t9" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestDecodeUnknownTypeIgnored(t *testing.T) {
	entries, err := DecodeLine([]byte(`{"type":"summary","summary":"whatever"}`))
	if err != nil {
		t.Fatalf("unknown tags are not errors: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %+v", entries)
	}
}

func TestDecodeMalformedLine(t *testing.T) {
	if _, err := DecodeLine([]byte(`{"type":"user",`)); err == nil {
		t.Error("expected a decode error for malformed JSON")
	}
}

func TestDecodeTimestampAbsent(t *testing.T) {
	entries, err := DecodeLine([]byte(`{"type":"user","message":{"content":"hi"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Timestamp != nil {
		t.Error("absent timestamp must propagate as nil, not default to now")
	}
}

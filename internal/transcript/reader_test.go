package transcript

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const (
	lineToolUse = `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"Bash","input":{"command":"ls"}}]}}`
	lineToolRes = `{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":"file.txt"}]}}`
	lineUser    = `{"type":"user","message":{"content":"hi"}}`
)

func TestReadFromHoldsBackUnterminatedLine(t *testing.T) {
	path := writeLog(t, lineUser+"\n"+`{"type":"assistant","mess`)

	outcome, err := ReadFrom(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcome.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(outcome.Entries))
	}
	want := int64(len(lineUser) + 1)
	if outcome.BytesConsumed != want {
		t.Errorf("watermark must exclude the unterminated line: got %d, want %d", outcome.BytesConsumed, want)
	}

	// Complete the line and read again from the watermark: exactly the
	// completed line's entries appear.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	rest := `age":{"content":"done"}}` + "\n"
	if _, err := f.WriteString(rest); err != nil {
		t.Fatal(err)
	}
	f.Close()

	second, err := ReadFrom(path, outcome.BytesConsumed)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Entries) != 1 || second.Entries[0].Kind != KindAssistantText || second.Entries[0].Text != "done" {
		t.Errorf("unexpected entries from completed line: %+v", second.Entries)
	}
	info, _ := os.Stat(path)
	if second.BytesConsumed != info.Size() {
		t.Errorf("watermark should reach EOF, got %d want %d", second.BytesConsumed, info.Size())
	}
}

func TestReadFromBlankAndMalformedLines(t *testing.T) {
	content := "   \n" + "{not json}\n" + lineUser + "\n"
	path := writeLog(t, content)

	outcome, err := ReadFrom(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcome.Entries) != 1 {
		t.Errorf("expected exactly 1 decoded entry, got %d", len(outcome.Entries))
	}
	if len(outcome.Errors) != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %v", outcome.Errors)
	}
	if outcome.Errors[0][:7] != "line 2:" {
		t.Errorf("diagnostic should carry the 1-based line number: %q", outcome.Errors[0])
	}
	if outcome.BytesConsumed != int64(len(content)) {
		t.Errorf("watermark must cover all three lines: got %d want %d", outcome.BytesConsumed, len(content))
	}
}

func TestReadFromTrailingWhitespaceConsumed(t *testing.T) {
	content := lineUser + "\n  "
	path := writeLog(t, content)

	outcome, err := ReadFrom(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.BytesConsumed != int64(len(content)) {
		t.Errorf("whitespace-only trailing fragment never holds back the watermark: got %d want %d",
			outcome.BytesConsumed, len(content))
	}
}

func TestReadFromMissingFile(t *testing.T) {
	if _, err := ReadFrom(filepath.Join(t.TempDir(), "nope.jsonl"), 0); err == nil {
		t.Error("expected an error for a missing file")
	}
}

// Incremental parsing is observationally equivalent to parsing in one shot,
// for a split at any byte boundary.
func TestSplitAnywhereEquivalence(t *testing.T) {
	whole := lineToolUse + "\n" + lineToolRes + "\n" + lineUser + "\n"

	ref, err := ReadFrom(writeLog(t, whole), 0)
	if err != nil {
		t.Fatal(err)
	}
	refMerged := MergeToolResults(ref.Entries)

	for cut := 0; cut <= len(whole); cut++ {
		path := writeLog(t, whole[:cut])

		first, err := ReadFrom(path, 0)
		if err != nil {
			t.Fatalf("cut %d: %v", cut, err)
		}
		if err := os.WriteFile(path, []byte(whole), 0644); err != nil {
			t.Fatal(err)
		}
		second, err := ReadFrom(path, first.BytesConsumed)
		if err != nil {
			t.Fatalf("cut %d: %v", cut, err)
		}

		got := MergeContinuation(MergeToolResults(first.Entries), MergeToolResults(second.Entries))
		if !reflect.DeepEqual(got, refMerged) {
			t.Fatalf("cut %d: incremental result diverges\ngot:  %+v\nwant: %+v", cut, got, refMerged)
		}
		if second.BytesConsumed != int64(len(whole)) {
			t.Fatalf("cut %d: final watermark %d, want %d", cut, second.BytesConsumed, len(whole))
		}
	}
}

// The exact two-write scenario: a tool call flushed first, its result later.
func TestIncrementalToolCallResultMerge(t *testing.T) {
	path := writeLog(t, lineToolUse+"\n")

	first, err := ReadFrom(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	buffer := MergeToolResults(first.Entries)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(lineToolRes + "\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	second, err := ReadFrom(path, first.BytesConsumed)
	if err != nil {
		t.Fatal(err)
	}
	buffer = MergeContinuation(buffer, MergeToolResults(second.Entries))

	if len(buffer) != 1 {
		t.Fatalf("expected a single merged entry, got %d: %+v", len(buffer), buffer)
	}
	call := buffer[0]
	if call.Kind != KindToolCall || call.ToolName != "Bash" {
		t.Fatalf("unexpected entry: %+v", call)
	}
	if call.Result == nil || call.Result.Content != "file.txt" {
		t.Errorf("result not folded into the call: %+v", call.Result)
	}
}

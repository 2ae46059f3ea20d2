package transcript

import (
	"reflect"
	"testing"
)

func call(id, name string) Entry {
	return Entry{Kind: KindToolCall, ToolID: id, ToolName: name}
}

func result(id, content string) Entry {
	return Entry{Kind: KindToolResult, ToolUseID: id, Content: content}
}

func TestMergeAdjacentPair(t *testing.T) {
	merged := MergeToolResults([]Entry{call("t1", "Bash"), result("t1", "ok")})
	if len(merged) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(merged))
	}
	if merged[0].Result == nil || merged[0].Result.Content != "ok" {
		t.Errorf("result not folded: %+v", merged[0])
	}
}

func TestMergeNonAdjacentKeptSeparate(t *testing.T) {
	in := []Entry{
		call("t1", "Bash"),
		{Kind: KindUserMessage, Text: "between"},
		result("t1", "late"),
	}
	merged := MergeToolResults(in)
	if len(merged) != 3 {
		t.Fatalf("non-adjacent result must stay independent, got %d entries", len(merged))
	}
	if merged[0].Result != nil {
		t.Errorf("call must remain unresolved: %+v", merged[0])
	}
}

func TestMergeNonMatchingIDKeptSeparate(t *testing.T) {
	merged := MergeToolResults([]Entry{call("t1", "Bash"), result("t2", "other")})
	if len(merged) != 2 {
		t.Fatalf("mismatched ids must not merge, got %d entries", len(merged))
	}
}

func TestMergeConsecutivePairs(t *testing.T) {
	in := []Entry{
		call("t1", "Bash"), result("t1", "one"),
		call("t2", "Read"), result("t2", "two"),
	}
	merged := MergeToolResults(in)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged calls, got %d", len(merged))
	}
	if merged[0].Result.Content != "one" || merged[1].Result.Content != "two" {
		t.Errorf("results bound to wrong calls: %+v", merged)
	}
}

func TestMergeIdempotent(t *testing.T) {
	in := []Entry{
		call("t1", "Bash"), result("t1", "ok"),
		{Kind: KindAssistantText, Text: "done"},
		call("t2", "Read"),
		result("t3", "orphan"),
	}
	once := MergeToolResults(in)
	twice := MergeToolResults(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge is not idempotent\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestContinuationFoldsLeadingResult(t *testing.T) {
	buffer := []Entry{{Kind: KindUserMessage, Text: "go"}, call("t1", "Bash")}
	batch := []Entry{result("t1", "out"), {Kind: KindAssistantText, Text: "next"}}

	merged := MergeContinuation(buffer, batch)
	if len(merged) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(merged))
	}
	if merged[1].Result == nil || merged[1].Result.Content != "out" {
		t.Errorf("leading result not folded into buffer tail: %+v", merged[1])
	}
	if merged[2].Kind != KindAssistantText {
		t.Errorf("remainder of batch not appended: %+v", merged[2])
	}
}

func TestContinuationNoMatchAppendsWhole(t *testing.T) {
	buffer := []Entry{call("t1", "Bash")}
	batch := []Entry{result("t9", "unrelated")}

	merged := MergeContinuation(buffer, batch)
	if len(merged) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(merged))
	}
	if merged[0].Result != nil {
		t.Errorf("unrelated result must not fold: %+v", merged[0])
	}
}

func TestContinuationResolvedCallUntouched(t *testing.T) {
	resolved := call("t1", "Bash")
	resolved.Result = &ToolOutcome{Content: "already"}
	merged := MergeContinuation([]Entry{resolved}, []Entry{result("t1", "again")})
	if len(merged) != 2 {
		t.Fatalf("a resolved call must not absorb another result, got %d entries", len(merged))
	}
	if merged[0].Result.Content != "already" {
		t.Errorf("existing result overwritten: %+v", merged[0])
	}
}

func TestContinuationEmptyBatch(t *testing.T) {
	buffer := []Entry{call("t1", "Bash")}
	if got := MergeContinuation(buffer, nil); len(got) != 1 {
		t.Errorf("empty batch must leave buffer unchanged, got %+v", got)
	}
}

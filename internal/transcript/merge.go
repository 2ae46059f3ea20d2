package transcript

// MergeToolResults folds each ToolResult into the ToolCall immediately
// preceding it when their ids match, dropping the standalone result from the
// output. Non-adjacent or non-matching results stay independent entries.
// Single forward pass with one position of lookahead; idempotent.
func MergeToolResults(entries []Entry) []Entry {
	merged := make([]Entry, 0, len(entries))
	skipNext := false

	for i, entry := range entries {
		if skipNext {
			skipNext = false
			continue
		}

		if entry.Kind == KindToolCall && i+1 < len(entries) {
			next := entries[i+1]
			if next.Kind == KindToolResult && next.ToolUseID == entry.ToolID {
				entry.Result = &ToolOutcome{Content: next.Content, IsError: next.IsError}
				skipNext = true
			}
		}
		merged = append(merged, entry)
	}

	return merged
}

// MergeContinuation appends an already batch-merged incremental batch onto
// buffer. When the buffer's last entry is a ToolCall still awaiting its
// result and the batch leads with the matching ToolResult, the result is
// folded into the buffer tail in place and the batch's first entry skipped.
// This keeps a call written in one file flush merged with its result written
// in the next.
func MergeContinuation(buffer, batch []Entry) []Entry {
	if len(batch) == 0 {
		return buffer
	}

	if n := len(buffer); n > 0 {
		last := &buffer[n-1]
		first := batch[0]
		if last.Kind == KindToolCall && last.Result == nil &&
			first.Kind == KindToolResult && first.ToolUseID == last.ToolID {
			last.Result = &ToolOutcome{Content: first.Content, IsError: first.IsError}
			return append(buffer, batch[1:]...)
		}
	}

	return append(buffer, batch...)
}

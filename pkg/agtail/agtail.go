// Package agtail exposes the transcript parsing pipeline for use as a
// library: one-shot and offset-resumable reads plus the tool-result merge
// passes.
package agtail

import (
	"github.com/grovetools/agtail/internal/transcript"
)

// Entry is a normalized transcript entry.
type Entry = transcript.Entry

// ToolOutcome is a tool result folded into its originating tool call.
type ToolOutcome = transcript.ToolOutcome

// Outcome carries the entries, per-line diagnostics and consumed byte count
// of a read.
type Outcome = transcript.Outcome

// Kind discriminates entry variants.
type Kind = transcript.Kind

const (
	KindUserMessage   = transcript.KindUserMessage
	KindAssistantText = transcript.KindAssistantText
	KindToolCall      = transcript.KindToolCall
	KindToolResult    = transcript.KindToolResult
	KindThinking      = transcript.KindThinking
	KindHookEvent     = transcript.KindHookEvent
	KindAgentSpawn    = transcript.KindAgentSpawn
)

// ParseFile parses a whole transcript file.
func ParseFile(path string) (*Outcome, error) {
	return transcript.ParseFile(path)
}

// ReadFrom parses a transcript from a byte offset, for incremental tailing.
// The returned Outcome's BytesConsumed is the next read's offset.
func ReadFrom(path string, offset int64) (*Outcome, error) {
	return transcript.ReadFrom(path, offset)
}

// MergeToolResults folds each tool result into the immediately preceding
// matching tool call.
func MergeToolResults(entries []Entry) []Entry {
	return transcript.MergeToolResults(entries)
}

// MergeContinuation appends an incremental batch to an existing buffer,
// folding a leading tool result into the buffer's trailing unresolved call.
func MergeContinuation(buffer, batch []Entry) []Entry {
	return transcript.MergeContinuation(buffer, batch)
}

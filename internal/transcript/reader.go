package transcript

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Outcome is the result of one parse pass over a file region.
type Outcome struct {
	// Entries are the normalized entries decoded from complete lines,
	// in file order. They have not been through the merge pass.
	Entries []Entry
	// Errors holds one diagnostic per malformed complete line, tagged
	// with the line's 1-based number relative to this read.
	Errors []string
	// BytesConsumed is the absolute byte offset reached: the resumption
	// point for the next incremental read. It never advances past an
	// unterminated trailing line, so a partially-written line is re-read
	// once it is completed.
	BytesConsumed int64
}

// ParseFile decodes an entire JSONL transcript from the beginning.
func ParseFile(path string) (*Outcome, error) {
	return ReadFrom(path, 0)
}

// ReadFrom reads path from the given byte offset to the current end of file
// and decodes every complete line. Blank lines are consumed without effect;
// malformed JSON on a complete line is recorded as a diagnostic and still
// advances the watermark. Only an incomplete trailing line holds the
// watermark back.
func ReadFrom(path string, offset int64) (*Outcome, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer file.Close()

	if offset > 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek to offset %d: %w", offset, err)
		}
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	outcome := &Outcome{BytesConsumed: offset}
	lineNum := 0

	for start := 0; start < len(content); {
		var line []byte
		var end int
		terminated := false

		if nl := bytes.IndexByte(content[start:], '\n'); nl >= 0 {
			line = content[start : start+nl]
			end = start + nl + 1
			terminated = true
		} else {
			line = content[start:]
			end = len(content)
		}
		lineNum++

		blank := len(bytes.TrimSpace(line)) == 0
		if !terminated && !blank {
			// Partially-written trailing line: hold the watermark so the
			// next read picks it up once completed.
			break
		}

		if !blank {
			entries, err := DecodeLine(line)
			if err != nil {
				outcome.Errors = append(outcome.Errors, fmt.Sprintf("line %d: %v", lineNum, err))
			} else {
				outcome.Entries = append(outcome.Entries, entries...)
			}
		}

		outcome.BytesConsumed = offset + int64(end)
		start = end
	}

	return outcome, nil
}

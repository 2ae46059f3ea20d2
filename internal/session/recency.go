package session

import (
	"bufio"
	"encoding/json"
	"os"
	"time"
)

// latestEntryTimestamp scans a JSONL file for the last parseable entry that
// carries a timestamp. Content-derived recency is preferred over file mtime
// because mtime can lag behind logical completion time for buffered writers.
func latestEntryTimestamp(path string) (time.Time, bool) {
	file, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	const maxScanTokenSize = 1024 * 1024 // 1MB
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxScanTokenSize)

	var latest time.Time
	found := false
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var probe struct {
			Timestamp *time.Time `json:"timestamp"`
		}
		if err := json.Unmarshal(line, &probe); err != nil {
			continue
		}
		if probe.Timestamp != nil {
			latest = *probe.Timestamp
			found = true
		}
	}
	return latest, found
}

// fileRecency returns the content-derived timestamp for a log file, falling
// back to its modification time when no entry yields one.
func fileRecency(path string) time.Time {
	if ts, ok := latestEntryTimestamp(path); ok {
		return ts
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

package session

import (
	"encoding/json"
	"os"
)

// indexFileName is the optional per-project sessions index.
const indexFileName = "sessions-index.json"

// sessionsIndex is the decoded optional index: summaries keyed by session
// id, plus an optional authoritative original project path.
type sessionsIndex struct {
	OriginalPath string
	Summaries    map[string]string
}

// rawIndex tolerates both index shapes: sessions as a map of id to entry,
// or as a list of entries carrying their own ids.
type rawIndex struct {
	OriginalPath string          `json:"originalPath"`
	Sessions     json.RawMessage `json:"sessions"`
}

type rawIndexEntry struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

// loadSessionsIndex reads the index at path. A missing or unparseable index
// is not an error; it degrades to the decode/mtime fallbacks.
func loadSessionsIndex(path string) sessionsIndex {
	idx := sessionsIndex{Summaries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		return idx
	}

	var raw rawIndex
	if err := json.Unmarshal(data, &raw); err != nil {
		return idx
	}
	idx.OriginalPath = raw.OriginalPath

	if len(raw.Sessions) == 0 {
		return idx
	}

	var byID map[string]rawIndexEntry
	if err := json.Unmarshal(raw.Sessions, &byID); err == nil {
		for id, entry := range byID {
			if entry.Summary != "" {
				idx.Summaries[id] = entry.Summary
			}
		}
		return idx
	}

	var list []rawIndexEntry
	if err := json.Unmarshal(raw.Sessions, &list); err == nil {
		for _, entry := range list {
			if entry.ID != "" && entry.Summary != "" {
				idx.Summaries[entry.ID] = entry.Summary
			}
		}
	}

	return idx
}

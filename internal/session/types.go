// Package session discovers the project/session/agent hierarchy under the
// agent's projects directory and ranks everything by content-derived recency.
package session

import (
	"path/filepath"
	"strings"
	"time"
)

// Project is one encoded project directory. Immutable once discovered;
// replaced wholesale on re-scan.
type Project struct {
	// Name is the last component of the original path.
	Name string
	// EncodedName is the filesystem-encoded directory name (the lookup key).
	EncodedName string
	// Path is the project directory under the projects root.
	Path string
	// OriginalPath is the decoded original filesystem path. Authoritative
	// when the sessions index supplies it, best-effort decoded otherwise.
	OriginalPath string
	// Recency is the latest content-derived timestamp across the project's
	// session logs, falling back to the directory mtime.
	Recency time.Time
}

// AbbreviatedPath renders the original path like ~/s/c/my-project: every
// component except the last shortened to its first character.
func (p Project) AbbreviatedPath(home string) string {
	path := p.OriginalPath
	if home != "" && strings.HasPrefix(path, home) {
		path = "~" + path[len(home):]
	}
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	for i, part := range parts[:len(parts)-1] {
		if part == "" || part == "~" {
			continue
		}
		parts[i] = part[:1]
	}
	return strings.Join(parts, "/")
}

// Session is one JSONL transcript file directly under a project directory.
type Session struct {
	ID          string
	ProjectPath string
	LogPath     string
	// Summary is the optional human summary from the sessions index.
	Summary string
	Recency time.Time
}

// DisplayName prefers the summary over the (truncated) session id.
func (s Session) DisplayName() string {
	if s.Summary != "" {
		return s.Summary
	}
	if len(s.ID) > 8 {
		return s.ID[:8] + "..."
	}
	return s.ID
}

// MainAgentID identifies the session's primary log in an agent list.
const MainAgentID = "main"

// Agent is the main agent or one sub-agent log within a session.
type Agent struct {
	ID          string
	DisplayName string
	LogPath     string
	Recency     time.Time
	// IsMain is true for exactly one agent per session; it is always
	// first in the ranked list.
	IsMain bool
}

// decodeProjectDir reinterprets an encoded directory name as the original
// path by turning every dash into a path separator. Lossy for directory
// names that legitimately contain hyphens; the sessions index original path
// is preferred whenever present.
func decodeProjectDir(encoded string) (name, originalPath string) {
	originalPath = strings.ReplaceAll(encoded, "-", "/")
	name = filepath.Base(originalPath)
	if name == "/" || name == "." {
		name = encoded
	}
	return name, originalPath
}

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
)

// Scanner discovers projects, sessions and agents under a projects root.
// All scans are read-only and independently retryable.
type Scanner struct {
	root string
	log  *logrus.Entry
}

// NewScanner creates a scanner over the given projects root directory.
func NewScanner(root string, log *logrus.Entry) *Scanner {
	return &Scanner{root: root, log: log}
}

// Root returns the projects root directory this scanner reads.
func (s *Scanner) Root() string {
	return s.root
}

// DefaultRoot returns the conventional projects directory under the user's
// home.
func DefaultRoot() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude", "projects"), nil
}

// ScanProjects enumerates project directories under the root and ranks them
// by recency, newest first. A missing root yields an empty list.
func (s *Scanner) ScanProjects() ([]Project, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read projects directory: %w", err)
	}

	var projects []Project
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		encoded := dirEntry.Name()
		dir := filepath.Join(s.root, encoded)

		name, originalPath := decodeProjectDir(encoded)
		idx := loadSessionsIndex(filepath.Join(dir, indexFileName))
		if idx.OriginalPath != "" {
			originalPath = idx.OriginalPath
			name = filepath.Base(originalPath)
		}

		projects = append(projects, Project{
			Name:         name,
			EncodedName:  encoded,
			Path:         dir,
			OriginalPath: originalPath,
			Recency:      s.projectRecency(dir, dirEntry),
		})
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Recency.After(projects[j].Recency)
	})
	s.log.WithField("count", len(projects)).Debug("scanned projects")
	return projects, nil
}

// projectRecency is the latest content-derived timestamp across the
// project's session logs, or the directory mtime if there are none.
func (s *Scanner) projectRecency(dir string, dirEntry os.DirEntry) time.Time {
	var latest time.Time
	found := false

	logs, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err == nil {
		for _, logPath := range logs {
			if ts := fileRecency(logPath); ts.After(latest) {
				latest = ts
				found = true
			}
		}
	}
	if found {
		return latest
	}
	if info, err := dirEntry.Info(); err == nil {
		return info.ModTime()
	}
	return time.Time{}
}

// ScanSessions enumerates the *.jsonl session files directly under a project
// directory, attaches index summaries and ranks by recency, newest first.
func (s *Scanner) ScanSessions(project Project) ([]Session, error) {
	dirEntries, err := os.ReadDir(project.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project directory: %w", err)
	}

	idx := loadSessionsIndex(filepath.Join(project.Path, indexFileName))

	var sessions []Session
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), ".jsonl") {
			continue
		}
		logPath := filepath.Join(project.Path, dirEntry.Name())
		id := strings.TrimSuffix(dirEntry.Name(), ".jsonl")

		sessions = append(sessions, Session{
			ID:          id,
			ProjectPath: project.Path,
			LogPath:     logPath,
			Summary:     idx.Summaries[id],
			Recency:     fileRecency(logPath),
		})
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Recency.After(sessions[j].Recency)
	})
	return sessions, nil
}

// ScanAgents lists the session's agents: the main agent (the session's own
// log) pinned first, then any sub-agents from the conventional
// {session_id}/subagents directory sorted by recency descending.
func (s *Scanner) ScanAgents(sess Session) ([]Agent, error) {
	main := Agent{
		ID:          MainAgentID,
		DisplayName: "Main",
		LogPath:     sess.LogPath,
		Recency:     sess.Recency,
		IsMain:      true,
	}

	subDir := filepath.Join(sess.ProjectPath, sess.ID, "subagents")
	dirEntries, err := os.ReadDir(subDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Agent{main}, nil
		}
		return nil, fmt.Errorf("failed to read subagents directory: %w", err)
	}

	var subs []Agent
	for _, dirEntry := range dirEntries {
		name := dirEntry.Name()
		if dirEntry.IsDir() || !strings.HasPrefix(name, "agent-") || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		stem := strings.TrimSuffix(name, ".jsonl")
		id, agentType := parseAgentStem(stem)
		display := agentType
		if display == "" {
			display = id
		}
		logPath := filepath.Join(subDir, name)

		subs = append(subs, Agent{
			ID:          id,
			DisplayName: display,
			LogPath:     logPath,
			Recency:     fileRecency(logPath),
		})
	}

	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Recency.After(subs[j].Recency)
	})
	return append([]Agent{main}, subs...), nil
}

// parseAgentStem splits an agent-{type}-{id} or agent-{id} filename stem.
// The last hyphen-delimited segment is the id when the segment before it is
// non-empty and alphabetic; otherwise everything after "agent-" is the id.
// Ids that themselves contain letters can misclassify; kept for
// compatibility with the on-disk naming.
func parseAgentStem(stem string) (id, agentType string) {
	rest := strings.TrimPrefix(stem, "agent-")
	segs := strings.Split(rest, "-")
	if len(segs) >= 2 {
		prev := segs[len(segs)-2]
		if prev != "" && isAlphabetic(prev) {
			return segs[len(segs)-1], strings.Join(segs[:len(segs)-1], "-")
		}
	}
	return rest, ""
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

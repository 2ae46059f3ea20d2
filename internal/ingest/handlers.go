package ingest

import (
	"fmt"

	"github.com/grovetools/agtail/internal/session"
	"github.com/grovetools/agtail/internal/transcript"
	"github.com/grovetools/agtail/internal/watch"
)

func (o *Orchestrator) handleCommand(cmd command) {
	switch cmd.kind {
	case cmdSelectProject:
		if cmd.index < 0 || cmd.index >= len(o.projects) {
			return
		}
		o.selectProject(cmd.index)
	case cmdSelectSession:
		if cmd.index < 0 || cmd.index >= len(o.sessions) {
			return
		}
		o.selectSession(cmd.index)
	case cmdSelectAgent:
		if cmd.index < 0 || cmd.index >= len(o.agents) {
			return
		}
		o.loadAgent(cmd.index)
	case cmdRefresh:
		o.refreshConversation()
		o.startRescan()
	case cmdToggleFollow:
		o.autoFollow = !o.autoFollow
		if o.autoFollow {
			o.startRescan()
		}
	}
}

// selectProject resets everything below the project level and kicks off a
// session scan for the new selection.
func (o *Orchestrator) selectProject(idx int) {
	o.projectIdx = idx
	o.sessions = nil
	o.sessionIdx = -1
	o.agents = nil
	o.agentIdx = -1
	o.clearConversation()
	o.startSessionsScan(o.projects[idx], false)
}

func (o *Orchestrator) selectSession(idx int) {
	o.sessionIdx = idx
	o.agents = nil
	o.agentIdx = -1
	o.clearConversation()
	o.startAgentsScan(o.sessions[idx])
}

// clearConversation tears down the tail watcher and empties the buffer.
// A parse already in flight for the old path is left to be discarded by
// the staleness checks in handleParseResult.
func (o *Orchestrator) clearConversation() {
	o.watcher.Stop()
	o.buffer = nil
	o.evicted = 0
	o.parseErrors = nil
	o.loading = false
	o.parsingPath = ""
	o.tailing = false
}

// loadAgent starts a full parse of the agent's log. Re-selecting the agent
// whose load is already in flight is a no-op.
func (o *Orchestrator) loadAgent(idx int) {
	path := o.agents[idx].LogPath
	if o.loading && o.parsingPath == path {
		return
	}
	o.agentIdx = idx
	o.watcher.Stop()
	o.buffer = nil
	o.evicted = 0
	o.parseErrors = nil
	o.errMsg = ""
	o.loading = true
	o.tailing = false
	o.parsingPath = path
	go func() {
		outcome, err := transcript.ReadFrom(path, 0)
		select {
		case o.parseCh <- parseResult{path: path, outcome: outcome, err: err}:
		case <-o.done:
		}
	}()
}

// startTail parses from the watcher's watermark. At most one tail parse
// runs at a time; events arriving meanwhile are dropped and recovered by
// the next write or an explicit refresh.
func (o *Orchestrator) startTail() {
	if o.tailing || o.loading || !o.watcher.Active() {
		return
	}
	o.tailing = true
	path := o.watcher.Path()
	offset := o.watcher.Position()
	go func() {
		outcome, err := transcript.ReadFrom(path, offset)
		select {
		case o.parseCh <- parseResult{path: path, tail: true, outcome: outcome, err: err}:
		case <-o.done:
		}
	}()
}

func (o *Orchestrator) refreshConversation() {
	switch {
	case o.loading || o.tailing:
		// already in flight
	case o.watcher.Active():
		o.startTail()
	case o.agentIdx >= 0 && o.agentIdx < len(o.agents):
		// watcher setup failed earlier; retry from scratch
		o.loadAgent(o.agentIdx)
	}
}

func (o *Orchestrator) handleWatchEvent(ev watch.Event) {
	if ev.Err != nil {
		o.errMsg = fmt.Sprintf("watch error: %v", ev.Err)
		return
	}
	o.startTail()
}

func (o *Orchestrator) handleParseResult(res parseResult) {
	switch {
	case !res.tail && o.loading && res.path == o.parsingPath:
		o.loading = false
		o.parsingPath = ""
		if res.err != nil {
			o.buffer = nil
			o.errMsg = fmt.Sprintf("failed to load conversation: %v", res.err)
			return
		}
		o.buffer = transcript.MergeToolResults(res.outcome.Entries)
		o.parseErrors = res.outcome.Errors
		o.errMsg = ""
		o.evict()
		if err := o.watcher.Watch(res.path); err != nil {
			o.errMsg = fmt.Sprintf("failed to watch %s: %v", res.path, err)
			return
		}
		o.watcher.SetPosition(res.outcome.BytesConsumed)

	case res.tail && o.tailing && res.path == o.watcher.Path():
		o.tailing = false
		if res.err != nil {
			// keep what we have; the next write retries from the watermark
			o.errMsg = fmt.Sprintf("failed to read new entries: %v", res.err)
			return
		}
		batch := transcript.MergeToolResults(res.outcome.Entries)
		o.buffer = transcript.MergeContinuation(o.buffer, batch)
		o.parseErrors = append(o.parseErrors, res.outcome.Errors...)
		o.evict()
		o.watcher.SetPosition(res.outcome.BytesConsumed)

	default:
		o.log.WithField("path", res.path).Debug("discarded stale parse result")
	}
}

// evict drops the oldest entries beyond MaxEntries and bumps the monotonic
// eviction counter. The kept tail is copied so the dropped prefix does not
// pin the old backing array.
func (o *Orchestrator) evict() {
	n := len(o.buffer) - o.cfg.MaxEntries
	if n <= 0 {
		return
	}
	o.evicted += n
	kept := make([]transcript.Entry, len(o.buffer)-n)
	copy(kept, o.buffer[n:])
	o.buffer = kept
}

// startRescan re-scans projects and, when one is selected, its sessions.
// Only one periodic rescan runs at a time.
func (o *Orchestrator) startRescan() {
	if o.rescanning {
		return
	}
	o.rescanning = true
	var current *session.Project
	if o.projectIdx >= 0 && o.projectIdx < len(o.projects) {
		p := o.projects[o.projectIdx]
		current = &p
	}
	go func() {
		projects, err := o.scanner.ScanProjects()
		o.sendDiscovery(discoveryResult{
			kind:       discoverProjects,
			projects:   projects,
			err:        err,
			fromRescan: true,
			final:      current == nil,
		})
		if current != nil {
			sessions, serr := o.scanner.ScanSessions(*current)
			o.sendDiscovery(discoveryResult{
				kind:        discoverSessions,
				projectPath: current.Path,
				sessions:    sessions,
				err:         serr,
				fromRescan:  true,
				final:       true,
			})
		}
	}()
}

func (o *Orchestrator) startSessionsScan(p session.Project, fromRescan bool) {
	go func() {
		sessions, err := o.scanner.ScanSessions(p)
		o.sendDiscovery(discoveryResult{
			kind:        discoverSessions,
			projectPath: p.Path,
			sessions:    sessions,
			err:         err,
			fromRescan:  fromRescan,
		})
	}()
}

func (o *Orchestrator) startAgentsScan(sess session.Session) {
	go func() {
		agents, err := o.scanner.ScanAgents(sess)
		o.sendDiscovery(discoveryResult{
			kind:       discoverAgents,
			sessionLog: sess.LogPath,
			agents:     agents,
			err:        err,
		})
	}()
}

func (o *Orchestrator) sendDiscovery(res discoveryResult) {
	select {
	case o.discoveryCh <- res:
	case <-o.done:
	}
}

func (o *Orchestrator) handleDiscoveryResult(res discoveryResult) {
	if res.fromRescan && res.final {
		o.rescanning = false
	}
	switch res.kind {
	case discoverProjects:
		if res.err != nil {
			o.errMsg = fmt.Sprintf("failed to scan projects: %v", res.err)
			return
		}
		o.reconcileProjects(res.projects)
	case discoverSessions:
		if o.currentProjectPath() != res.projectPath {
			return // selection moved on, result no longer relevant
		}
		if res.err != nil {
			o.errMsg = fmt.Sprintf("failed to scan sessions: %v", res.err)
			return
		}
		o.reconcileSessions(res.sessions)
	case discoverAgents:
		if o.currentSessionLog() != res.sessionLog {
			return
		}
		if res.err != nil {
			o.errMsg = fmt.Sprintf("failed to scan agents: %v", res.err)
			return
		}
		o.agents = res.agents
		if len(res.agents) == 0 {
			o.agentIdx = -1
			o.clearConversation()
			return
		}
		idx := 0
		if o.autoFollow && len(res.agents) > 1 {
			idx = 1
		}
		o.loadAgent(idx)
	}
}

// reconcileProjects installs a fresh ranking, preserving the current
// selection by path. A vanished selection falls back to the first project;
// auto-follow forces the first project regardless.
func (o *Orchestrator) reconcileProjects(projects []session.Project) {
	prev := o.currentProjectPath()
	o.projects = projects
	if len(projects) == 0 {
		o.projectIdx = -1
		o.sessions = nil
		o.sessionIdx = -1
		o.agents = nil
		o.agentIdx = -1
		o.clearConversation()
		return
	}
	target := indexOfProject(projects, prev)
	if target < 0 || o.autoFollow {
		target = 0
	}
	if prev == "" || projects[target].Path != prev {
		o.selectProject(target)
		return
	}
	o.projectIdx = target
}

func (o *Orchestrator) reconcileSessions(sessions []session.Session) {
	prev := o.currentSessionLog()
	o.sessions = sessions
	if len(sessions) == 0 {
		o.sessionIdx = -1
		o.agents = nil
		o.agentIdx = -1
		o.clearConversation()
		return
	}
	target := indexOfSession(sessions, prev)
	if target < 0 || o.autoFollow {
		target = 0
	}
	if prev == "" || sessions[target].LogPath != prev {
		o.selectSession(target)
		return
	}
	o.sessionIdx = target
}

func (o *Orchestrator) currentProjectPath() string {
	if o.projectIdx >= 0 && o.projectIdx < len(o.projects) {
		return o.projects[o.projectIdx].Path
	}
	return ""
}

func (o *Orchestrator) currentSessionLog() string {
	if o.sessionIdx >= 0 && o.sessionIdx < len(o.sessions) {
		return o.sessions[o.sessionIdx].LogPath
	}
	return ""
}

func indexOfProject(projects []session.Project, path string) int {
	for i, p := range projects {
		if p.Path == path {
			return i
		}
	}
	return -1
}

func indexOfSession(sessions []session.Session, logPath string) int {
	for i, s := range sessions {
		if s.LogPath == logPath {
			return i
		}
	}
	return -1
}

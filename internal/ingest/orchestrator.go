// Package ingest is the concurrency core: it owns the bounded transcript
// buffer and the selection state, dispatches background parse and discovery
// work, reconciles completions against the live selection and enforces the
// eviction policy.
//
// A single control-loop goroutine performs every state mutation; background
// workers receive immutable inputs and report immutable results over
// channels. A completion is just data until the loop decides whether it is
// still relevant, which is what makes the staleness checks sufficient.
package ingest

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/agtail/internal/session"
	"github.com/grovetools/agtail/internal/transcript"
	"github.com/grovetools/agtail/internal/watch"
)

const (
	// DefaultMaxEntries bounds the transcript buffer.
	DefaultMaxEntries = 10000
	// DefaultRescanInterval is the periodic hierarchy re-scan cadence.
	DefaultRescanInterval = 5 * time.Second
)

// Config tunes the orchestrator.
type Config struct {
	MaxEntries     int
	RescanInterval time.Duration
	AutoFollow     bool
}

// Snapshot is the read-only view served to the presentation layer. The
// presentation layer owns cursor/scroll/focus state entirely; the core
// tracks nothing beyond the three selection indices.
type Snapshot struct {
	Projects []session.Project
	Sessions []session.Session
	Agents   []session.Agent

	ProjectIndex int
	SessionIndex int
	AgentIndex   int

	Entries      []transcript.Entry
	Evicted      int
	ParseErrors  []string
	Loading      bool
	Tailing      bool
	AutoFollow   bool
	ErrorMessage string
}

type commandKind int

const (
	cmdSelectProject commandKind = iota
	cmdSelectSession
	cmdSelectAgent
	cmdRefresh
	cmdToggleFollow
)

type command struct {
	kind  commandKind
	index int
}

// parseResult reports a completed background parse. The tail flag records
// which pipeline spawned it so a full load and a tail refresh of the same
// path can never be confused.
type parseResult struct {
	path    string
	tail    bool
	outcome *transcript.Outcome
	err     error
}

type discoveryKind int

const (
	discoverProjects discoveryKind = iota
	discoverSessions
	discoverAgents
)

type discoveryResult struct {
	kind discoveryKind

	projects []session.Project
	sessions []session.Session
	agents   []session.Agent

	// identity of the scan target, compared against the live selection
	projectPath string
	sessionLog  string

	err error

	fromRescan bool
	final      bool
}

// Orchestrator is the ingestion control loop. Construct with New, drive
// with Run; all other exported methods are safe to call from other
// goroutines while Run is active.
type Orchestrator struct {
	cfg     Config
	log     *logrus.Entry
	scanner *session.Scanner
	watcher *watch.Watcher

	commands    chan command
	snapshots   chan chan Snapshot
	parseCh     chan parseResult
	discoveryCh chan discoveryResult
	done        chan struct{}

	// loop-owned state below; touched only by Run's goroutine
	projects   []session.Project
	sessions   []session.Session
	agents     []session.Agent
	projectIdx int
	sessionIdx int
	agentIdx   int

	buffer      []transcript.Entry
	evicted     int
	parseErrors []string

	loading     bool
	parsingPath string
	tailing     bool
	rescanning  bool
	autoFollow  bool
	errMsg      string
}

// New creates an orchestrator over the given scanner and watcher.
func New(scanner *session.Scanner, watcher *watch.Watcher, cfg Config, log *logrus.Entry) *Orchestrator {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.RescanInterval <= 0 {
		cfg.RescanInterval = DefaultRescanInterval
	}
	return &Orchestrator{
		cfg:         cfg,
		log:         log,
		scanner:     scanner,
		watcher:     watcher,
		commands:    make(chan command, 16),
		snapshots:   make(chan chan Snapshot),
		parseCh:     make(chan parseResult, 4),
		discoveryCh: make(chan discoveryResult, 4),
		done:        make(chan struct{}),
		projectIdx:  -1,
		sessionIdx:  -1,
		agentIdx:    -1,
		autoFollow:  cfg.AutoFollow,
	}
}

// Run executes the control loop until ctx is cancelled. It must be running
// for the other exported methods to make progress.
func (o *Orchestrator) Run(ctx context.Context) {
	defer close(o.done)
	defer o.watcher.Stop()

	o.startRescan()

	ticker := time.NewTicker(o.cfg.RescanInterval)
	defer ticker.Stop()

	for {
		// Drain user commands first so interaction latency is not starved
		// by background completions arriving in bursts.
		select {
		case cmd := <-o.commands:
			o.handleCommand(cmd)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return
		case cmd := <-o.commands:
			o.handleCommand(cmd)
		case reply := <-o.snapshots:
			reply <- o.snapshot()
		case ev := <-o.watcher.Events():
			o.handleWatchEvent(ev)
		case res := <-o.parseCh:
			o.handleParseResult(res)
		case res := <-o.discoveryCh:
			o.handleDiscoveryResult(res)
		case <-ticker.C:
			o.startRescan()
		}
	}
}

// SelectProject switches the selection to the project at index.
func (o *Orchestrator) SelectProject(index int) { o.send(command{cmdSelectProject, index}) }

// SelectSession switches the selection to the session at index.
func (o *Orchestrator) SelectSession(index int) { o.send(command{cmdSelectSession, index}) }

// SelectAgent switches the selection to the agent at index.
func (o *Orchestrator) SelectAgent(index int) { o.send(command{cmdSelectAgent, index}) }

// RequestRefresh forces a hierarchy re-scan and a reload or tail refresh of
// the current conversation.
func (o *Orchestrator) RequestRefresh() { o.send(command{kind: cmdRefresh}) }

// ToggleAutoFollow flips automatic selection of the most recently active
// project/session/agent.
func (o *Orchestrator) ToggleAutoFollow() { o.send(command{kind: cmdToggleFollow}) }

func (o *Orchestrator) send(cmd command) {
	select {
	case o.commands <- cmd:
	case <-o.done:
	}
}

// Snapshot returns a read-only copy of the current state. ok is false once
// the control loop has stopped.
func (o *Orchestrator) Snapshot() (Snapshot, bool) {
	reply := make(chan Snapshot, 1)
	select {
	case o.snapshots <- reply:
	case <-o.done:
		return Snapshot{}, false
	}
	select {
	case snap := <-reply:
		return snap, true
	case <-o.done:
		return Snapshot{}, false
	}
}

func (o *Orchestrator) snapshot() Snapshot {
	return Snapshot{
		Projects:     append([]session.Project(nil), o.projects...),
		Sessions:     append([]session.Session(nil), o.sessions...),
		Agents:       append([]session.Agent(nil), o.agents...),
		ProjectIndex: o.projectIdx,
		SessionIndex: o.sessionIdx,
		AgentIndex:   o.agentIdx,
		Entries:      append([]transcript.Entry(nil), o.buffer...),
		Evicted:      o.evicted,
		ParseErrors:  append([]string(nil), o.parseErrors...),
		Loading:      o.loading,
		Tailing:      o.tailing,
		AutoFollow:   o.autoFollow,
		ErrorMessage: o.errMsg,
	}
}

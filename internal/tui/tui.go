// Package tui is the live viewer: three selection panes over the
// project/session/agent hierarchy and a conversation viewport, refreshed by
// polling the ingestion orchestrator for snapshots.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/grovetools/agtail/internal/display"
	"github.com/grovetools/agtail/internal/ingest"
)

const (
	sidebarWidth = 34
	pollInterval = 100 * time.Millisecond
)

type pane int

const (
	paneProjects pane = iota
	paneSessions
	paneAgents
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the bubbletea model for the live viewer. All transcript and
// hierarchy state lives in the orchestrator; the model holds only
// presentation state (focus, scroll, toggles) plus the latest snapshot.
type Model struct {
	orch *ingest.Orchestrator

	snap  ingest.Snapshot
	ready bool

	width    int
	height   int
	focus    pane
	viewport viewport.Model
	stick    bool // keep viewport pinned to the newest entry
	opts     display.Options
	showHelp bool
	quitting bool

	rendered renderState
}

// renderState fingerprints what the viewport currently shows, so content is
// rebuilt only when the conversation or a toggle actually changed.
type renderState struct {
	entryCount   int
	evicted      int
	lastText     string
	lastResolved bool
	agentIndex   int
	opts         display.Options
	width        int
}

// New creates the viewer model over a running orchestrator.
func New(orch *ingest.Orchestrator, opts display.Options) Model {
	return Model{
		orch:  orch,
		opts:  opts,
		stick: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vw, vh := m.viewportSize()
		if !m.ready {
			m.viewport = viewport.New(vw, vh)
			m.ready = true
		} else {
			m.viewport.Width = vw
			m.viewport.Height = vh
		}
		m.rendered = renderState{}
		m.refreshContent()
		return m, nil

	case tickMsg:
		snap, ok := m.orch.Snapshot()
		if !ok {
			m.quitting = true
			return m, tea.Quit
		}
		m.snap = snap
		m.refreshContent()
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.focus = (m.focus + 1) % 3
	case "shift+tab":
		m.focus = (m.focus + 2) % 3

	case "up", "k":
		m.moveSelection(-1)
	case "down", "j":
		m.moveSelection(1)

	case "pgup", "ctrl+u":
		m.stick = false
		m.viewport.HalfViewUp()
	case "pgdown", "ctrl+d":
		m.viewport.HalfViewDown()
		m.stick = m.viewport.AtBottom()
	case "home", "g":
		m.stick = false
		m.viewport.GotoTop()
	case "end", "G":
		m.stick = true
		m.viewport.GotoBottom()

	case "f":
		m.orch.ToggleAutoFollow()
	case "t":
		m.opts.ShowThinking = !m.opts.ShowThinking
		m.refreshContent()
	case "e":
		m.opts.ExpandTools = !m.opts.ExpandTools
		m.refreshContent()
	case "r":
		m.orch.RequestRefresh()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// moveSelection advances the focused pane's selection. The orchestrator is
// the source of truth; the snapshot catches up on the next poll.
func (m *Model) moveSelection(delta int) {
	switch m.focus {
	case paneProjects:
		if idx, ok := step(m.snap.ProjectIndex, delta, len(m.snap.Projects)); ok {
			m.orch.SelectProject(idx)
		}
	case paneSessions:
		if idx, ok := step(m.snap.SessionIndex, delta, len(m.snap.Sessions)); ok {
			m.orch.SelectSession(idx)
		}
	case paneAgents:
		if idx, ok := step(m.snap.AgentIndex, delta, len(m.snap.Agents)); ok {
			m.orch.SelectAgent(idx)
		}
	}
	m.stick = true
}

func step(current, delta, n int) (int, bool) {
	if n == 0 {
		return 0, false
	}
	next := current + delta
	if next < 0 || next >= n {
		return 0, false
	}
	return next, true
}

// refreshContent rebuilds the viewport content when the conversation, a
// display toggle, or the width changed since the last render.
func (m *Model) refreshContent() {
	if !m.ready {
		return
	}
	state := renderState{
		entryCount: len(m.snap.Entries),
		evicted:    m.snap.Evicted,
		agentIndex: m.snap.AgentIndex,
		opts:       m.opts,
		width:      m.viewport.Width,
	}
	if n := len(m.snap.Entries); n > 0 {
		last := m.snap.Entries[n-1]
		state.lastText = last.Text
		state.lastResolved = last.Result != nil
	}
	if state == m.rendered {
		return
	}
	m.rendered = state
	m.viewport.SetContent(display.RenderTranscript(m.snap.Entries, m.opts))
	if m.stick {
		m.viewport.GotoBottom()
	}
}

func (m Model) viewportSize() (int, int) {
	w := m.width - sidebarWidth - 1
	if w < 20 {
		w = 20
	}
	h := m.height - 2 // status bar and help line
	if h < 3 {
		h = 3
	}
	return w, h
}

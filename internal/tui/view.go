package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/core/tui/theme"

	"github.com/grovetools/agtail/internal/ingest"
)

var (
	paneTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.DefaultColors.MutedText)

	paneTitleFocused = lipgloss.NewStyle().
				Bold(true).
				Foreground(theme.DefaultColors.Yellow)

	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("25")).
				Foreground(lipgloss.Color("255"))

	rowStyle = lipgloss.NewStyle().
			Foreground(theme.DefaultColors.LightText)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	statusErrStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(theme.DefaultColors.Red).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "starting..."
	}

	sidebar := m.renderSidebar()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", m.viewport.View())

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(helpStyle.Render("  tab: focus  j/k: select  f: follow  t: thinking  e: expand  r: refresh  G: bottom  q: quit"))
	} else {
		b.WriteString(helpStyle.Render("  ?: help"))
	}
	return b.String()
}

func (m Model) renderSidebar() string {
	_, vh := m.viewportSize()
	// three panes share the sidebar height, two title lines each
	rows := (vh - 6) / 3
	if rows < 1 {
		rows = 1
	}

	home, _ := os.UserHomeDir()
	projects := make([]string, len(m.snap.Projects))
	for i, p := range m.snap.Projects {
		projects[i] = p.Name
		if p.Name == "" {
			projects[i] = p.AbbreviatedPath(home)
		}
	}
	sessions := make([]string, len(m.snap.Sessions))
	for i, s := range m.snap.Sessions {
		sessions[i] = s.DisplayName()
	}
	agents := make([]string, len(m.snap.Agents))
	for i, a := range m.snap.Agents {
		agents[i] = a.DisplayName
	}

	panes := []string{
		m.renderPane("Projects", projects, m.snap.ProjectIndex, m.focus == paneProjects, rows),
		m.renderPane("Sessions", sessions, m.snap.SessionIndex, m.focus == paneSessions, rows),
		m.renderPane("Agents", agents, m.snap.AgentIndex, m.focus == paneAgents, rows),
	}
	return lipgloss.NewStyle().Width(sidebarWidth).Render(strings.Join(panes, "\n"))
}

// renderPane lists items with the selection highlighted, scrolled so the
// selected item stays visible within rows.
func (m Model) renderPane(title string, items []string, selected int, focused bool, rows int) string {
	style := paneTitleStyle
	if focused {
		style = paneTitleFocused
	}

	var b strings.Builder
	b.WriteString(style.Render(fmt.Sprintf("%s (%d)", title, len(items))))
	b.WriteString("\n")

	offset := 0
	if selected >= rows {
		offset = selected - rows + 1
	}
	end := offset + rows
	if end > len(items) {
		end = len(items)
	}
	for i := offset; i < end; i++ {
		label := clip(items[i], sidebarWidth-2)
		if i == selected {
			b.WriteString(selectedRowStyle.Render("> " + label))
		} else {
			b.WriteString(rowStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderStatusBar() string {
	parts := []string{stateLabel(m.snap)}
	if m.snap.AutoFollow {
		parts = append(parts, "follow")
	}
	if m.snap.Evicted > 0 {
		parts = append(parts, fmt.Sprintf("%d evicted", m.snap.Evicted))
	}
	if n := len(m.snap.ParseErrors); n > 0 {
		parts = append(parts, fmt.Sprintf("%d parse errors", n))
	}
	parts = append(parts, fmt.Sprintf("%d entries", len(m.snap.Entries)))

	line := strings.Join(parts, "  ·  ")
	if m.snap.ErrorMessage != "" {
		return statusErrStyle.Width(m.width).Render(m.snap.ErrorMessage)
	}
	return statusBarStyle.Width(m.width).Render(line)
}

func stateLabel(snap ingest.Snapshot) string {
	switch {
	case snap.Loading:
		return "loading"
	case snap.Tailing:
		return "reading"
	default:
		return "watching"
	}
}

func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

// Package display renders normalized transcript entries as styled terminal
// text. Rendering is pure string construction so the same output feeds both
// the live viewer's viewport and one-shot command output.
package display

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/core/tui/theme"

	"github.com/grovetools/agtail/internal/transcript"
)

// treeChar connects sub-content (tool output) to its parent call.
const treeChar = "⎿"

// longOutputLines is the threshold above which tool output collapses to a
// line-count summary unless expansion is requested.
const longOutputLines = 5

// Options controls presentation-level visibility toggles.
type Options struct {
	ShowThinking bool
	ExpandTools  bool
}

var (
	toolStyle    = lipgloss.NewStyle().Foreground(theme.DefaultColors.Green)
	textStyle    = lipgloss.NewStyle().Foreground(theme.DefaultColors.LightText)
	userStyle    = lipgloss.NewStyle().Foreground(theme.DefaultColors.Yellow)
	mutedStyle   = lipgloss.NewStyle().Foreground(theme.DefaultColors.MutedText)
	errorStyle   = lipgloss.NewStyle().Foreground(theme.DefaultColors.Red)
	spawnStyle   = lipgloss.NewStyle().Foreground(theme.DefaultColors.Violet)
	thinkingText = lipgloss.NewStyle().Foreground(theme.DefaultColors.MutedText).Italic(true)
)

// RenderTranscript renders entries in order, one block per entry.
func RenderTranscript(entries []transcript.Entry, opts Options) string {
	var b strings.Builder
	for _, e := range entries {
		block := RenderEntry(e, opts)
		if block == "" {
			continue
		}
		b.WriteString(block)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderEntry renders a single entry. Entries with nothing to show (for
// example collapsed thinking with thinking display off) yield "".
func RenderEntry(e transcript.Entry, opts Options) string {
	switch e.Kind {
	case transcript.KindUserMessage:
		return fmt.Sprintf("%s %s\n", userStyle.Render(theme.IconChevron), e.Text)

	case transcript.KindAssistantText:
		return fmt.Sprintf("%s %s\n", textStyle.Render(theme.IconRobot), e.Text)

	case transcript.KindThinking:
		return renderThinking(e, opts)

	case transcript.KindToolCall:
		return renderToolCall(e, opts)

	case transcript.KindToolResult:
		// Unmerged result: its call was evicted or lives before the
		// current window, so show the output standalone.
		return renderOutput(e.Content, e.IsError, opts)

	case transcript.KindHookEvent:
		label := e.Event
		if e.HookName != "" {
			label = fmt.Sprintf("%s: %s", e.Event, e.HookName)
		}
		if e.Command != "" {
			label = fmt.Sprintf("%s (%s)", label, truncate(e.Command, 60))
		}
		return mutedStyle.Render(fmt.Sprintf("⚙ hook %s", label)) + "\n"

	case transcript.KindAgentSpawn:
		label := e.AgentType
		if e.Description != "" {
			label = fmt.Sprintf("%s: %s", e.AgentType, e.Description)
		}
		return fmt.Sprintf("%s %s\n", spawnStyle.Render(theme.IconRobot),
			spawnStyle.Render(fmt.Sprintf("spawned agent %s", label)))
	}
	return ""
}

func renderThinking(e transcript.Entry, opts Options) string {
	if !opts.ShowThinking {
		return thinkingText.Render("∴ Thinking…") + "\n"
	}
	var b strings.Builder
	b.WriteString(thinkingText.Render("∴ Thinking…"))
	b.WriteString("\n\n")
	for _, line := range strings.Split(e.Text, "\n") {
		if strings.TrimSpace(line) != "" {
			b.WriteString(thinkingText.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderToolCall(e transcript.Entry, opts Options) string {
	var b strings.Builder
	b.WriteString(toolStyle.Render(theme.IconRobot))
	b.WriteString(" ")
	b.WriteString(formatToolCall(e))
	b.WriteString("\n")
	if e.Result != nil {
		b.WriteString(renderOutput(e.Result.Content, e.Result.IsError, opts))
	}
	return b.String()
}

// renderOutput lays tool output under a tree connector. Long output
// collapses to a line count unless expanded; error output is styled red.
func renderOutput(content string, isError bool, opts Options) string {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return ""
	}
	style := mutedStyle
	if isError {
		style = errorStyle
	}
	tree := mutedStyle.Render(treeChar)

	lines := strings.Split(content, "\n")
	if !opts.ExpandTools && len(lines) > longOutputLines {
		return fmt.Sprintf("  %s  %s\n", tree, style.Render(fmt.Sprintf("(%d lines)", len(lines))))
	}

	var b strings.Builder
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if first {
			fmt.Fprintf(&b, "  %s  %s\n", tree, style.Render(line))
			first = false
		} else {
			fmt.Fprintf(&b, "     %s\n", style.Render(line))
		}
	}
	return b.String()
}

// formatToolCall renders ToolName(key_arg), capitalized for consistency.
func formatToolCall(e transcript.Entry) string {
	name := capitalizeFirst(e.ToolName)
	if arg := extractKeyArg(e.ToolInput); arg != "" {
		return fmt.Sprintf("%s(%s)", name, arg)
	}
	return name
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// extractKeyArg picks the most relevant input parameter for inline display.
func extractKeyArg(input string) string {
	if input == "" {
		return ""
	}
	var params map[string]interface{}
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return ""
	}

	if cmd, ok := params["command"].(string); ok {
		return truncate(strings.TrimSpace(cmd), 60)
	}
	if filePath, ok := params["file_path"].(string); ok {
		return shortenPath(filePath)
	}
	if filePath, ok := params["filePath"].(string); ok {
		return shortenPath(filePath)
	}
	if pattern, ok := params["pattern"].(string); ok {
		return pattern
	}
	if query, ok := params["query"].(string); ok {
		return truncate(query, 40)
	}
	if url, ok := params["url"].(string); ok {
		return url
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// shortenPath keeps the filename and some parent context for long paths.
func shortenPath(path string) string {
	if len(path) <= 50 {
		return path
	}
	parts := strings.Split(path, "/")
	if len(parts) <= 3 {
		return path
	}
	shortened := ".../" + strings.Join(parts[len(parts)-2:], "/")
	if len(shortened) > 50 {
		return ".../" + parts[len(parts)-1]
	}
	return shortened
}

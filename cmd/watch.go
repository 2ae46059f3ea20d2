package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/agtail/config"
	"github.com/grovetools/agtail/internal/display"
	"github.com/grovetools/agtail/internal/ingest"
	"github.com/grovetools/agtail/internal/session"
	"github.com/grovetools/agtail/internal/tui"
	"github.com/grovetools/agtail/internal/watch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch agent transcripts live",
		Long:  "Open the live viewer: browse projects, sessions and agents, and tail the selected conversation as it grows.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefault()
			if err != nil {
				return err
			}

			// The TUI owns the terminal, so diagnostics go to a file or
			// nowhere.
			logger := logrus.New()
			logger.SetOutput(io.Discard)
			if logFile, _ := cmd.Flags().GetString("log-file"); logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				logger.SetOutput(f)
				logger.SetLevel(logrus.DebugLevel)
			}
			log := logrus.NewEntry(logger)

			root, _ := cmd.Flags().GetString("root")
			if root == "" {
				root = cfg.ProjectsDir
			}
			if root == "" {
				root, err = session.DefaultRoot()
				if err != nil {
					return err
				}
			}

			follow := cfg.Watch.FollowActive
			if cmd.Flags().Changed("follow-active") {
				follow, _ = cmd.Flags().GetBool("follow-active")
			}
			maxEntries := cfg.Watch.MaxEntries
			if cmd.Flags().Changed("max-entries") {
				maxEntries, _ = cmd.Flags().GetInt("max-entries")
			}

			orch := ingest.New(
				session.NewScanner(root, log),
				watch.New(log),
				ingest.Config{
					MaxEntries:     maxEntries,
					RescanInterval: time.Duration(cfg.Watch.RescanSeconds) * time.Second,
					AutoFollow:     follow,
				},
				log,
			)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go orch.Run(ctx)

			opts := display.Options{
				ShowThinking: cfg.Display.ShowThinking,
				ExpandTools:  cfg.Display.ExpandTools,
			}
			p := tea.NewProgram(tui.New(orch, opts), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("viewer failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("root", "", "Projects root directory (default ~/.claude/projects)")
	cmd.Flags().Bool("follow-active", false, "Automatically follow the most recently active conversation")
	cmd.Flags().Int("max-entries", 0, "Maximum transcript entries to keep in memory")
	cmd.Flags().String("log-file", "", "Write diagnostic logs to this file")

	return cmd
}

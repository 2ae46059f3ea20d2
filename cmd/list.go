package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/grovetools/core/logging"
	"github.com/spf13/cobra"

	"github.com/grovetools/agtail/config"
	"github.com/grovetools/agtail/internal/display"
	"github.com/grovetools/agtail/internal/session"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered projects, or a project's sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefault()
			if err != nil {
				return err
			}

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

			scanner := session.NewScanner(root, logging.NewLogger("agtail.list"))

			projects, err := scanner.ScanProjects()
			if err != nil {
				return err
			}

			projectFilter, _ := cmd.Flags().GetString("project")
			if projectFilter == "" {
				home, _ := os.UserHomeDir()
				display.PrintProjectsTable(projects, home, os.Stdout)
				return nil
			}

			for _, p := range projects {
				if !strings.Contains(strings.ToLower(p.Name), strings.ToLower(projectFilter)) {
					continue
				}
				sessions, err := scanner.ScanSessions(p)
				if err != nil {
					return err
				}
				fmt.Printf("%s (%s)\n", p.Name, p.OriginalPath)
				display.PrintSessionsTable(sessions, os.Stdout)
				return nil
			}
			return fmt.Errorf("no project matching %q", projectFilter)
		},
	}

	cmd.Flags().String("root", "", "Projects root directory (default ~/.claude/projects)")
	cmd.Flags().String("project", "", "Show sessions for the first project matching this name")

	return cmd
}

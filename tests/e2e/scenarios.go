package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/command"
	"github.com/grovetools/tend/pkg/fs"
	"github.com/grovetools/tend/pkg/harness"
)

// FindProjectBinary locates the agtail binary under test. AGTAIL_BIN takes
// precedence, then a repo-root build, then PATH.
func FindProjectBinary() (string, error) {
	if bin := os.Getenv("AGTAIL_BIN"); bin != "" {
		return bin, nil
	}
	if wd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(wd, "..", "..", "agtail")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if bin, err := exec.LookPath("agtail"); err == nil {
		return bin, nil
	}
	return "", fmt.Errorf("agtail binary not found; build it or set AGTAIL_BIN")
}

// setupMockProjectsDir creates a mock ~/.claude/projects tree with two
// projects and a transcript containing a tool call and its result.
func setupMockProjectsDir(ctx *harness.Context) error {
	homeDir := ctx.NewDir("home")

	alphaDir := filepath.Join(homeDir, ".claude", "projects", "-tmp-project-alpha")
	if err := fs.CreateDir(alphaDir); err != nil {
		return err
	}

	transcriptContent := `{"type":"user","message":{"role":"user","content":"Hello"},"timestamp":"2025-01-01T12:00:00Z"}
{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","id":"toolu_01","name":"Bash","input":{"command":"ls"}}]},"timestamp":"2025-01-01T12:00:01Z"}
{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"toolu_01","content":"file.txt"}]},"timestamp":"2025-01-01T12:00:02Z"}
{"type":"assistant","message":{"role":"assistant","content":"All done"},"timestamp":"2025-01-01T12:00:03Z"}`

	transcriptPath := filepath.Join(alphaDir, "session-alpha.jsonl")
	if err := fs.WriteString(transcriptPath, transcriptContent); err != nil {
		return fmt.Errorf("failed to write session-alpha.jsonl: %w", err)
	}

	betaDir := filepath.Join(homeDir, ".claude", "projects", "-tmp-project-beta")
	if err := fs.CreateDir(betaDir); err != nil {
		return err
	}
	if err := fs.WriteString(filepath.Join(betaDir, "session-beta.jsonl"),
		`{"type":"user","message":{"role":"user","content":"Test message"},"timestamp":"2025-01-02T10:00:00Z"}`); err != nil {
		return err
	}

	ctx.Set("mock_home", homeDir)
	ctx.Set("transcript_path", transcriptPath)
	return nil
}

// AgtailListScenario tests the 'agtail list' command.
func AgtailListScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "agtail-list-command",
		Steps: []harness.Step{
			harness.NewStep("Setup mock projects directory", setupMockProjectsDir),
			harness.NewStep("Run 'agtail list'", func(ctx *harness.Context) error {
				bin, err := FindProjectBinary()
				if err != nil {
					return err
				}

				homeDir := ctx.GetString("mock_home")
				cmd := command.New(bin, "list").Env("HOME=" + homeDir)
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if result.ExitCode != 0 {
					return fmt.Errorf("agtail list failed: %s", result.Stderr)
				}

				if err := assert.Contains(result.Stdout, "PROJECT", "Should print table header"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "project-alpha", "Should list project-alpha"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "project-beta", "Should list project-beta")
			}),
			harness.NewStep("Run 'agtail list --project alpha'", func(ctx *harness.Context) error {
				bin, err := FindProjectBinary()
				if err != nil {
					return err
				}

				homeDir := ctx.GetString("mock_home")
				cmd := command.New(bin, "list", "--project", "alpha").Env("HOME=" + homeDir)
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if result.ExitCode != 0 {
					return fmt.Errorf("agtail list --project alpha failed: %s", result.Stderr)
				}

				if err := assert.Contains(result.Stdout, "SESSION ID", "Should print sessions header"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "session-alpha", "Should list session-alpha"); err != nil {
					return err
				}
				return assert.NotContains(result.Stdout, "session-beta", "Should not list the other project's sessions")
			}),
		},
	}
}

// AgtailReadScenario tests the 'agtail read' command.
func AgtailReadScenario() *harness.Scenario {
	return &harness.Scenario{
		Name: "agtail-read-command",
		Steps: []harness.Step{
			harness.NewStep("Setup mock projects directory", setupMockProjectsDir),
			harness.NewStep("Run 'agtail read' on a transcript", func(ctx *harness.Context) error {
				bin, err := FindProjectBinary()
				if err != nil {
					return err
				}

				homeDir := ctx.GetString("mock_home")
				transcriptPath := ctx.GetString("transcript_path")
				cmd := command.New(bin, "read", transcriptPath).Env("HOME=" + homeDir)
				result := cmd.Run()
				ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)

				if err := assert.Equal(0, result.ExitCode, "agtail read should exit successfully"); err != nil {
					return err
				}

				if err := assert.Contains(result.Stdout, "Hello", "Should show the user message"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "Bash(ls)", "Should show the tool call"); err != nil {
					return err
				}
				if err := assert.Contains(result.Stdout, "file.txt", "Should show the merged tool result"); err != nil {
					return err
				}
				return assert.Contains(result.Stdout, "All done", "Should show the closing assistant message")
			}),
		},
	}
}

package cmd

import (
	"fmt"
	"os"

	grovelogging "github.com/grovetools/core/logging"
	"github.com/spf13/cobra"

	"github.com/grovetools/agtail/config"
	"github.com/grovetools/agtail/internal/display"
	"github.com/grovetools/agtail/internal/transcript"
)

var ulog = grovelogging.NewUnifiedLogger("agtail.read")

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <transcript.jsonl>",
		Short: "Render a transcript file once and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			cfg, err := config.LoadDefault()
			if err != nil {
				return err
			}
			opts := display.Options{
				ShowThinking: cfg.Display.ShowThinking,
				ExpandTools:  cfg.Display.ExpandTools,
			}
			if cmd.Flags().Changed("thinking") {
				opts.ShowThinking, _ = cmd.Flags().GetBool("thinking")
			}
			if cmd.Flags().Changed("expand") {
				opts.ExpandTools, _ = cmd.Flags().GetBool("expand")
			}

			outcome, err := transcript.ParseFile(path)
			if err != nil {
				return fmt.Errorf("failed to read transcript: %w", err)
			}

			entries := transcript.MergeToolResults(outcome.Entries)
			fmt.Fprint(os.Stdout, display.RenderTranscript(entries, opts))

			for _, diag := range outcome.Errors {
				ulog.Info("skipped malformed line").
					Field("file", path).
					Pretty(diag).
					Emit()
			}
			return nil
		},
	}

	cmd.Flags().Bool("thinking", false, "Show full thinking blocks")
	cmd.Flags().Bool("expand", false, "Show full tool output")

	return cmd
}

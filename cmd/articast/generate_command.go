package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"articast/internal/pipeline"
)

func newGenerateCommand(ctx *commandContext, values *flagValues) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [article]",
		Short: "Synthesize an article into narrated audio with subtitles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			articlePath, err := resolveArticlePath(cfg.Paths.InputArticle, values.input, args)
			if err != nil {
				return err
			}
			cfg.Paths.InputArticle = articlePath
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			report, err := pipeline.Execute(runCtx, cfg, pipeline.Options{
				ArticlePath: articlePath,
				Force:       values.force,
				Observer: pipeline.ObserverFunc(func(result pipeline.SegmentResult) {
					switch result.Status {
					case pipeline.StatusCached:
						fmt.Fprintf(out, "segment %d: cached (%.2fs)\n", result.Segment.Index, result.Duration)
					case pipeline.StatusGenerated:
						fmt.Fprintf(out, "segment %d: generated (%.2fs)\n", result.Segment.Index, result.Duration)
					case pipeline.StatusFailed:
						fmt.Fprintf(out, "segment %d: FAILED: %v\n", result.Segment.Index, result.Err)
					}
				}),
			}, logger)
			if err != nil {
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprint(out, renderTable(
				[]string{"Total", "Cached", "Generated", "Failed", "Duration"},
				[][]string{{
					fmt.Sprintf("%d", report.Summary.Total),
					fmt.Sprintf("%d", report.Summary.Cached),
					fmt.Sprintf("%d", report.Summary.Generated),
					fmt.Sprintf("%d", report.Summary.Failed+report.Summary.Skipped),
					fmt.Sprintf("%.2fs", report.TotalDuration),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Audio:     %s\n", report.AudioPath)
			fmt.Fprintf(out, "Subtitles: %s\n", report.SubtitlePath)
			fmt.Fprintf(out, "Metadata:  %s\n", report.MetadataPath)
			if report.Summary.Failed+report.Summary.Skipped > 0 {
				fmt.Fprintf(out, "\n%d segment(s) missing; re-run to retry them.\n",
					report.Summary.Failed+report.Summary.Skipped)
			}
			return nil
		},
	}

	registerGenerationFlags(cmd, values)
	return cmd
}

func resolveArticlePath(configured, flagValue string, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if strings.TrimSpace(flagValue) != "" {
		return flagValue, nil
	}
	if strings.TrimSpace(configured) != "" {
		return configured, nil
	}
	return "", fmt.Errorf("no article given: pass a path, use --input, or set paths.input_article")
}

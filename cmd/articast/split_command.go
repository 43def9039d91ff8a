package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"articast/internal/splitter"
)

func newSplitCommand(ctx *commandContext, values *flagValues) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split [article]",
		Short: "Show how an article will be segmented, without synthesizing",
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

			text, err := os.ReadFile(articlePath)
			if err != nil {
				return fmt.Errorf("read article: %w", err)
			}

			segments := splitter.New(cfg.Split.MaxSegmentLength).Split(string(text), cfg.Split.DefaultVoice)
			rows := make([][]string, 0, len(segments))
			for _, segment := range segments {
				attrs := make([]string, 0, 2)
				if segment.Speed > 0 {
					attrs = append(attrs, fmt.Sprintf("speed=%.2f", segment.Speed))
				}
				if segment.Seed != 0 {
					attrs = append(attrs, fmt.Sprintf("seed=%d", segment.Seed))
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", segment.Index),
					segment.Voice,
					strings.Join(attrs, " "),
					fmt.Sprintf("%d", len([]rune(segment.Text))),
					truncateText(segment.Text, 60),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderTable(
				[]string{"#", "Voice", "Params", "Len", "Text"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%d segment(s)\n", len(segments))
			return nil
		},
	}

	cmd.Flags().StringVarP(&values.input, "input", "i", "", "Article text file to segment")
	cmd.Flags().IntVar(&values.maxSegmentLength, "max-segment-length", 0, "Maximum segment length in characters")
	cmd.Flags().StringVar(&values.defaultVoice, "voice", "", "Default voice profile name")
	return cmd
}

func truncateText(text string, limit int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-1]) + "…"
}

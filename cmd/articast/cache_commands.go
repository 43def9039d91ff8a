package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"articast/internal/logging"
	"articast/internal/segmentcache"
)

func newCacheCommand(ctx *commandContext, values *flagValues) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the segment cache",
	}

	cacheCmd.AddCommand(newCacheShowCommand(ctx, values))
	cacheCmd.AddCommand(newCacheClearCommand(ctx, values))
	cacheCmd.PersistentFlags().StringVarP(&values.input, "input", "i", "", "Article text file the cache belongs to")
	return cacheCmd
}

func openCacheForArticle(ctx *commandContext, values *flagValues, args []string) (*segmentcache.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	articlePath, err := resolveArticlePath(cfg.Paths.InputArticle, values.input, args)
	if err != nil {
		return nil, err
	}
	text, err := os.ReadFile(articlePath)
	if err != nil {
		return nil, fmt.Errorf("read article: %w", err)
	}
	identity, err := segmentcache.ComputeTaskID(string(text), cfg)
	if err != nil {
		return nil, err
	}
	return segmentcache.Open(cfg.Cache.Dir, identity, true, logging.NewNop())
}

func newCacheShowCommand(ctx *commandContext, values *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "show [article]",
		Short: "List cached segments for an article",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCacheForArticle(ctx, values, args)
			if err != nil {
				return err
			}

			entries := store.Entries()
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				state := "ok"
				if !store.Validate(entry) {
					state = "stale"
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", entry.SegmentIndex),
					entry.VoiceName,
					fmt.Sprintf("%.2fs", entry.Duration),
					state,
					truncateText(entry.Text, 50),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Task: %s\n", store.TaskID())
			fmt.Fprintf(out, "Directory: %s\n", store.Dir())
			if len(entries) == 0 {
				fmt.Fprintln(out, "No cached segments.")
				return nil
			}
			fmt.Fprint(out, renderTable(
				[]string{"#", "Voice", "Duration", "State", "Text"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
			))
			fmt.Fprintln(out)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext, values *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [article]",
		Short: "Remove cached segments for an article",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCacheForArticle(ctx, values, args)
			if err != nil {
				return err
			}
			count := len(store.Entries())
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached segment(s) for task %s\n", count, store.TaskID())
			return nil
		},
	}
}

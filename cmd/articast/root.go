package main

import (
	"github.com/spf13/cobra"

	"articast/internal/config"
)

// flagValues holds every flag that can override file-sourced configuration.
// Only flags the user actually set are applied.
type flagValues struct {
	input            string
	outputDir        string
	cacheDir         string
	noCache          bool
	maxSegmentLength int
	defaultVoice     string
	engine           string
	speed            float64
	timeoutSeconds   int
	crossfadeMillis  int
	workers          int
	force            bool
	logLevel         string
	logFormat        string
}

func newRootCommand() *cobra.Command {
	var configFlag string
	values := &flagValues{}
	overrides := &config.Overrides{}

	ctx := newCommandContext(&configFlag, overrides)

	rootCmd := &cobra.Command{
		Use:           "articast",
		Short:         "Generate narrated audio and subtitles from an article",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			collectOverrides(cmd, values, overrides)
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&values.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&values.logFormat, "log-format", "", "Log format (console, json)")

	rootCmd.AddCommand(newGenerateCommand(ctx, values))
	rootCmd.AddCommand(newSplitCommand(ctx, values))
	rootCmd.AddCommand(newCacheCommand(ctx, values))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// collectOverrides copies changed flag values into the override set. It
// checks the executing command's flag set, which includes inherited flags.
func collectOverrides(cmd *cobra.Command, values *flagValues, overrides *config.Overrides) {
	changed := func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.InheritedFlags().Lookup(name)
		}
		return flag != nil && flag.Changed
	}

	if changed("input") {
		overrides.InputArticle = &values.input
	}
	if changed("output-dir") {
		overrides.OutputDir = &values.outputDir
	}
	if changed("cache-dir") {
		overrides.CacheDir = &values.cacheDir
	}
	if changed("no-cache") {
		enabled := !values.noCache
		overrides.CacheEnabled = &enabled
	}
	if changed("max-segment-length") {
		overrides.MaxSegmentLength = &values.maxSegmentLength
	}
	if changed("voice") {
		overrides.DefaultVoice = &values.defaultVoice
	}
	if changed("engine") {
		overrides.Engine = &values.engine
	}
	if changed("speed") {
		overrides.Speed = &values.speed
	}
	if changed("timeout") {
		overrides.TimeoutSeconds = &values.timeoutSeconds
	}
	if changed("crossfade-ms") {
		overrides.CrossfadeMillis = &values.crossfadeMillis
	}
	if changed("workers") {
		overrides.Workers = &values.workers
	}
	if changed("log-level") {
		overrides.LogLevel = &values.logLevel
	}
	if changed("log-format") {
		overrides.LogFormat = &values.logFormat
	}
}

func registerGenerationFlags(cmd *cobra.Command, values *flagValues) {
	cmd.Flags().StringVarP(&values.input, "input", "i", "", "Article text file to narrate")
	cmd.Flags().StringVarP(&values.outputDir, "output-dir", "o", "", "Directory for generated audio and subtitles")
	cmd.Flags().StringVar(&values.cacheDir, "cache-dir", "", "Directory for the segment cache")
	cmd.Flags().BoolVar(&values.noCache, "no-cache", false, "Regenerate every segment, ignoring the cache")
	cmd.Flags().IntVar(&values.maxSegmentLength, "max-segment-length", 0, "Maximum segment length in characters")
	cmd.Flags().StringVar(&values.defaultVoice, "voice", "", "Default voice profile name")
	cmd.Flags().StringVar(&values.engine, "engine", "", "Synthesis engine (exec, mock)")
	cmd.Flags().Float64Var(&values.speed, "speed", 0, "Global speech speed multiplier")
	cmd.Flags().IntVar(&values.timeoutSeconds, "timeout", 0, "Per-segment synthesis timeout in seconds")
	cmd.Flags().IntVar(&values.crossfadeMillis, "crossfade-ms", 0, "Crossfade between segments in milliseconds")
	cmd.Flags().IntVar(&values.workers, "workers", 0, "Concurrent synthesis workers")
	cmd.Flags().BoolVar(&values.force, "force", false, "Discard cached segments and regenerate everything")
}

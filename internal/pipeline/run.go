// Package pipeline coordinates the full article-to-audio run: identity,
// locking, segmentation, synthesis, and assembly of the final outputs.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"articast/internal/config"
	"articast/internal/logging"
	"articast/internal/preflight"
	"articast/internal/runlog"
	"articast/internal/segmentcache"
	"articast/internal/services"
	"articast/internal/splitter"
	"articast/internal/subtitle"
	"articast/internal/synth"
	"articast/internal/wavutil"
)

// Options controls one Execute call.
type Options struct {
	ArticlePath string

	// Engine overrides the config-selected synthesizer. Tests use this.
	Engine synth.Synthesizer

	// Observer receives per-segment progress. Optional.
	Observer Observer

	// SkipPreflight bypasses environment checks.
	SkipPreflight bool

	// Force discards any cached segments before processing.
	Force bool
}

// Report describes a finished run.
type Report struct {
	Identity      segmentcache.Identity
	AudioPath     string
	SubtitlePath  string
	MetadataPath  string
	Summary       Summary
	TotalDuration float64
	Elapsed       time.Duration
}

// Execute runs the whole pipeline for one article. Partial failure is not
// fatal: the run completes with the failed segments absent from the audio
// and subtitles, and the report says which ones.
func Execute(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (Report, error) {
	started := time.Now()
	log := logging.NewComponentLogger(logger, "pipeline")

	text, err := os.ReadFile(opts.ArticlePath)
	if err != nil {
		return Report{}, services.Wrap(services.ErrValidation, "pipeline", "read article", "", err)
	}
	article := string(text)
	if strings.TrimSpace(article) == "" {
		return Report{}, services.Wrap(services.ErrValidation, "pipeline", "read article", "article is empty", nil)
	}

	identity, err := segmentcache.ComputeTaskID(article, cfg)
	if err != nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "pipeline", "task identity", "", err)
	}
	ctx = services.WithTaskID(ctx, identity.TaskID)
	log = log.With(logging.String(logging.FieldTaskID, identity.TaskID))

	if err := cfg.EnsureDirectories(); err != nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "pipeline", "prepare directories", "", err)
	}

	if !opts.SkipPreflight {
		failed := preflight.Failed(preflight.NewRunner().RunAll(cfg, opts.ArticlePath))
		if len(failed) > 0 {
			details := make([]string, len(failed))
			for i, result := range failed {
				details[i] = fmt.Sprintf("%s: %s", result.Name, result.Detail)
			}
			return Report{}, services.Wrap(services.ErrConfiguration, "pipeline", "preflight",
				strings.Join(details, "; "), nil)
		}
	}

	store, err := segmentcache.Open(cfg.Cache.Dir, identity, cfg.Cache.Enabled, logger)
	if err != nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "pipeline", "open cache", "", err)
	}

	lock := flock.New(filepath.Join(cfg.Cache.Dir, identity.TaskID+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return Report{}, services.Wrap(services.ErrTransient, "pipeline", "acquire lock", "", err)
	}
	if !locked {
		return Report{}, services.Wrap(services.ErrTransient, "pipeline", "acquire lock",
			"another run for this article is already in progress", nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("failed to release task lock", logging.Error(err))
		}
	}()

	if opts.Force {
		if err := store.Clear(); err != nil {
			return Report{}, services.Wrap(services.ErrConfiguration, "pipeline", "clear cache", "", err)
		}
		log.Info("cache cleared before run")
	}

	segments := splitter.New(cfg.Split.MaxSegmentLength).Split(article, cfg.Split.DefaultVoice)
	if len(segments) == 0 {
		return Report{}, services.Wrap(services.ErrValidation, "pipeline", "split", "article has no speakable text", nil)
	}
	log.Info("article segmented", logging.Int("segment_count", len(segments)))

	engine := opts.Engine
	if engine == nil {
		engine, err = newSynthesizer(cfg, logger)
		if err != nil {
			return Report{}, err
		}
	}

	coordinator := NewCoordinator(cfg, store, engine, logger)
	if opts.Observer != nil {
		coordinator.SetObserver(opts.Observer)
	}
	summary, err := coordinator.Process(ctx, segments)
	if err != nil {
		return Report{Identity: identity, Summary: summary}, err
	}
	if summary.Cached+summary.Generated == 0 {
		return Report{Identity: identity, Summary: summary},
			services.Wrap(services.ErrExternalTool, "pipeline", "synthesize", "every segment failed", nil)
	}

	report, err := assembleOutputs(cfg, opts.ArticlePath, identity, summary, log)
	if err != nil {
		return Report{Identity: identity, Summary: summary}, err
	}
	report.Elapsed = time.Since(started)

	recordRun(ctx, cfg, opts.ArticlePath, identity, report, started, log)

	log.Info("run finished",
		logging.String("audio", report.AudioPath),
		logging.Float64("total_duration", report.TotalDuration),
		logging.Duration("elapsed", report.Elapsed))
	return report, nil
}

func newSynthesizer(cfg *config.Config, logger *slog.Logger) (synth.Synthesizer, error) {
	switch cfg.TTS.Engine {
	case "mock":
		engine := synth.NewMockSynthesizer()
		engine.SampleRate = cfg.Concat.SampleRate
		return engine, nil
	case "exec":
		return synth.NewExecSynthesizer(cfg.TTS.Command, cfg.TTS.Model, logger)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "engine",
			fmt.Sprintf("unknown synthesis engine %q", cfg.TTS.Engine), nil)
	}
}

// assembleOutputs concatenates the successful segments, writes the combined
// audio, and derives subtitles from the same ordered durations. Failed
// segments contribute nothing: the subtitle clock only advances for audio
// that is actually present.
func assembleOutputs(cfg *config.Config, articlePath string, identity segmentcache.Identity, summary Summary, log *slog.Logger) (Report, error) {
	var clips []*wavutil.Clip
	var timings []subtitle.SegmentTiming
	for _, result := range summary.Results {
		if result.Status != StatusCached && result.Status != StatusGenerated {
			continue
		}
		clip, err := wavutil.Decode(result.AudioPath)
		if err != nil {
			return Report{}, services.Wrap(services.ErrExternalTool, "pipeline", "assemble",
				fmt.Sprintf("segment %d audio unreadable", result.Segment.Index), err)
		}
		clips = append(clips, clip)
		timings = append(timings, subtitle.SegmentTiming{Duration: clip.DurationSeconds(), Text: result.Segment.Text})
	}

	crossfade := time.Duration(cfg.Concat.CrossfadeMillis) * time.Millisecond
	combined, err := wavutil.Concatenate(clips, cfg.Concat.SampleRate, cfg.Concat.Channels, crossfade)
	if err != nil {
		return Report{}, services.Wrap(services.ErrExternalTool, "pipeline", "assemble", "concatenate audio", err)
	}

	base := outputBase(articlePath)
	audioPath := filepath.Join(cfg.Paths.OutputDir, base+".wav")
	subtitlePath := filepath.Join(cfg.Paths.OutputDir, base+".srt")
	metadataPath := filepath.Join(cfg.Paths.OutputDir, base+".metadata.json")

	if err := wavutil.Write(audioPath, combined); err != nil {
		return Report{}, services.Wrap(services.ErrExternalTool, "pipeline", "assemble", "write audio", err)
	}
	cues := subtitle.Timeline(timings)
	if err := subtitle.WriteSRT(subtitlePath, cues); err != nil {
		return Report{}, services.Wrap(services.ErrExternalTool, "pipeline", "assemble", "write subtitles", err)
	}

	meta := buildMetadata(identity.TaskID, articlePath, audioPath, subtitlePath,
		cfg.TTS.Engine, cfg.Concat.SampleRate, cfg.Concat.Channels, summary, cues)
	if err := writeMetadata(metadataPath, meta); err != nil {
		return Report{}, services.Wrap(services.ErrExternalTool, "pipeline", "assemble", "write metadata", err)
	}

	return Report{
		Identity:      identity,
		AudioPath:     audioPath,
		SubtitlePath:  subtitlePath,
		MetadataPath:  metadataPath,
		Summary:       summary,
		TotalDuration: combined.DurationSeconds(),
	}, nil
}

// recordRun appends the run to the history ledger. History is advisory, so
// failures log a warning rather than failing the run.
func recordRun(ctx context.Context, cfg *config.Config, articlePath string, identity segmentcache.Identity, report Report, started time.Time, log *slog.Logger) {
	store, err := runlog.Open(ctx, filepath.Join(cfg.Cache.Dir, "runs.db"))
	if err != nil {
		log.Warn("run history unavailable", logging.Error(err))
		return
	}
	defer store.Close()

	status := runlog.StatusCompleted
	if report.Summary.Failed > 0 || report.Summary.Skipped > 0 {
		status = runlog.StatusPartial
	}
	_, err = store.Record(ctx, runlog.Run{
		TaskID:        identity.TaskID,
		ArticlePath:   articlePath,
		OutputPath:    report.AudioPath,
		Status:        status,
		TotalSegments: report.Summary.Total,
		Cached:        report.Summary.Cached,
		Generated:     report.Summary.Generated,
		Failed:        report.Summary.Failed + report.Summary.Skipped,
		Duration:      report.TotalDuration,
		StartedAt:     started,
		FinishedAt:    time.Now(),
	})
	if err != nil {
		log.Warn("failed to record run history", logging.Error(err))
	}
}

func outputBase(articlePath string) string {
	base := filepath.Base(articlePath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." {
		base = "article"
	}
	return base
}

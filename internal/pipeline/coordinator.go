package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"articast/internal/config"
	"articast/internal/logging"
	"articast/internal/segmentcache"
	"articast/internal/services"
	"articast/internal/splitter"
	"articast/internal/synth"
)

// SegmentStatus classifies how a segment was resolved.
type SegmentStatus string

const (
	StatusCached    SegmentStatus = "cached"
	StatusGenerated SegmentStatus = "generated"
	StatusFailed    SegmentStatus = "failed"
	StatusSkipped   SegmentStatus = "skipped"
)

// SegmentResult is the outcome for one segment.
type SegmentResult struct {
	Segment   splitter.Segment
	Status    SegmentStatus
	AudioPath string
	Duration  float64
	Err       error
}

// Summary aggregates a full coordinator pass. Results holds one entry per
// input segment, in segment order.
type Summary struct {
	Total     int
	Cached    int
	Generated int
	Failed    int
	Skipped   int
	Results   []SegmentResult
}

// Succeeded reports whether every segment produced audio.
func (s Summary) Succeeded() bool { return s.Failed == 0 && s.Skipped == 0 }

type voiceBinding struct {
	profile config.Voice
	refText string
}

// Coordinator drives per-segment synthesis: cache first, then the engine,
// with failures isolated to their segment.
type Coordinator struct {
	cfg      *config.Config
	store    *segmentcache.Store
	engine   synth.Synthesizer
	logger   *slog.Logger
	observer Observer
}

func NewCoordinator(cfg *config.Config, store *segmentcache.Store, engine synth.Synthesizer, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		store:    store,
		engine:   engine,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		observer: NopObserver{},
	}
}

// SetObserver registers a progress observer. Must be called before Process.
func (c *Coordinator) SetObserver(observer Observer) {
	if c != nil && observer != nil {
		c.observer = observer
	}
}

// Process resolves every segment and returns the per-segment outcomes.
// Voice profiles are validated before any synthesis starts, so an unknown
// voice aborts the run instead of failing segment by segment. Cancellation
// stops dispatching new segments; segments already dispatched finish or
// fail on their own context.
func (c *Coordinator) Process(ctx context.Context, segments []splitter.Segment) (Summary, error) {
	summary := Summary{Total: len(segments), Results: make([]SegmentResult, len(segments))}
	if len(segments) == 0 {
		return summary, nil
	}

	voices, err := c.resolveVoices(segments)
	if err != nil {
		return summary, err
	}

	workers := c.cfg.Pipeline.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(segments) {
		workers = len(segments)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				segment := segments[idx]
				c.observer.SegmentStarted(segment.Index, len(segments), segment.Voice)
				result := c.resolveSegment(ctx, segment, voices[segment.Voice])
				summary.Results[idx] = result
				c.observer.SegmentFinished(result)
			}
		}()
	}

dispatch:
	for idx := range segments {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	for idx := range summary.Results {
		switch summary.Results[idx].Status {
		case StatusCached:
			summary.Cached++
		case StatusGenerated:
			summary.Generated++
		case StatusFailed:
			summary.Failed++
		default:
			summary.Results[idx] = SegmentResult{Segment: segments[idx], Status: StatusSkipped}
			summary.Skipped++
		}
	}

	c.logger.Info("segment processing finished",
		logging.Int("total", summary.Total),
		logging.Int("cached", summary.Cached),
		logging.Int("generated", summary.Generated),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped))

	if err := ctx.Err(); err != nil {
		return summary, services.Wrap(services.ErrTimeout, "pipeline", "process", "run cancelled", err)
	}
	return summary, nil
}

func (c *Coordinator) resolveVoices(segments []splitter.Segment) (map[string]voiceBinding, error) {
	voices := make(map[string]voiceBinding)
	for _, segment := range segments {
		if _, ok := voices[segment.Voice]; ok {
			continue
		}
		profile, err := c.cfg.VoiceProfile(segment.Voice)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "resolve voices", err.Error(), nil)
		}
		refText, err := synth.RefTextForVoice(profile)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "resolve voices",
				fmt.Sprintf("voice %q", segment.Voice), err)
		}
		voices[segment.Voice] = voiceBinding{profile: profile, refText: refText}
	}
	return voices, nil
}

func (c *Coordinator) resolveSegment(ctx context.Context, segment splitter.Segment, voice voiceBinding) SegmentResult {
	ctx = services.WithSegmentIndex(ctx, segment.Index)
	logger := c.logger.With(
		logging.Int(logging.FieldSegment, segment.Index),
		logging.String(logging.FieldVoice, segment.Voice))

	if entry, ok := c.store.Get(segment.Index); ok && entry.Text == segment.Text && entry.VoiceName == segment.Voice {
		if c.store.Validate(entry) {
			logger.Debug("cache hit")
			return SegmentResult{
				Segment:   segment,
				Status:    StatusCached,
				AudioPath: entry.AudioPath,
				Duration:  entry.Duration,
			}
		}
		logger.Warn("cached audio invalid, regenerating")
	}

	if err := ctx.Err(); err != nil {
		return SegmentResult{Segment: segment, Status: StatusFailed,
			Err: services.Wrap(services.ErrTimeout, "pipeline", "synthesize", "run cancelled", err)}
	}

	params := synth.ResolveParams(c.cfg.TTS, voice.profile, segment.Speed, segment.Seed)
	request := synth.Request{
		Text:       segment.Text,
		VoiceName:  segment.Voice,
		RefAudio:   voice.profile.RefAudio,
		RefText:    voice.refText,
		OutputPath: c.store.AudioPath(segment.Index),
		Params:     params,
	}

	segCtx := ctx
	if c.cfg.TTS.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		segCtx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.TTS.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	started := time.Now()
	result, err := c.engine.Synthesize(segCtx, request)
	if err != nil {
		logger.Error("segment synthesis failed",
			logging.String("text", snippet(segment.Text)),
			logging.Error(err))
		return SegmentResult{Segment: segment, Status: StatusFailed, Err: err}
	}

	entry := segmentcache.Entry{
		SegmentIndex: segment.Index,
		AudioPath:    result.AudioPath,
		Duration:     result.Duration,
		Text:         segment.Text,
		VoiceName:    segment.Voice,
	}
	if err := c.store.Put(entry); err != nil {
		logger.Warn("failed to record segment in cache", logging.Error(err))
	}

	logger.Debug("segment synthesized",
		logging.Float64("duration_seconds", result.Duration),
		logging.Duration("elapsed", time.Since(started)))
	return SegmentResult{
		Segment:   segment,
		Status:    StatusGenerated,
		AudioPath: result.AudioPath,
		Duration:  result.Duration,
	}
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= 40 {
		return text
	}
	return string(runes[:40]) + "…"
}

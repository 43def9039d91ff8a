package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"articast/internal/subtitle"
)

// Metadata summarizes a finished run next to its audio output.
type Metadata struct {
	TaskID        string            `json:"task_id"`
	ArticlePath   string            `json:"article_path"`
	GeneratedAt   time.Time         `json:"generated_at"`
	AudioPath     string            `json:"audio_path"`
	SubtitlePath  string            `json:"subtitle_path"`
	Engine        string            `json:"engine"`
	TotalDuration float64           `json:"total_duration"`
	SampleRate    int               `json:"sample_rate"`
	Channels      int               `json:"channels"`
	Segments      []SegmentMetadata `json:"segments"`
}

// SegmentMetadata is one segment's entry in the run metadata.
type SegmentMetadata struct {
	Index     int     `json:"index"`
	Voice     string  `json:"voice"`
	Status    string  `json:"status"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Duration  float64 `json:"duration"`
	Text      string  `json:"text"`
	AudioPath string  `json:"audio_path,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// buildMetadata pairs the per-segment outcomes with the subtitle cues. The
// cues cover only the segments that produced audio, in segment order, so
// they are consumed one per successful result.
func buildMetadata(taskID, articlePath, audioPath, subtitlePath, engine string, sampleRate, channels int, summary Summary, cues []subtitle.Entry) Metadata {
	meta := Metadata{
		TaskID:       taskID,
		ArticlePath:  articlePath,
		GeneratedAt:  time.Now().UTC(),
		AudioPath:    audioPath,
		SubtitlePath: subtitlePath,
		Engine:       engine,
		SampleRate:   sampleRate,
		Channels:     channels,
		Segments:     make([]SegmentMetadata, 0, len(summary.Results)),
	}
	next := 0
	for _, result := range summary.Results {
		segment := SegmentMetadata{
			Index:    result.Segment.Index,
			Voice:    result.Segment.Voice,
			Status:   string(result.Status),
			Duration: result.Duration,
			Text:     result.Segment.Text,
		}
		if result.Err != nil {
			segment.Error = result.Err.Error()
		}
		if result.Status == StatusCached || result.Status == StatusGenerated {
			segment.AudioPath = result.AudioPath
			if next < len(cues) {
				segment.Start = cues[next].Start
				segment.End = cues[next].End
				next++
			}
			meta.TotalDuration += result.Duration
		}
		meta.Segments = append(meta.Segments, segment)
	}
	return meta
}

func writeMetadata(path string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write metadata %q: %w", path, err)
	}
	return nil
}

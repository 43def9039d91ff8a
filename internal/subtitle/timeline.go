// Package subtitle builds the article timeline from measured segment
// durations and renders it as SRT.
package subtitle

import "strings"

// SegmentTiming is one successfully synthesized segment in playback order.
type SegmentTiming struct {
	Duration float64
	Text     string
}

// Entry is a single subtitle cue. Index is 1-based per the SRT convention.
type Entry struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// Timeline converts ordered segment timings into contiguous cues. Each
// cue's start is exactly the previous cue's end, carried as the running
// float sum rather than re-derived from formatted timestamps, so rounding
// never accumulates across the article.
func Timeline(timings []SegmentTiming) []Entry {
	entries := make([]Entry, 0, len(timings))
	clock := 0.0
	for _, timing := range timings {
		start := clock
		clock += timing.Duration
		entries = append(entries, Entry{
			Index: len(entries) + 1,
			Start: start,
			End:   clock,
			Text:  sanitizeCueText(timing.Text),
		})
	}
	return entries
}

// sanitizeCueText flattens text so a cue can never contain the blank line
// that terminates an SRT block.
func sanitizeCueText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, strings.TrimSpace(line))
		}
	}
	return strings.Join(kept, " ")
}

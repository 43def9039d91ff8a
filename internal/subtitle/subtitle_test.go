package subtitle

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTimelineContiguous(t *testing.T) {
	entries := Timeline([]SegmentTiming{
		{Duration: 2.0, Text: "你好。"},
		{Duration: 3.5, Text: "今天天气不错！"},
		{Duration: 1.0, Text: "这是旁白。"},
	})
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}

	want := []struct{ start, end float64 }{
		{0, 2.0},
		{2.0, 5.5},
		{5.5, 6.5},
	}
	for i, w := range want {
		if entries[i].Index != i+1 {
			t.Fatalf("entries[%d].Index = %d, want %d", i, entries[i].Index, i+1)
		}
		if entries[i].Start != w.start || entries[i].End != w.end {
			t.Fatalf("entries[%d] = [%f, %f], want [%f, %f]",
				i, entries[i].Start, entries[i].End, w.start, w.end)
		}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Start != entries[i-1].End {
			t.Fatalf("gap between cue %d and %d", i, i+1)
		}
	}
}

func TestTimelineNoRoundingDrift(t *testing.T) {
	timings := make([]SegmentTiming, 1000)
	for i := range timings {
		timings[i] = SegmentTiming{Duration: 0.0301, Text: "x"}
	}
	entries := Timeline(timings)
	last := entries[len(entries)-1]
	sum := 0.0301 * 1000
	if math.Abs(last.End-sum) > 1e-6 {
		t.Fatalf("final end = %f, want %f", last.End, sum)
	}
}

func TestTimelineEmpty(t *testing.T) {
	if entries := Timeline(nil); len(entries) != 0 {
		t.Fatalf("len = %d, want 0", len(entries))
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{2.0, "00:00:02,000"},
		{5.5, "00:00:05,500"},
		{61.234, "00:01:01,234"},
		{3661.0015, "01:01:01,002"},
		{-1, "00:00:00,000"},
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestamp(%f) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	seconds, err := ParseTimestamp("01:02:03,456")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if want := 3723.456; seconds != want {
		t.Fatalf("seconds = %f, want %f", seconds, want)
	}

	// period separator tolerated
	seconds, err = ParseTimestamp("00:00:01.500")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if seconds != 1.5 {
		t.Fatalf("seconds = %f, want 1.5", seconds)
	}

	for _, bad := range []string{"", "1:2", "aa:bb:cc,dd", "00:00:01"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Errorf("ParseTimestamp(%q) should fail", bad)
		}
	}
}

func TestWriteAndParseSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	entries := Timeline([]SegmentTiming{
		{Duration: 2.0, Text: "你好。"},
		{Duration: 3.5, Text: "今天天气不错！"},
	})
	if err := WriteSRT(path, entries); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "00:00:00,000 --> 00:00:02,000") {
		t.Fatalf("missing first cue timing:\n%s", text)
	}
	if !strings.Contains(text, "00:00:02,000 --> 00:00:05,500") {
		t.Fatalf("missing second cue timing:\n%s", text)
	}

	parsed, err := ParseSRT(path)
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("parsed %d cues, want 2", len(parsed))
	}
	if parsed[0].Text != "你好。" || parsed[1].Text != "今天天气不错！" {
		t.Fatalf("unexpected cue text: %+v", parsed)
	}
	if parsed[1].Start != 2.0 || parsed[1].End != 5.5 {
		t.Fatalf("cue 2 timing = [%f, %f]", parsed[1].Start, parsed[1].End)
	}
}

func TestCueTextNeverContainsBlankLine(t *testing.T) {
	entries := Timeline([]SegmentTiming{
		{Duration: 1.0, Text: "first\n\nsecond"},
	})
	if strings.Contains(entries[0].Text, "\n") {
		t.Fatalf("cue text still has newline: %q", entries[0].Text)
	}
	if entries[0].Text != "first second" {
		t.Fatalf("cue text = %q, want %q", entries[0].Text, "first second")
	}
}

package wavutil

import (
	"math"
	"path/filepath"
	"testing"
	"time"
)

func toneClip(t *testing.T, seconds float64, sampleRate, channels int) *Clip {
	t.Helper()
	frames := int(seconds * float64(sampleRate))
	samples := make([]int, frames*channels)
	for f := 0; f < frames; f++ {
		v := int(8000 * math.Sin(2*math.Pi*440*float64(f)/float64(sampleRate)))
		for c := 0; c < channels; c++ {
			samples[f*channels+c] = v
		}
	}
	return &Clip{Samples: samples, SampleRate: sampleRate, Channels: channels}
}

func TestWriteDecodeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	clip := toneClip(t, 0.5, 24000, 1)
	if err := Write(path, clip); err != nil {
		t.Fatalf("Write: %v", err)
	}

	decoded, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.SampleRate != 24000 || decoded.Channels != 1 {
		t.Fatalf("format = %d Hz %d ch, want 24000 Hz 1 ch", decoded.SampleRate, decoded.Channels)
	}
	if len(decoded.Samples) != len(clip.Samples) {
		t.Fatalf("sample count = %d, want %d", len(decoded.Samples), len(clip.Samples))
	}
	for i := range clip.Samples {
		if decoded.Samples[i] != clip.Samples[i] {
			t.Fatalf("sample %d = %d, want %d", i, decoded.Samples[i], clip.Samples[i])
		}
	}
}

func TestDurationProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := Write(path, toneClip(t, 1.25, 24000, 1)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	seconds, err := Duration(path)
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if math.Abs(seconds-1.25) > 0.001 {
		t.Fatalf("duration = %f, want 1.25", seconds)
	}
}

func TestDecodeMissingFile(t *testing.T) {
	if _, err := Decode(filepath.Join(t.TempDir(), "absent.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNormalizeDownmixAndResample(t *testing.T) {
	clip := toneClip(t, 1.0, 48000, 2)
	got := Normalize(clip, 24000, 1)
	if got.SampleRate != 24000 || got.Channels != 1 {
		t.Fatalf("format = %d Hz %d ch, want 24000 Hz 1 ch", got.SampleRate, got.Channels)
	}
	if math.Abs(got.DurationSeconds()-1.0) > 0.01 {
		t.Fatalf("duration = %f, want ~1.0", got.DurationSeconds())
	}
}

func TestNormalizeIdentity(t *testing.T) {
	clip := toneClip(t, 0.2, 24000, 1)
	if got := Normalize(clip, 24000, 1); got != clip {
		t.Fatal("normalize should return the same clip when formats already match")
	}
}

func TestConcatenateCrossfadeShortensOutput(t *testing.T) {
	a := toneClip(t, 1.0, 24000, 1)
	b := toneClip(t, 1.0, 24000, 1)
	out, err := Concatenate([]*Clip{a, b}, 24000, 1, 150*time.Millisecond)
	if err != nil {
		t.Fatalf("Concatenate: %v", err)
	}
	want := 2.0 - 0.150
	if math.Abs(out.DurationSeconds()-want) > 0.005 {
		t.Fatalf("duration = %f, want %f", out.DurationSeconds(), want)
	}
}

func TestConcatenateFadeClampedToShortClip(t *testing.T) {
	a := toneClip(t, 0.05, 24000, 1)
	b := toneClip(t, 1.0, 24000, 1)
	out, err := Concatenate([]*Clip{a, b}, 24000, 1, 150*time.Millisecond)
	if err != nil {
		t.Fatalf("Concatenate: %v", err)
	}
	// fade shrinks to the short clip's length, so the output overlaps 0.05s
	want := 1.05 - 0.05
	if math.Abs(out.DurationSeconds()-want) > 0.005 {
		t.Fatalf("duration = %f, want %f", out.DurationSeconds(), want)
	}
}

func TestConcatenateSingleClip(t *testing.T) {
	a := toneClip(t, 0.3, 48000, 2)
	out, err := Concatenate([]*Clip{a}, 24000, 1, 150*time.Millisecond)
	if err != nil {
		t.Fatalf("Concatenate: %v", err)
	}
	if out.SampleRate != 24000 || out.Channels != 1 {
		t.Fatalf("format = %d Hz %d ch, want 24000 Hz 1 ch", out.SampleRate, out.Channels)
	}
}

func TestConcatenateEmpty(t *testing.T) {
	if _, err := Concatenate(nil, 24000, 1, 0); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestConcatenateStaysInRange(t *testing.T) {
	loud := func() *Clip {
		samples := make([]int, 2400)
		for i := range samples {
			samples[i] = 32767
		}
		return &Clip{Samples: samples, SampleRate: 24000, Channels: 1}
	}
	out, err := Concatenate([]*Clip{loud(), loud()}, 24000, 1, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Concatenate: %v", err)
	}
	for i, v := range out.Samples {
		if v > 32767 || v < -32768 {
			t.Fatalf("sample %d = %d out of 16-bit range", i, v)
		}
	}
}

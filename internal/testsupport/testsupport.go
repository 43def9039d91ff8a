// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"articast/internal/config"
	"articast/internal/wavutil"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test,
// the mock synthesis engine, and a single "main" voice backed by a real
// reference WAV.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Cache.Dir = filepath.Join(base, "cache")
	cfg.TTS.Engine = "mock"

	refPath := filepath.Join(base, "main.wav")
	WriteSineWAV(t, refPath, 1.0, 24000)
	cfg.Voices = map[string]config.Voice{
		"main": {RefAudio: refPath},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		t.Fatalf("create output dir: %v", err)
	}
	if err := os.MkdirAll(cfg.Cache.Dir, 0o755); err != nil {
		t.Fatalf("create cache dir: %v", err)
	}
	return &cfg
}

// WithVoice registers an extra voice profile backed by a fresh reference WAV
// in the given directory.
func WithVoice(t testing.TB, name string) ConfigOption {
	return func(cfg *config.Config) {
		refPath := filepath.Join(filepath.Dir(cfg.Paths.OutputDir), name+".wav")
		WriteSineWAV(t, refPath, 1.0, 24000)
		cfg.Voices[name] = config.Voice{RefAudio: refPath}
	}
}

// WriteSineWAV writes a mono 440 Hz tone of the given length.
func WriteSineWAV(t testing.TB, path string, seconds float64, sampleRate int) {
	t.Helper()
	frames := int(seconds * float64(sampleRate))
	samples := make([]int, frames)
	for i := range samples {
		samples[i] = int(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
	}
	clip := &wavutil.Clip{Samples: samples, SampleRate: sampleRate, Channels: 1}
	if err := wavutil.Write(path, clip); err != nil {
		t.Fatalf("write sine wav %q: %v", path, err)
	}
}

// WriteArticle writes article text to a temp file and returns its path.
func WriteArticle(t testing.TB, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "article.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write article: %v", err)
	}
	return path
}

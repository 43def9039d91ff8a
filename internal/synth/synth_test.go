package synth

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"articast/internal/config"
	"articast/internal/logging"
	"articast/internal/services"
	"articast/internal/wavutil"
)

func globalTTS() config.TTS {
	return config.TTS{NFEStep: 32, CFGStrength: 2.0, Speed: 1.0, TargetRMS: 0.1}
}

func TestResolveParamsPrecedence(t *testing.T) {
	cases := []struct {
		name         string
		voice        config.Voice
		segmentSpeed float64
		segmentSeed  int64
		want         Params
	}{
		{
			name:  "globals only",
			voice: config.Voice{},
			want:  Params{NFEStep: 32, CFGStrength: 2.0, Speed: 1.0, TargetRMS: 0.1},
		},
		{
			name:  "voice overrides globals",
			voice: config.Voice{Speed: 0.9, NFEStep: 16},
			want:  Params{NFEStep: 16, CFGStrength: 2.0, Speed: 0.9, TargetRMS: 0.1},
		},
		{
			name:         "segment directive overrides voice",
			voice:        config.Voice{Speed: 0.9},
			segmentSpeed: 1.2,
			segmentSeed:  42,
			want:         Params{NFEStep: 32, CFGStrength: 2.0, Speed: 1.2, TargetRMS: 0.1, Seed: 42},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveParams(globalTTS(), tc.voice, tc.segmentSpeed, tc.segmentSeed)
			if got != tc.want {
				t.Fatalf("ResolveParams = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRefTextForVoice(t *testing.T) {
	dir := t.TempDir()

	explicit := config.Voice{RefAudio: filepath.Join(dir, "a.wav"), RefText: "spoken words"}
	text, err := RefTextForVoice(explicit)
	if err != nil {
		t.Fatalf("RefTextForVoice: %v", err)
	}
	if text != "spoken words" {
		t.Fatalf("text = %q, want explicit ref_text", text)
	}

	refAudio := filepath.Join(dir, "voice.wav")
	if err := os.WriteFile(filepath.Join(dir, "voice.txt"), []byte("sidecar transcript\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	text, err = RefTextForVoice(config.Voice{RefAudio: refAudio})
	if err != nil {
		t.Fatalf("RefTextForVoice: %v", err)
	}
	if text != "sidecar transcript" {
		t.Fatalf("text = %q, want sidecar contents", text)
	}

	text, err = RefTextForVoice(config.Voice{RefAudio: filepath.Join(dir, "other.wav")})
	if err != nil {
		t.Fatalf("RefTextForVoice: %v", err)
	}
	if text != "" {
		t.Fatalf("text = %q, want empty when no sidecar exists", text)
	}
}

func TestExecSynthesizerBuildsArgs(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "seg.wav")

	s, err := NewExecSynthesizer("f5-tts_infer-cli", "F5TTS_v1_Base", logging.NewNop())
	if err != nil {
		t.Fatalf("NewExecSynthesizer: %v", err)
	}

	var gotName string
	var gotArgs []string
	s.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		clip := &wavutil.Clip{Samples: make([]int, 2400), SampleRate: 24000, Channels: 1}
		return wavutil.Write(outPath, clip)
	})

	result, err := s.Synthesize(context.Background(), Request{
		Text:       "你好。",
		VoiceName:  "main",
		RefAudio:   filepath.Join(dir, "ref.wav"),
		RefText:    "reference",
		OutputPath: outPath,
		Params:     Params{NFEStep: 32, CFGStrength: 2.0, Speed: 1.2, TargetRMS: 0.1, Seed: 42},
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gotName != "f5-tts_infer-cli" {
		t.Fatalf("command = %q", gotName)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{
		"--model F5TTS_v1_Base",
		"--gen_text 你好。",
		"--ref_text reference",
		"--output_file " + outPath,
		"--speed 1.2",
		"--nfe_step 32",
		"--cfg_strength 2",
		"--target_rms 0.1",
		"--seed 42",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q:\n%s", want, joined)
		}
	}
	if math.Abs(result.Duration-0.1) > 0.001 {
		t.Fatalf("duration = %f, want 0.1", result.Duration)
	}
}

func TestExecSynthesizerCommandFailure(t *testing.T) {
	s, err := NewExecSynthesizer("f5-tts_infer-cli", "", logging.NewNop())
	if err != nil {
		t.Fatalf("NewExecSynthesizer: %v", err)
	}
	s.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("exit status 1")
	})

	_, err = s.Synthesize(context.Background(), Request{
		Text:       "hello",
		RefAudio:   "/tmp/ref.wav",
		OutputPath: filepath.Join(t.TempDir(), "seg.wav"),
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want ErrExternalTool", err)
	}
}

func TestExecSynthesizerMissingOutput(t *testing.T) {
	s, err := NewExecSynthesizer("f5-tts_infer-cli", "", logging.NewNop())
	if err != nil {
		t.Fatalf("NewExecSynthesizer: %v", err)
	}
	s.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return nil // claims success, writes nothing
	})

	_, err = s.Synthesize(context.Background(), Request{
		Text:       "hello",
		RefAudio:   "/tmp/ref.wav",
		OutputPath: filepath.Join(t.TempDir(), "seg.wav"),
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want ErrExternalTool", err)
	}
}

func TestExecSynthesizerCancelledContext(t *testing.T) {
	s, err := NewExecSynthesizer("f5-tts_infer-cli", "", logging.NewNop())
	if err != nil {
		t.Fatalf("NewExecSynthesizer: %v", err)
	}
	s.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Synthesize(ctx, Request{
		Text:       "hello",
		RefAudio:   "/tmp/ref.wav",
		OutputPath: filepath.Join(t.TempDir(), "seg.wav"),
	})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestExecSynthesizerValidatesInput(t *testing.T) {
	if _, err := NewExecSynthesizer("   ", "", logging.NewNop()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("empty command: err = %v, want ErrConfiguration", err)
	}

	s, err := NewExecSynthesizer("f5-tts_infer-cli", "", logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Synthesize(context.Background(), Request{Text: "  "}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("empty text: err = %v, want ErrValidation", err)
	}
	if _, err := s.Synthesize(context.Background(), Request{Text: "hi"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("missing ref audio: err = %v, want ErrConfiguration", err)
	}
}

func TestMockSynthesizerDurationScalesWithText(t *testing.T) {
	dir := t.TempDir()
	m := NewMockSynthesizer()

	short, err := m.Synthesize(context.Background(), Request{
		Text:       "你好",
		OutputPath: filepath.Join(dir, "short.wav"),
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	long, err := m.Synthesize(context.Background(), Request{
		Text:       "你好你好你好你好你好",
		OutputPath: filepath.Join(dir, "long.wav"),
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if long.Duration <= short.Duration {
		t.Fatalf("longer text should be longer audio: %f vs %f", long.Duration, short.Duration)
	}

	probed, err := wavutil.Duration(long.AudioPath)
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if math.Abs(probed-long.Duration) > 0.001 {
		t.Fatalf("probed %f, reported %f", probed, long.Duration)
	}
}

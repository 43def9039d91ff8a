// Package synth turns text segments into audio through a pluggable
// synthesis engine.
package synth

import (
	"context"
	"fmt"
	"os"
	"strings"

	"articast/internal/config"
)

// Params are the synthesis knobs for one request, after precedence
// resolution: segment directives win over the voice profile, which wins
// over the global defaults.
type Params struct {
	NFEStep     int
	CFGStrength float64
	Speed       float64
	TargetRMS   float64
	Seed        int64
}

// Request describes one segment to synthesize.
type Request struct {
	Text       string
	VoiceName  string
	RefAudio   string
	RefText    string
	OutputPath string
	Params     Params
}

// Result reports where the audio landed and how long it plays.
type Result struct {
	AudioPath string
	Duration  float64
}

// Synthesizer produces one audio file per request. Implementations must be
// safe for concurrent use.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (Result, error)
}

// SynthesizerFunc adapts a function to the Synthesizer interface.
type SynthesizerFunc func(ctx context.Context, req Request) (Result, error)

func (f SynthesizerFunc) Synthesize(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// ResolveParams merges the global defaults, the voice profile, and the
// segment's inline directive into final synthesis parameters. A zero value
// at one layer falls through to the next.
func ResolveParams(global config.TTS, voice config.Voice, segmentSpeed float64, segmentSeed int64) Params {
	params := Params{
		NFEStep:     global.NFEStep,
		CFGStrength: global.CFGStrength,
		Speed:       global.Speed,
		TargetRMS:   global.TargetRMS,
	}
	if voice.NFEStep > 0 {
		params.NFEStep = voice.NFEStep
	}
	if voice.CFGStrength > 0 {
		params.CFGStrength = voice.CFGStrength
	}
	if voice.Speed > 0 {
		params.Speed = voice.Speed
	}
	if voice.TargetRMS > 0 {
		params.TargetRMS = voice.TargetRMS
	}
	if segmentSpeed > 0 {
		params.Speed = segmentSpeed
	}
	params.Seed = segmentSeed
	return params
}

// RefTextForVoice resolves the reference transcript for a voice. An
// explicit ref_text in the profile wins. Otherwise a sidecar .txt next to
// the reference audio is read when present, and an empty string lets the
// engine transcribe the reference itself.
func RefTextForVoice(voice config.Voice) (string, error) {
	if strings.TrimSpace(voice.RefText) != "" {
		return voice.RefText, nil
	}
	if voice.RefAudio == "" {
		return "", nil
	}
	sidecar := sidecarPath(voice.RefAudio)
	data, err := os.ReadFile(sidecar)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read reference transcript %q: %w", sidecar, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func sidecarPath(refAudio string) string {
	if idx := strings.LastIndex(refAudio, "."); idx > strings.LastIndexAny(refAudio, "/\\") {
		return refAudio[:idx] + ".txt"
	}
	return refAudio + ".txt"
}

package synth

import (
	"context"
	"math"

	"articast/internal/wavutil"
)

// MockSynthesizer writes a sine tone whose length grows with the text, so
// pipelines can run end to end without an inference engine installed.
type MockSynthesizer struct {
	SampleRate int
}

func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{SampleRate: 24000}
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	seconds := 0.3 + 0.06*float64(len([]rune(req.Text)))
	speed := req.Params.Speed
	if speed > 0 {
		seconds /= speed
	}

	rate := m.SampleRate
	if rate <= 0 {
		rate = 24000
	}
	frames := int(seconds * float64(rate))
	samples := make([]int, frames)
	freq := 220.0 + 20.0*float64(req.Params.Seed%16)
	for i := range samples {
		samples[i] = int(8000 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}

	clip := &wavutil.Clip{Samples: samples, SampleRate: rate, Channels: 1}
	if err := wavutil.Write(req.OutputPath, clip); err != nil {
		return Result{}, err
	}
	return Result{AudioPath: req.OutputPath, Duration: clip.DurationSeconds()}, nil
}

package wavutil

import (
	"fmt"
	"time"
)

// Concatenate joins clips into one continuous clip, blending each seam with
// a linear crossfade. The crossfade is shortened when either neighbor is too
// short to cover it, and inputs are normalized to the given rate and channel
// count before joining.
func Concatenate(clips []*Clip, sampleRate, channels int, crossfade time.Duration) (*Clip, error) {
	if len(clips) == 0 {
		return nil, fmt.Errorf("no clips to concatenate")
	}

	normalized := make([]*Clip, len(clips))
	for i, clip := range clips {
		normalized[i] = Normalize(clip, sampleRate, channels)
	}
	if len(normalized) == 1 {
		return normalized[0], nil
	}

	fadeFrames := int(float64(sampleRate) * crossfade.Seconds())
	out := normalized[0].Samples
	for _, next := range normalized[1:] {
		out = blend(out, next.Samples, channels, fadeFrames)
	}
	return &Clip{Samples: out, SampleRate: sampleRate, Channels: channels}, nil
}

// blend appends b to a, overlapping the tail of a with the head of b over
// fade frames. Sample values stay within the 16-bit range.
func blend(a, b []int, channels, fadeFrames int) []int {
	aFrames := len(a) / channels
	bFrames := len(b) / channels
	fade := fadeFrames
	if fade > aFrames {
		fade = aFrames
	}
	if fade > bFrames {
		fade = bFrames
	}
	if fade <= 0 {
		return append(a, b...)
	}

	out := make([]int, 0, len(a)+len(b)-fade*channels)
	out = append(out, a[:(aFrames-fade)*channels]...)
	for f := 0; f < fade; f++ {
		gain := float64(f+1) / float64(fade+1)
		for c := 0; c < channels; c++ {
			tail := float64(a[(aFrames-fade+f)*channels+c])
			head := float64(b[f*channels+c])
			out = append(out, clampInt16(int(tail*(1-gain)+head*gain)))
		}
	}
	out = append(out, b[fade*channels:]...)
	return out
}

func clampInt16(v int) int {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}

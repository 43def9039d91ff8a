package wavutil

// Normalize converts a clip to the target sample rate and channel count.
// Channels are averaged when downmixing and duplicated when upmixing, and
// resampling is linear interpolation, which is adequate for speech.
func Normalize(clip *Clip, sampleRate, channels int) *Clip {
	out := clip
	if out.Channels != channels {
		out = remapChannels(out, channels)
	}
	if out.SampleRate != sampleRate {
		out = resample(out, sampleRate)
	}
	return out
}

func remapChannels(clip *Clip, channels int) *Clip {
	frames := len(clip.Samples) / clip.Channels
	samples := make([]int, frames*channels)
	for f := 0; f < frames; f++ {
		sum := 0
		for c := 0; c < clip.Channels; c++ {
			sum += clip.Samples[f*clip.Channels+c]
		}
		mono := sum / clip.Channels
		for c := 0; c < channels; c++ {
			samples[f*channels+c] = mono
		}
	}
	return &Clip{Samples: samples, SampleRate: clip.SampleRate, Channels: channels}
}

func resample(clip *Clip, sampleRate int) *Clip {
	srcFrames := len(clip.Samples) / clip.Channels
	if srcFrames == 0 {
		return &Clip{Samples: nil, SampleRate: sampleRate, Channels: clip.Channels}
	}
	dstFrames := int(float64(srcFrames) * float64(sampleRate) / float64(clip.SampleRate))
	if dstFrames < 1 {
		dstFrames = 1
	}

	samples := make([]int, dstFrames*clip.Channels)
	ratio := float64(srcFrames-1) / float64(maxInt(dstFrames-1, 1))
	for f := 0; f < dstFrames; f++ {
		pos := float64(f) * ratio
		lo := int(pos)
		hi := lo + 1
		if hi >= srcFrames {
			hi = srcFrames - 1
		}
		frac := pos - float64(lo)
		for c := 0; c < clip.Channels; c++ {
			a := float64(clip.Samples[lo*clip.Channels+c])
			b := float64(clip.Samples[hi*clip.Channels+c])
			samples[f*clip.Channels+c] = int(a + (b-a)*frac)
		}
	}
	return &Clip{Samples: samples, SampleRate: sampleRate, Channels: clip.Channels}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

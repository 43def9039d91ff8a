// Package wavutil reads, writes, and combines 16-bit PCM WAV files.
package wavutil

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Clip holds decoded PCM samples. Samples are interleaved when the clip has
// more than one channel.
type Clip struct {
	Samples    []int
	SampleRate int
	Channels   int
}

// DurationSeconds returns the clip length in seconds.
func (c *Clip) DurationSeconds() float64 {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := len(c.Samples) / c.Channels
	return float64(frames) / float64(c.SampleRate)
}

// Decode reads a WAV file into memory.
func Decode(path string) (*Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav %q: %w", path, err)
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav %q: %w", path, err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("decode wav %q: missing format", path)
	}
	return &Clip{
		Samples:    buf.Data,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}, nil
}

// Write encodes a clip as 16-bit PCM WAV.
func Write(path string, clip *Clip) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav %q: %w", path, err)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: clip.Channels, SampleRate: clip.SampleRate},
		Data:           clip.Samples,
		SourceBitDepth: 16,
	}
	enc := wav.NewEncoder(file, clip.SampleRate, 16, clip.Channels, 1)
	if err := enc.Write(buf); err != nil {
		enc.Close()
		file.Close()
		return fmt.Errorf("write wav %q: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		file.Close()
		return fmt.Errorf("close wav encoder %q: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close wav %q: %w", path, err)
	}
	return nil
}

// Duration probes a WAV file and returns its length in seconds.
func Duration(path string) (float64, error) {
	clip, err := Decode(path)
	if err != nil {
		return 0, err
	}
	return clip.DurationSeconds(), nil
}

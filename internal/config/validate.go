package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable for a generation run.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSplit(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateConcat(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateVoices()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.InputArticle) == "" {
		return errors.New("paths.input_article must be set (config file or --input flag)")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateSplit() error {
	if c.Split.MaxSegmentLength <= 0 {
		return fmt.Errorf("split.max_segment_length must be positive, got %d", c.Split.MaxSegmentLength)
	}
	if c.Split.MaxSegmentLength > 1000 {
		return fmt.Errorf("split.max_segment_length is too large (>1000): %d", c.Split.MaxSegmentLength)
	}
	if strings.TrimSpace(c.Split.DefaultVoice) == "" {
		return errors.New("split.default_voice must be set")
	}
	return nil
}

func (c *Config) validateTTS() error {
	switch c.TTS.Engine {
	case "exec", "mock":
	default:
		return fmt.Errorf("tts.engine must be \"exec\" or \"mock\", got %q", c.TTS.Engine)
	}
	if c.TTS.Engine == "exec" && strings.TrimSpace(c.TTS.Command) == "" {
		return errors.New("tts.command must be set when tts.engine is \"exec\"")
	}
	if c.TTS.NFEStep <= 0 {
		return fmt.Errorf("tts.nfe_step must be positive, got %d", c.TTS.NFEStep)
	}
	if c.TTS.CFGStrength < 0 {
		return fmt.Errorf("tts.cfg_strength must be non-negative, got %g", c.TTS.CFGStrength)
	}
	if c.TTS.Speed <= 0 || c.TTS.Speed > 3.0 {
		return fmt.Errorf("tts.speed must be in (0, 3], got %g", c.TTS.Speed)
	}
	if c.TTS.TimeoutSeconds < 0 {
		return fmt.Errorf("tts.timeout_seconds must be non-negative, got %d", c.TTS.TimeoutSeconds)
	}
	return nil
}

func (c *Config) validateConcat() error {
	if c.Concat.CrossfadeMillis < 0 {
		return fmt.Errorf("concat.crossfade_ms must be non-negative, got %d", c.Concat.CrossfadeMillis)
	}
	if c.Concat.SampleRate <= 0 {
		return fmt.Errorf("concat.sample_rate must be positive, got %d", c.Concat.SampleRate)
	}
	if c.Concat.Channels != 1 && c.Concat.Channels != 2 {
		return fmt.Errorf("concat.channels must be 1 or 2, got %d", c.Concat.Channels)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.Workers > 32 {
		return fmt.Errorf("pipeline.workers is too high (>32): %d", c.Pipeline.Workers)
	}
	return nil
}

func (c *Config) validateVoices() error {
	if len(c.Voices) == 0 {
		return errors.New("at least one voice must be configured in the [voices] section")
	}
	if _, ok := c.Voices[c.Split.DefaultVoice]; !ok {
		return fmt.Errorf("split.default_voice %q has no [voices.%s] entry", c.Split.DefaultVoice, c.Split.DefaultVoice)
	}
	for name, voice := range c.Voices {
		if strings.TrimSpace(name) == "" {
			return errors.New("voice names cannot be empty")
		}
		if strings.TrimSpace(voice.RefAudio) == "" {
			return fmt.Errorf("voices.%s.ref_audio must be set", name)
		}
		if voice.Speed < 0 || voice.Speed > 3.0 {
			return fmt.Errorf("voices.%s.speed must be in [0, 3], got %g", name, voice.Speed)
		}
		if voice.NFEStep < 0 {
			return fmt.Errorf("voices.%s.nfe_step must be non-negative, got %d", name, voice.NFEStep)
		}
		if voice.CFGStrength < 0 {
			return fmt.Errorf("voices.%s.cfg_strength must be non-negative, got %g", name, voice.CFGStrength)
		}
	}
	return nil
}

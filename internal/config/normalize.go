package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSplit()
	c.normalizeTTS()
	c.normalizeConcat()
	c.normalizePipeline()
	c.normalizeLogging()
	return c.normalizeVoices()
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputArticle != "" {
		if c.Paths.InputArticle, err = expandPath(c.Paths.InputArticle); err != nil {
			return fmt.Errorf("paths.input_article: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir
	}
	if c.Cache.Dir, err = expandPath(c.Cache.Dir); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSplit() {
	if c.Split.MaxSegmentLength == 0 {
		c.Split.MaxSegmentLength = defaultMaxSegmentLength
	}
	if strings.TrimSpace(c.Split.DefaultVoice) == "" {
		c.Split.DefaultVoice = defaultDefaultVoice
	}
}

func (c *Config) normalizeTTS() {
	c.TTS.Engine = strings.ToLower(strings.TrimSpace(c.TTS.Engine))
	if c.TTS.Engine == "" {
		c.TTS.Engine = defaultEngine
	}
	if strings.TrimSpace(c.TTS.Command) == "" {
		c.TTS.Command = defaultCommand
	}
	if strings.TrimSpace(c.TTS.Model) == "" {
		c.TTS.Model = defaultModel
	}
	if c.TTS.NFEStep == 0 {
		c.TTS.NFEStep = defaultNFEStep
	}
	if c.TTS.CFGStrength == 0 {
		c.TTS.CFGStrength = defaultCFGStrength
	}
	if c.TTS.Speed == 0 {
		c.TTS.Speed = defaultSpeed
	}
	if c.TTS.TargetRMS == 0 {
		c.TTS.TargetRMS = defaultTargetRMS
	}
	if c.TTS.TimeoutSeconds == 0 {
		c.TTS.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeConcat() {
	if c.Concat.SampleRate == 0 {
		c.Concat.SampleRate = defaultSampleRate
	}
	if c.Concat.Channels == 0 {
		c.Concat.Channels = defaultChannels
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = defaultWorkers
	}
}

func (c *Config) normalizeLogging() {
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeVoices() error {
	if c.Voices == nil {
		c.Voices = map[string]Voice{}
	}
	for name, voice := range c.Voices {
		if strings.TrimSpace(voice.RefAudio) == "" {
			continue
		}
		expanded, err := expandPath(voice.RefAudio)
		if err != nil {
			return fmt.Errorf("voices.%s.ref_audio: %w", name, err)
		}
		voice.RefAudio = expanded
		c.Voices[name] = voice
	}
	return nil
}

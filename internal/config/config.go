package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input and output locations.
type Paths struct {
	InputArticle string `toml:"input_article"`
	OutputDir    string `toml:"output_dir"`
}

// Cache contains segment cache configuration.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Split contains text segmentation configuration.
type Split struct {
	MaxSegmentLength int    `toml:"max_segment_length"`
	DefaultVoice     string `toml:"default_voice"`
}

// TTS contains speech synthesis engine configuration.
type TTS struct {
	Engine         string  `toml:"engine"` // "exec" or "mock"
	Command        string  `toml:"command"`
	Model          string  `toml:"model"`
	NFEStep        int     `toml:"nfe_step"`
	CFGStrength    float64 `toml:"cfg_strength"`
	Speed          float64 `toml:"speed"`
	TargetRMS      float64 `toml:"target_rms"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Concat contains final audio concatenation configuration.
type Concat struct {
	CrossfadeMillis int `toml:"crossfade_ms"`
	SampleRate      int `toml:"sample_rate"`
	Channels        int `toml:"channels"`
}

// Pipeline contains coordinator scheduling configuration.
type Pipeline struct {
	Workers int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Voice describes one reference voice profile. Per-voice fields override the
// global [tts] values when set.
type Voice struct {
	RefAudio    string  `toml:"ref_audio"`
	RefText     string  `toml:"ref_text"`
	Speed       float64 `toml:"speed"`
	NFEStep     int     `toml:"nfe_step"`
	CFGStrength float64 `toml:"cfg_strength"`
	TargetRMS   float64 `toml:"target_rms"`
}

// Config encapsulates all configuration values for articast.
type Config struct {
	Paths    Paths            `toml:"paths"`
	Cache    Cache            `toml:"cache"`
	Split    Split            `toml:"split"`
	TTS      TTS              `toml:"tts"`
	Concat   Concat           `toml:"concat"`
	Pipeline Pipeline         `toml:"pipeline"`
	Logging  Logging          `toml:"logging"`
	Voices   map[string]Voice `toml:"voices"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/articast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. When no file exists at
// the resolved path, defaults are returned and exists is false.
func Load(path string) (cfg *Config, resolvedPath string, exists bool, err error) {
	defaults := Default()
	cfg = &defaults

	resolvedPath, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, openErr := os.Open(resolvedPath)
		if openErr != nil {
			return nil, "", false, fmt.Errorf("open config: %w", openErr)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if decodeErr := decoder.Decode(cfg); decodeErr != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", decodeErr)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	return cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("articast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the output and cache directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir}
	if c.Cache.Enabled {
		dirs = append(dirs, c.Cache.Dir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// VoiceProfile looks up a voice by name. Unknown names are a configuration
// error: voice markers must reference configured profiles.
func (c *Config) VoiceProfile(name string) (Voice, error) {
	voice, ok := c.Voices[name]
	if !ok {
		return Voice{}, fmt.Errorf("voice %q is not configured", name)
	}
	return voice, nil
}

// SampleConfig returns the embedded sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

package segmentcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"articast/internal/config"
)

// Identity is the stable fingerprint of one generation task. Two runs with
// the same identity are the same task and share a manifest.
type Identity struct {
	TaskID      string
	ArticleHash string
	ConfigHash  string
}

// ArticleHash hashes the NFC-normalized article content, so byte-level
// Unicode representation differences do not split the cache.
func ArticleHash(text string) string {
	sum := sha256.Sum256(norm.NFC.Bytes([]byte(text)))
	return hex.EncodeToString(sum[:])
}

// configFingerprint is the canonical serialization of every config field
// that affects generated output. Paths deliberately excluded: moving the
// cache or output directory does not change what gets synthesized.
type configFingerprint struct {
	Split  config.Split            `json:"split"`
	TTS    config.TTS              `json:"tts"`
	Concat config.Concat           `json:"concat"`
	Voices map[string]config.Voice `json:"voices"`
}

// ConfigHash hashes the effective configuration fields that influence
// synthesis output.
func ConfigHash(cfg *config.Config) (string, error) {
	payload, err := json.Marshal(configFingerprint{
		Split:  cfg.Split,
		TTS:    cfg.TTS,
		Concat: cfg.Concat,
		Voices: cfg.Voices,
	})
	if err != nil {
		return "", fmt.Errorf("serialize config fingerprint: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// ComputeTaskID derives the task identity from article content and the
// effective configuration. Identical inputs always produce the same id;
// any differing article byte or synthesis-relevant config field produces a
// different one.
func ComputeTaskID(articleText string, cfg *config.Config) (Identity, error) {
	articleHash := ArticleHash(articleText)
	configHash, err := ConfigHash(cfg)
	if err != nil {
		return Identity{}, err
	}
	sum := sha256.Sum256([]byte(articleHash + ":" + configHash))
	return Identity{
		TaskID:      hex.EncodeToString(sum[:])[:16],
		ArticleHash: articleHash,
		ConfigHash:  configHash,
	}, nil
}

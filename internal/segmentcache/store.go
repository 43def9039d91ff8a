package segmentcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"articast/internal/logging"
	"articast/internal/wavutil"
)

// Entry records the outcome of synthesizing one segment.
type Entry struct {
	SegmentIndex int     `json:"segment_index"`
	AudioPath    string  `json:"audio_path"`
	Duration     float64 `json:"duration"`
	Text         string  `json:"text"`
	VoiceName    string  `json:"voice_name"`
	Timestamp    int64   `json:"timestamp"`
}

type manifest struct {
	TaskID      string           `json:"task_id"`
	ArticleHash string           `json:"article_hash"`
	ConfigHash  string           `json:"config_hash"`
	CreatedAt   int64            `json:"created_at"`
	Entries     map[string]Entry `json:"entries"`
}

// durationTolerance is the allowed drift between a recorded duration and a
// freshly probed one before a cache entry is considered stale.
const durationTolerance = 0.25

// Store provides serialized access to one task's cache manifest.
type Store struct {
	dir      string
	identity Identity
	persist  bool
	logger   *slog.Logger
	probe    func(path string) (float64, error)

	mu       sync.RWMutex
	manifest manifest
}

// Open creates or loads the manifest for the given task identity under
// baseDir. When enabled is false the store still hands out audio paths but
// never reports hits and never persists, so every segment regenerates.
func Open(baseDir string, identity Identity, enabled bool, logger *slog.Logger) (*Store, error) {
	logger = logging.NewComponentLogger(logger, "segmentcache")

	dir := filepath.Join(baseDir, identity.TaskID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
	}

	s := &Store{
		dir:      dir,
		identity: identity,
		persist:  enabled,
		logger:   logger,
		probe:    wavutil.Duration,
		manifest: manifest{
			TaskID:      identity.TaskID,
			ArticleHash: identity.ArticleHash,
			ConfigHash:  identity.ConfigHash,
			CreatedAt:   time.Now().Unix(),
			Entries:     map[string]Entry{},
		},
	}

	if enabled {
		if err := s.load(); err != nil {
			logger.Warn("cache manifest unreadable, starting empty",
				logging.String(logging.FieldTaskID, identity.TaskID),
				logging.Error(err))
		}
	}

	return s, nil
}

// Dir returns the task-scoped directory holding segment audio files.
func (s *Store) Dir() string { return s.dir }

// TaskID returns the identity the store was opened with.
func (s *Store) TaskID() string { return s.identity.TaskID }

// AudioPath returns the canonical segment audio path, zero-padded so the
// ordering is self-evident from the filesystem.
func (s *Store) AudioPath(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("segment_%04d.wav", index))
}

// Get returns the cached entry for a segment index, if present.
func (s *Store) Get(index int) (Entry, bool) {
	if !s.persist {
		return Entry{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.manifest.Entries[strconv.Itoa(index)]
	return entry, ok
}

// Put upserts an entry and persists the manifest atomically. Entries are
// only ever complete: callers record a segment after its audio file is
// fully written.
func (s *Store) Put(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().Unix()
	}
	s.manifest.Entries[strconv.Itoa(entry.SegmentIndex)] = entry
	if !s.persist {
		return nil
	}
	if err := s.save(); err != nil {
		return fmt.Errorf("persist manifest: %w", err)
	}
	return nil
}

// Validate reports whether an entry's audio file is still usable: it must
// exist with non-zero size, and its probed duration must match the recorded
// one within tolerance.
func (s *Store) Validate(entry Entry) bool {
	info, err := os.Stat(entry.AudioPath)
	if err != nil || info.Size() == 0 {
		return false
	}
	if s.probe == nil {
		return true
	}
	probed, err := s.probe(entry.AudioPath)
	if err != nil {
		return false
	}
	return math.Abs(probed-entry.Duration) <= durationTolerance
}

// Entries returns all cached entries ordered by segment index.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.manifest.Entries))
	for _, entry := range s.manifest.Entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SegmentIndex < entries[j].SegmentIndex
	})
	return entries
}

// Clear removes all entries and their audio files, forcing full
// regeneration on the next run.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.manifest.Entries {
		if entry.AudioPath != "" {
			_ = os.Remove(entry.AudioPath)
		}
	}
	s.manifest.Entries = map[string]Entry{}
	if !s.persist {
		return nil
	}
	if err := s.save(); err != nil {
		return fmt.Errorf("persist manifest: %w", err)
	}
	return nil
}

func (s *Store) manifestPath() string {
	return filepath.Join(s.dir, "manifest.json")
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.manifestPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh task
		}
		return fmt.Errorf("read manifest: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var loaded manifest
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	if loaded.ArticleHash != s.identity.ArticleHash || loaded.ConfigHash != s.identity.ConfigHash {
		return fmt.Errorf("manifest belongs to a different task (article %s, config %s)",
			loaded.ArticleHash, loaded.ConfigHash)
	}
	if loaded.Entries == nil {
		loaded.Entries = map[string]Entry{}
	}
	s.manifest = loaded

	s.logger.Debug("loaded cache manifest",
		logging.String(logging.FieldTaskID, s.identity.TaskID),
		logging.Int("entry_count", len(loaded.Entries)))
	return nil
}

// save writes the manifest atomically: temp file in the same directory,
// then rename.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp manifest: %w", err)
	}
	if err := os.Rename(tmpPath, s.manifestPath()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

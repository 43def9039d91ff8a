package segmentcache

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"articast/internal/config"
	"articast/internal/logging"
	"articast/internal/wavutil"
)

func testIdentity() Identity {
	return Identity{TaskID: "0123456789abcdef", ArticleHash: "arthash", ConfigHash: "cfghash"}
}

func writeTone(t *testing.T, path string, seconds float64) {
	t.Helper()
	frames := int(seconds * 24000)
	samples := make([]int, frames)
	for i := range samples {
		samples[i] = int(8000 * math.Sin(2*math.Pi*440*float64(i)/24000))
	}
	clip := &wavutil.Clip{Samples: samples, SampleRate: 24000, Channels: 1}
	if err := wavutil.Write(path, clip); err != nil {
		t.Fatalf("write tone: %v", err)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	identity := testIdentity()

	store, err := Open(dir, identity, true, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	audioPath := store.AudioPath(3)
	writeTone(t, audioPath, 0.5)
	entry := Entry{SegmentIndex: 3, AudioPath: audioPath, Duration: 0.5, Text: "hello", VoiceName: "main"}
	if err := store.Put(entry); err != nil {
		t.Fatalf("Put: %v", err)
	}

	reopened, err := Open(dir, identity, true, logging.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := reopened.Get(3)
	if !ok {
		t.Fatal("expected cached entry after reopen")
	}
	if got.Text != "hello" || got.VoiceName != "main" || got.AudioPath != audioPath {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if !reopened.Validate(got) {
		t.Fatal("entry with matching audio should validate")
	}
}

func TestStoreCorruptManifestStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	identity := testIdentity()
	taskDir := filepath.Join(dir, identity.TaskID)
	if err := os.MkdirAll(taskDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(taskDir, "manifest.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := Open(dir, identity, true, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := store.Get(0); ok {
		t.Fatal("corrupt manifest should yield an empty store")
	}
}

func TestStoreRejectsForeignManifest(t *testing.T) {
	dir := t.TempDir()
	identity := testIdentity()

	store, err := Open(dir, identity, true, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Put(Entry{SegmentIndex: 0, AudioPath: store.AudioPath(0), Duration: 0.1}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	other := identity
	other.ConfigHash = "different"
	reopened, err := Open(dir, other, true, logging.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, ok := reopened.Get(0); ok {
		t.Fatal("manifest with mismatched config hash must not be reused")
	}
}

func TestValidateRejectsBadAudio(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, testIdentity(), true, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	missing := Entry{SegmentIndex: 0, AudioPath: store.AudioPath(0), Duration: 0.5}
	if store.Validate(missing) {
		t.Fatal("missing audio file should not validate")
	}

	empty := store.AudioPath(1)
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if store.Validate(Entry{SegmentIndex: 1, AudioPath: empty, Duration: 0.5}) {
		t.Fatal("zero-length audio file should not validate")
	}

	drifted := store.AudioPath(2)
	writeTone(t, drifted, 2.0)
	if store.Validate(Entry{SegmentIndex: 2, AudioPath: drifted, Duration: 0.5}) {
		t.Fatal("audio whose duration drifted from the manifest should not validate")
	}
}

func TestStoreClearRemovesAudio(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, testIdentity(), true, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	audioPath := store.AudioPath(0)
	writeTone(t, audioPath, 0.2)
	if err := store.Put(Entry{SegmentIndex: 0, AudioPath: audioPath, Duration: 0.2}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := store.Get(0); ok {
		t.Fatal("entries should be gone after Clear")
	}
	if _, err := os.Stat(audioPath); !os.IsNotExist(err) {
		t.Fatal("audio file should be removed by Clear")
	}
}

func TestDisabledStoreNeverHits(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, testIdentity(), false, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Put(Entry{SegmentIndex: 0, AudioPath: store.AudioPath(0), Duration: 0.1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := store.Get(0); ok {
		t.Fatal("disabled store must not report hits")
	}
	if _, err := os.Stat(filepath.Join(dir, testIdentity().TaskID, "manifest.json")); !os.IsNotExist(err) {
		t.Fatal("disabled store must not write a manifest")
	}
}

func TestEntriesSorted(t *testing.T) {
	store, err := Open(t.TempDir(), testIdentity(), true, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, idx := range []int{5, 1, 3} {
		if err := store.Put(Entry{SegmentIndex: idx, AudioPath: store.AudioPath(idx), Duration: 0.1}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	entries := store.Entries()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, want := range []int{1, 3, 5} {
		if entries[i].SegmentIndex != want {
			t.Fatalf("entries[%d].SegmentIndex = %d, want %d", i, entries[i].SegmentIndex, want)
		}
	}
}

func TestComputeTaskIDDeterministic(t *testing.T) {
	cfg := config.Default()

	first, err := ComputeTaskID("你好。今天天气不错！", &cfg)
	if err != nil {
		t.Fatalf("ComputeTaskID: %v", err)
	}
	second, err := ComputeTaskID("你好。今天天气不错！", &cfg)
	if err != nil {
		t.Fatalf("ComputeTaskID: %v", err)
	}
	if first.TaskID != second.TaskID {
		t.Fatalf("task id not stable: %s vs %s", first.TaskID, second.TaskID)
	}
	if len(first.TaskID) != 16 {
		t.Fatalf("task id length = %d, want 16", len(first.TaskID))
	}
}

func TestComputeTaskIDSensitivity(t *testing.T) {
	cfg := config.Default()
	base, err := ComputeTaskID("hello.", &cfg)
	if err != nil {
		t.Fatalf("ComputeTaskID: %v", err)
	}

	textChanged, err := ComputeTaskID("hello!", &cfg)
	if err != nil {
		t.Fatalf("ComputeTaskID: %v", err)
	}
	if textChanged.TaskID == base.TaskID {
		t.Fatal("different article text must change the task id")
	}

	tuned := config.Default()
	tuned.TTS.Speed = 1.3
	paramChanged, err := ComputeTaskID("hello.", &tuned)
	if err != nil {
		t.Fatalf("ComputeTaskID: %v", err)
	}
	if paramChanged.TaskID == base.TaskID {
		t.Fatal("different synthesis parameters must change the task id")
	}

	moved := config.Default()
	moved.Paths.OutputDir = "/elsewhere/out"
	pathChanged, err := ComputeTaskID("hello.", &moved)
	if err != nil {
		t.Fatalf("ComputeTaskID: %v", err)
	}
	if pathChanged.TaskID != base.TaskID {
		t.Fatal("output paths must not affect the task id")
	}
}

// Package preflight validates the environment before a generation run:
// input article, voice references, directories, disk space, and the
// synthesis engine binary.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"golang.org/x/sys/unix"

	"articast/internal/config"
	"articast/internal/wavutil"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minFreeBytes is the free space floor for the output filesystem. Synthesis
// output for a long article stays well under this.
const minFreeBytes = 256 << 20

type statfsFunc func(path string) (free uint64, err error)

// Runner executes the checks. The statfs hook exists for tests.
type Runner struct {
	statfs statfsFunc
}

func NewRunner() *Runner {
	return &Runner{statfs: realStatfs}
}

// RunAll executes every applicable check for the given configuration and
// article path.
func (r *Runner) RunAll(cfg *config.Config, articlePath string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckArticle(articlePath))
	results = append(results, r.checkVoices(cfg)...)
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	if cfg.Cache.Enabled {
		results = append(results, CheckDirectoryAccess("Cache directory", cfg.Cache.Dir))
	}
	results = append(results, r.CheckDiskSpace(cfg.Paths.OutputDir))
	if cfg.TTS.Engine == "exec" {
		results = append(results, CheckEngineCommand(cfg.TTS.Command))
	}
	return results
}

// Failed filters results down to the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

// CheckArticle verifies the article file exists and is non-empty.
func CheckArticle(path string) Result {
	name := "Article file"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "no article path configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if info.Size() == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: file is empty)", path)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// checkVoices decodes every configured reference audio file. Voices are
// checked in name order so the report is stable.
func (r *Runner) checkVoices(cfg *config.Config) []Result {
	names := make([]string, 0, len(cfg.Voices))
	for name := range cfg.Voices {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	for _, name := range names {
		results = append(results, CheckVoiceReference(name, cfg.Voices[name]))
	}
	return results
}

// CheckVoiceReference verifies a voice's reference audio decodes as WAV.
func CheckVoiceReference(name string, voice config.Voice) Result {
	checkName := fmt.Sprintf("Voice %q", name)
	if strings.TrimSpace(voice.RefAudio) == "" {
		return Result{Name: checkName, Detail: "no reference audio configured"}
	}
	clip, err := wavutil.Decode(voice.RefAudio)
	if err != nil {
		return Result{Name: checkName, Detail: fmt.Sprintf("%s (error: %v)", voice.RefAudio, err)}
	}
	return Result{
		Name:   checkName,
		Passed: true,
		Detail: fmt.Sprintf("%s (%.1fs, %d Hz)", voice.RefAudio, clip.DurationSeconds(), clip.SampleRate),
	}
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable and writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "no path configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the output filesystem has headroom left.
func (r *Runner) CheckDiskSpace(path string) Result {
	name := "Disk space"
	free, err := r.statfs(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if free < minFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: only %d MiB free)", path, free>>20)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d MiB free)", path, free>>20)}
}

// CheckEngineCommand verifies the synthesis binary resolves on PATH.
func CheckEngineCommand(command string) Result {
	name := "Synthesis engine"
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return Result{Name: name, Detail: "no command configured"}
	}
	resolved, err := exec.LookPath(fields[0])
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not found on PATH)", fields[0])}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}

func realStatfs(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

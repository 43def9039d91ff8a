package synth

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"articast/internal/logging"
	"articast/internal/services"
	"articast/internal/wavutil"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

// ExecSynthesizer shells out to the F5-TTS inference CLI, one process per
// segment.
type ExecSynthesizer struct {
	command []string
	model   string
	logger  *slog.Logger
	run     commandRunner
}

// NewExecSynthesizer builds a synthesizer around an external command line.
// The command string may carry leading arguments of its own.
func NewExecSynthesizer(command, model string, logger *slog.Logger) (*ExecSynthesizer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "synth", "new", "synthesis command is empty", nil)
	}
	return &ExecSynthesizer{
		command: fields,
		model:   model,
		logger:  logging.NewComponentLogger(logger, "synth"),
		run:     defaultCommandRunner,
	}, nil
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (s *ExecSynthesizer) WithCommandRunner(r commandRunner) {
	if s != nil && r != nil {
		s.run = r
	}
}

func (s *ExecSynthesizer) Synthesize(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Result{}, services.Wrap(services.ErrValidation, "synth", "synthesize", "segment text is empty", nil)
	}
	if req.RefAudio == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "synth", "synthesize",
			fmt.Sprintf("voice %q has no reference audio", req.VoiceName), nil)
	}

	args := append([]string{}, s.command[1:]...)
	if s.model != "" {
		args = append(args, "--model", s.model)
	}
	args = append(args,
		"--ref_audio", req.RefAudio,
		"--ref_text", req.RefText,
		"--gen_text", req.Text,
		"--output_file", req.OutputPath,
	)
	if req.Params.Speed > 0 {
		args = append(args, "--speed", formatFloat(req.Params.Speed))
	}
	if req.Params.NFEStep > 0 {
		args = append(args, "--nfe_step", strconv.Itoa(req.Params.NFEStep))
	}
	if req.Params.CFGStrength > 0 {
		args = append(args, "--cfg_strength", formatFloat(req.Params.CFGStrength))
	}
	if req.Params.TargetRMS > 0 {
		args = append(args, "--target_rms", formatFloat(req.Params.TargetRMS))
	}
	if req.Params.Seed != 0 {
		args = append(args, "--seed", strconv.FormatInt(req.Params.Seed, 10))
	}

	s.logger.Debug("running synthesis command",
		logging.String(logging.FieldVoice, req.VoiceName),
		logging.Int("text_runes", len([]rune(req.Text))))

	if err := s.run(ctx, s.command[0], args...); err != nil {
		if ctx.Err() != nil {
			return Result{}, services.Wrap(services.ErrTimeout, "synth", "synthesize", "synthesis command cancelled", ctx.Err())
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "synth", "synthesize", "synthesis command failed", err)
	}

	info, err := os.Stat(req.OutputPath)
	if err != nil || info.Size() == 0 {
		return Result{}, services.Wrap(services.ErrExternalTool, "synth", "synthesize",
			fmt.Sprintf("synthesis produced no audio at %q", req.OutputPath), err)
	}
	duration, err := wavutil.Duration(req.OutputPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "synth", "synthesize", "synthesis output unreadable", err)
	}
	return Result{AudioPath: req.OutputPath, Duration: duration}, nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

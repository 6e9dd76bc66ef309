package analysis

// This file contains the bounded execution of the analysis engine and the
// recovery of its outputs.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/perfgo/perfreport/config"
	"github.com/perfgo/perfreport/model"
	"github.com/rs/zerolog"
)

// waitDelay bounds how long Run waits for the output pipes to drain after the
// engine has been killed.
const waitDelay = 5 * time.Second

var (
	// ErrTimeout is returned when the engine exceeds its wall-clock budget.
	ErrTimeout = errors.New("analysis engine timed out")
	// ErrEngineNotFound is returned when the engine executable cannot be located.
	ErrEngineNotFound = errors.New("analysis engine not found")
)

// ExitError is returned when the engine exits with a non-zero status.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("analysis engine exited with code %d", e.Code)
}

// Runner invokes the analysis engine once per call to Run.
type Runner struct {
	logger zerolog.Logger
	cfg    config.Config
	now    func() time.Time
}

// New returns a Runner for the given configuration.
func New(logger zerolog.Logger, cfg config.Config) *Runner {
	return &Runner{
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Request builds the instruction for the current day.
func (r *Runner) Request() model.AnalysisRequest {
	outputPath := OutputPath(r.cfg.ReportDir, r.now())
	return model.AnalysisRequest{
		Instruction: BuildInstruction(outputPath),
		OutputPath:  outputPath,
	}
}

// Run stages the instruction, runs the engine with it on stdin and recovers
// the report file the engine was asked to write.
//
// A nil error means the engine exited with status 0; the result then always
// carries stdout, and the report content if the file was found. Any other
// outcome returns a nil result. The staging file is removed before Run
// returns in every case.
func (r *Runner) Run(ctx context.Context) (*model.AnalysisResult, error) {
	req := r.Request()

	stdin, release, err := stage(r.logger, r.cfg.StagingFile, req.Instruction)
	if err != nil {
		r.logger.Error().Err(err).Str("path", r.cfg.StagingFile).Msg("Failed to stage instruction")
		return nil, err
	}
	defer release()

	r.logger.Info().
		Str("output", req.OutputPath).
		Dur("timeout", r.cfg.Engine.Timeout).
		Msg("Executing analysis engine (this may take several minutes)")

	result, err := r.execute(ctx, stdin)
	if err != nil {
		return nil, err
	}

	r.logger.Info().Dur("duration", result.Duration).Msg("Analysis completed successfully")

	content, err := os.ReadFile(req.OutputPath)
	switch {
	case err == nil:
		result.ReportPresent = true
		result.Report = string(content)
		r.logger.Info().Str("path", req.OutputPath).Int("bytes", len(content)).Msg("HTML report loaded")
	case errors.Is(err, fs.ErrNotExist):
		r.logger.Warn().Str("path", req.OutputPath).Msg("HTML report not found, using stdout")
	default:
		r.logger.Warn().Err(err).Str("path", req.OutputPath).Msg("HTML report unreadable, using stdout")
	}

	return result, nil
}

func (r *Runner) execute(ctx context.Context, stdin *os.File) (*model.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Engine.Timeout)
	defer cancel()

	args := r.cfg.EngineArgs()
	cmd := exec.CommandContext(ctx, r.cfg.Engine.Binary, args...)
	cmd.Dir = r.cfg.Root
	cmd.Stdin = stdin
	cmd.WaitDelay = waitDelay

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	r.logger.Debug().
		Str("command", shellescape.QuoteCommand(append([]string{r.cfg.Engine.Binary}, args...))).
		Str("dir", cmd.Dir).
		Msg("Starting analysis engine")

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		stderr := strings.TrimSpace(stderrBuf.String())

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			r.logger.Error().
				Dur("timeout", r.cfg.Engine.Timeout).
				Msg("Analysis engine timed out")
			return nil, fmt.Errorf("%w after %s", ErrTimeout, r.cfg.Engine.Timeout)
		}

		if isNotFound(err, cmd.Path) {
			r.logger.Error().
				Err(err).
				Str("binary", r.cfg.Engine.Binary).
				Msg("Analysis engine command not found, is it installed?")
			return nil, fmt.Errorf("%w: %s", ErrEngineNotFound, r.cfg.Engine.Binary)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logEvent := r.logger.Error().Int("exit_code", exitErr.ExitCode())
			if stderr != "" {
				logEvent.Str("stderr", stderr)
			}
			logEvent.Msg("Analysis engine failed")
			return nil, &ExitError{Code: exitErr.ExitCode(), Stderr: stderr}
		}

		r.logger.Error().Err(err).Msg("Unexpected error running analysis engine")
		return nil, fmt.Errorf("failed to run analysis engine: %w", err)
	}

	return &model.AnalysisResult{
		ExitStatus: 0,
		Stdout:     stdoutBuf.String(),
		Stderr:     stderrBuf.String(),
		Duration:   duration,
	}, nil
}

// isNotFound reports whether err means the engine executable itself is missing,
// as opposed to e.g. the working directory.
func isNotFound(err error, binaryPath string) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Path == binaryPath && errors.Is(pathErr.Err, fs.ErrNotExist)
	}
	return false
}

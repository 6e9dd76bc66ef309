package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/perfgo/perfreport/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 18, 6, 30, 0, 0, time.UTC)

// newTestRunner returns a runner whose engine is a shell script with the given body.
func newTestRunner(t *testing.T, script string) (*Runner, config.Config) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("engine fakes are shell scripts")
	}

	dir := t.TempDir()
	enginePath := filepath.Join(dir, "engine.sh")
	require.NoError(t, os.WriteFile(enginePath, []byte("#!/bin/sh\n"+script+"\n"), 0755))

	cfg := config.Default(dir)
	cfg.StagingFile = filepath.Join(dir, "staging", "prompt.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.StagingFile), 0755))
	require.NoError(t, os.MkdirAll(cfg.ReportDir, 0755))
	cfg.Engine.Binary = enginePath
	cfg.Engine.Timeout = 10 * time.Second

	r := New(zerolog.Nop(), cfg)
	r.now = func() time.Time { return fixedNow }
	return r, cfg
}

func requireStagingRemoved(t *testing.T, cfg config.Config) {
	t.Helper()
	_, err := os.Stat(cfg.StagingFile)
	require.True(t, os.IsNotExist(err), "staging file %s still exists", cfg.StagingFile)
}

func TestOutputPath(t *testing.T) {
	require.Equal(t,
		filepath.Join("/srv/reports", "performance_analysis_report_18102026.html"),
		OutputPath("/srv/reports", fixedNow))
}

func TestBuildInstruction_EmbedsOutputPath(t *testing.T) {
	path := "/srv/reports/performance_analysis_report_18102026.html"
	instruction := BuildInstruction(path)
	require.Equal(t, 2, strings.Count(instruction, path))
}

func TestRunner_Success(t *testing.T) {
	expected := OutputPath("", fixedNow)
	r, cfg := newTestRunner(t, `cat > "$(dirname "$0")/received.txt"
printf '%s' '<html>ok</html>' > "reports/`+filepath.Base(expected)+`"
echo "analysis summary"
echo "some noise" >&2`)

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, 0, result.ExitStatus)
	require.Equal(t, "analysis summary\n", result.Stdout)
	require.True(t, result.ReportPresent)
	require.Equal(t, "<html>ok</html>", result.Report)
	requireStagingRemoved(t, cfg)

	// The engine sees the staged instruction on stdin and runs in the project root.
	received, err := os.ReadFile(filepath.Join(cfg.Root, "received.txt"))
	require.NoError(t, err)
	require.Equal(t, r.Request().Instruction, string(received))
}

func TestRunner_ReportRoundTrip(t *testing.T) {
	content := "<HTML>\r\n\t<body>ünïcödé \x00 bytes</body>\n</HTML>\n\n"
	r, cfg := newTestRunner(t, `cp "$(dirname "$0")/source.html" "reports/`+filepath.Base(OutputPath("", fixedNow))+`"`)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "source.html"), []byte(content), 0644))

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.ReportPresent)
	require.Equal(t, content, result.Report)
	require.Empty(t, result.Stdout)
}

func TestRunner_MissingReportDegradesToStdout(t *testing.T) {
	r, cfg := newTestRunner(t, `echo "only stdout"`)

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, "only stdout\n", result.Stdout)
	require.False(t, result.ReportPresent)
	require.Empty(t, result.Report)
	requireStagingRemoved(t, cfg)
}

func TestRunner_NonZeroExit(t *testing.T) {
	for _, code := range []string{"1", "2", "42", "255"} {
		t.Run("exit "+code, func(t *testing.T) {
			r, cfg := newTestRunner(t, `echo "partial output"
echo "boom" >&2
exit `+code)

			result, err := r.Run(context.Background())
			require.Nil(t, result)
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			require.Equal(t, code, strconv.Itoa(exitErr.Code))
			require.Equal(t, "boom", exitErr.Stderr)
			requireStagingRemoved(t, cfg)
		})
	}
}

func TestRunner_Timeout(t *testing.T) {
	r, cfg := newTestRunner(t, `exec sleep 30`)
	r.cfg.Engine.Timeout = 200 * time.Millisecond

	start := time.Now()
	result, err := r.Run(context.Background())
	require.Nil(t, result)
	require.ErrorIs(t, err, ErrTimeout)
	require.Less(t, time.Since(start), 10*time.Second)
	requireStagingRemoved(t, cfg)
}

func TestRunner_EngineNotFound(t *testing.T) {
	tests := []struct {
		name   string
		binary func(dir string) string
	}{
		{
			name:   "absolute path",
			binary: func(dir string) string { return filepath.Join(dir, "does-not-exist") },
		},
		{
			name:   "not on PATH",
			binary: func(string) string { return "perfreport-engine-that-does-not-exist" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, cfg := newTestRunner(t, `exit 0`)
			r.cfg.Engine.Binary = tt.binary(cfg.Root)

			result, err := r.Run(context.Background())
			require.Nil(t, result)
			require.ErrorIs(t, err, ErrEngineNotFound)
			requireStagingRemoved(t, cfg)
		})
	}
}

func TestRunner_MissingWorkDirIsNotEngineNotFound(t *testing.T) {
	r, cfg := newTestRunner(t, `exit 0`)
	r.cfg.Root = filepath.Join(cfg.Root, "missing")

	result, err := r.Run(context.Background())
	require.Nil(t, result)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrEngineNotFound))
	requireStagingRemoved(t, cfg)
}

func TestRunner_StagingFailure(t *testing.T) {
	r, cfg := newTestRunner(t, `exit 0`)
	r.cfg.StagingFile = filepath.Join(cfg.Root, "no-such-dir", "prompt.txt")

	result, err := r.Run(context.Background())
	require.Nil(t, result)
	require.Error(t, err)
}

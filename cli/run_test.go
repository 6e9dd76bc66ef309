package cli

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// newTestApp returns an App whose exit errors are returned instead of
// terminating the process, rooted at a temp dir with a shell-script engine.
func newTestApp(t *testing.T, script string) (*App, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("engine fakes are shell scripts")
	}

	root := t.TempDir()
	engine := filepath.Join(root, "engine.sh")
	require.NoError(t, os.WriteFile(engine, []byte("#!/bin/sh\n"+script+"\n"), 0755))

	cfg := "staging_file: " + filepath.Join(root, "prompt.txt") + "\n" +
		"engine:\n  binary: " + engine + "\n  timeout: 10s\n" +
		"guard:\n  env_flag: PERFREPORT_TEST_SESSION\n  sentinel_file: " + filepath.Join(root, "absent") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "perfreport.yaml"), []byte(cfg), 0644))

	app := New()
	app.logger = zerolog.Nop()
	app.cli.ExitErrHandler = func(*cli.Context, error) {}
	return app, root
}

func TestRun_EngineFailureExitsOne(t *testing.T) {
	app, root := newTestApp(t, "exit 1")

	err := app.Run([]string{AppName, "run", "--root", root, "--no-email"})
	require.Error(t, err)

	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 1, exitErr.ExitCode())
}

func TestRun_GuardExitsOneWithoutEngine(t *testing.T) {
	app, root := newTestApp(t, `touch "$(dirname "$0")/started"`)
	t.Setenv("PERFREPORT_TEST_SESSION", "1")

	err := app.Run([]string{AppName, "run", "--root", root, "--no-email"})

	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 1, exitErr.ExitCode())
	require.NoFileExists(t, filepath.Join(root, "started"))
}

func TestRun_SuccessWithoutEmail(t *testing.T) {
	app, root := newTestApp(t, "echo engine summary")

	require.NoError(t, app.Run([]string{AppName, "run", "--root", root, "--no-email"}))

	matches, err := filepath.Glob(filepath.Join(root, "reports", "performance_report_*.txt"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestRun_PrintPromptSkipsEngine(t *testing.T) {
	app, root := newTestApp(t, `touch "$(dirname "$0")/started"`)

	require.NoError(t, app.Run([]string{AppName, "run", "--root", root, "--print-prompt"}))
	require.NoFileExists(t, filepath.Join(root, "started"))
	require.NoFileExists(t, filepath.Join(root, "prompt.txt"))
}

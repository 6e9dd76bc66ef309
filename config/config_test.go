package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(filepath.Join(root, "nope.yaml"), root)
	require.NoError(t, err)
	require.Equal(t, Default(root), cfg)
	require.Equal(t, filepath.Join(root, "reports"), cfg.ReportDir)
	require.Equal(t, DefaultTimeout, cfg.Engine.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "perfreport.yaml")
	content := `root: /srv/app
engine:
  binary: /opt/bin/claude
  args: ["--model", "opus"]
  timeout: 90s
guard:
  env_flag: ""
  sentinel_file: /run/nested
email:
  subject: Nightly report
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path, dir)
	require.NoError(t, err)
	require.Equal(t, "/srv/app", cfg.Root)
	require.Equal(t, "/srv/app/reports", cfg.ReportDir)
	require.Equal(t, "/opt/bin/claude", cfg.Engine.Binary)
	require.Equal(t, 90*time.Second, cfg.Engine.Timeout)
	require.Equal(t, []string{SkipPermissionsFlag, "--model", "opus"}, cfg.EngineArgs())
	require.Empty(t, cfg.Guard.EnvFlag)
	require.Equal(t, "/run/nested", cfg.Guard.SentinelFile)
	require.Equal(t, "Nightly report", cfg.Email.Subject)
}

func TestLoad_ExplicitReportDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "perfreport.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report_dir: /var/reports\n"), 0644))

	cfg, err := Load(path, dir)
	require.NoError(t, err)
	require.Equal(t, dir, cfg.Root)
	require.Equal(t, "/var/reports", cfg.ReportDir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "engine: [unterminated"},
		{name: "empty binary", content: "engine:\n  binary: \"\"\n"},
		{name: "negative timeout", content: "engine:\n  timeout: -5s\n"},
		{name: "report_dir not a string", content: "report_dir:\n  path: /var/reports\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "perfreport.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path, dir)
			require.Error(t, err)
		})
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PERFREPORT_TEST_A=from-file\nPERFREPORT_TEST_B=from-file\n"), 0644))

	t.Setenv("PERFREPORT_TEST_A", "from-env")
	t.Setenv("PERFREPORT_TEST_B", "")
	os.Unsetenv("PERFREPORT_TEST_B")

	require.True(t, LoadEnv(zerolog.Nop(), path))
	require.Equal(t, "from-env", os.Getenv("PERFREPORT_TEST_A"))
	require.Equal(t, "from-file", os.Getenv("PERFREPORT_TEST_B"))

	require.False(t, LoadEnv(zerolog.Nop(), filepath.Join(dir, "missing.env")))
}

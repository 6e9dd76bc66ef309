package config

// Package config resolves the pipeline configuration from an optional YAML
// file and the process environment (optionally seeded from a .env file).

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRoot         = "/home/ubuntu/postgres-optimization"
	DefaultConfigFile   = "perfreport.yaml"
	DefaultEnvFile      = ".env"
	DefaultEngine       = "claude"
	DefaultTimeout      = 600 * time.Second
	DefaultEnvFlag      = "CLAUDE_SESSION"
	DefaultSentinelFile = "/tmp/claude-active-session"
	DefaultSubject      = "Daily PostgreSQL Performance Report"
	stagingFileName     = "claude_analysis_prompt.txt"
)

// SkipPermissionsFlag is always passed to the engine so it never blocks on an
// interactive permission prompt.
const SkipPermissionsFlag = "--dangerously-skip-permissions"

// Engine describes how the analysis engine is invoked.
type Engine struct {
	Binary  string        `yaml:"binary"`
	Args    []string      `yaml:"args,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
}

// Guard names the two reentrancy signals. An empty value disables a signal.
type Guard struct {
	EnvFlag      string `yaml:"env_flag"`
	SentinelFile string `yaml:"sentinel_file"`
}

// Email holds the non-secret message settings. Delivery credentials are read
// from the environment, see notify.ConfigFromEnv.
type Email struct {
	Subject string `yaml:"subject"`
}

// Config is the resolved pipeline configuration.
type Config struct {
	// Project root, used as the engine working directory
	Root string `yaml:"root"`
	// Directory for analysis reports and persisted summaries, defaults to <root>/reports
	ReportDir string `yaml:"report_dir"`
	// Path where the instruction is staged before the engine runs
	StagingFile string `yaml:"staging_file"`
	Engine      Engine `yaml:"engine"`
	Guard       Guard  `yaml:"guard"`
	Email       Email  `yaml:"email"`
}

// Default returns the configuration used when no file overrides it.
func Default(root string) Config {
	if root == "" {
		root = DefaultRoot
	}
	return Config{
		Root:        root,
		ReportDir:   filepath.Join(root, "reports"),
		StagingFile: filepath.Join(os.TempDir(), stagingFileName),
		Engine: Engine{
			Binary:  DefaultEngine,
			Timeout: DefaultTimeout,
		},
		Guard: Guard{
			EnvFlag:      DefaultEnvFlag,
			SentinelFile: DefaultSentinelFile,
		},
		Email: Email{
			Subject: DefaultSubject,
		},
	}
}

// Load reads the YAML file at path on top of the defaults for root. A missing
// file is not an error; the defaults are returned as-is.
func Load(path, root string) (Config, error) {
	cfg := Default(root)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// report_dir follows root unless the file pins it explicitly
	var raw struct {
		ReportDir string `yaml:"report_dir"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if raw.ReportDir == "" {
		cfg.ReportDir = filepath.Join(cfg.Root, "reports")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the fields the pipeline cannot run without are set.
func (c Config) Validate() error {
	if c.Root == "" {
		return errors.New("root must be set")
	}
	if c.ReportDir == "" {
		return errors.New("report_dir must be set")
	}
	if c.StagingFile == "" {
		return errors.New("staging_file must be set")
	}
	if c.Engine.Binary == "" {
		return errors.New("engine.binary must be set")
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("engine.timeout must be positive, got %s", c.Engine.Timeout)
	}
	return nil
}

// EngineArgs returns the full argument list passed to the engine binary.
func (c Config) EngineArgs() []string {
	args := []string{SkipPermissionsFlag}
	return append(args, c.Engine.Args...)
}

// LoadEnv loads the .env file at path into the process environment. Variables
// already set in the environment win. It reports whether a file was loaded.
func LoadEnv(logger zerolog.Logger, path string) bool {
	if path == "" {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		logger.Debug().Str("path", path).Msg("No env file loaded; relying on process environment")
		return false
	}
	if err := godotenv.Load(path); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to load env file")
		return false
	}
	logger.Info().Str("path", path).Msg("Loaded environment variables")
	return true
}

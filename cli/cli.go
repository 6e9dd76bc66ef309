package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/perfgo/perfreport/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

const AppName = "perfreport"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Set default log level to info
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:  AppName,
			Usage: "Run the performance analysis engine and deliver its report",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "run",
		Usage:  "Run the analysis once, save the summary and email the report",
		Action: app.run,
		Flags: append(configFlags(),
			&cli.StringFlag{
				Name:  "engine",
				Usage: "Analysis engine executable (default: claude)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Wall-clock budget for the analysis engine (default: 10m)",
			},
			&cli.BoolFlag{
				Name:  "no-email",
				Usage: "Skip email delivery even if SMTP is configured",
			},
			&cli.BoolFlag{
				Name:  "print-prompt",
				Usage: "Print the instruction that would be sent to the engine and exit",
			},
		),
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "list",
		Usage:  "List reports written by previous runs",
		Action: app.list,
		Flags: append(configFlags(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Limit number of results (default: 20)",
				Value:   20,
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Only show one kind of report (summary or analysis)",
			},
		),
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:      "view",
		Usage:     "Print a report from a previous run",
		ArgsUsage: "[INDEX|NAME]",
		Action:    app.view,
		Flags: append(configFlags(),
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Only consider one kind of report (summary or analysis)",
			},
		),
		Description: `Print a report from a previous run.

Arguments:
  0           Print the newest report (default)
  -1          Print the 2nd newest report
  <name>      Print the report whose file name starts with <name>

Examples:
  perfreport view                    # newest report of any kind
  perfreport view --kind analysis    # newest HTML analysis report
  perfreport view -- -1              # the report before that`,
	})
	app.cli.Commands = append(app.cli.Commands, &cli.Command{
		Name:   "check",
		Usage:  "Show the resolved configuration and whether a run could proceed",
		Action: app.check,
		Flags:  configFlags(),
	})
	app.cli.DefaultCommand = "run"
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && len(commit) >= 8 {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}

// configFlags returns the flags shared by every command that needs the configuration.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "root",
			Usage:   "Project root the engine runs in",
			Value:   config.DefaultRoot,
			EnvVars: []string{"PERFREPORT_ROOT"},
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "YAML configuration file (default: <root>/" + config.DefaultConfigFile + ")",
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "Env file with SMTP settings (default: <root>/" + config.DefaultEnvFile + ")",
		},
	}
}

// loadConfig resolves the configuration for a command. The env file is loaded
// first so the notifier sees its values in the environment.
func (a *App) loadConfig(ctx *cli.Context) (config.Config, error) {
	root := ctx.String("root")

	envFile := ctx.String("env-file")
	if envFile == "" {
		envFile = filepath.Join(root, config.DefaultEnvFile)
	}
	config.LoadEnv(a.logger, envFile)

	configFile := ctx.String("config")
	if configFile == "" {
		configFile = filepath.Join(root, config.DefaultConfigFile)
	}
	cfg, err := config.Load(configFile, root)
	if err != nil {
		return config.Config{}, err
	}

	if ctx.IsSet("root") && cfg.Root != root {
		if cfg.ReportDir == filepath.Join(cfg.Root, "reports") {
			cfg.ReportDir = filepath.Join(root, "reports")
		}
		cfg.Root = root
	}
	if ctx.IsSet("engine") {
		cfg.Engine.Binary = ctx.String("engine")
	}
	if ctx.IsSet("timeout") {
		cfg.Engine.Timeout = ctx.Duration("timeout")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	a.logger.Debug().
		Str("root", cfg.Root).
		Str("report_dir", cfg.ReportDir).
		Str("engine", cfg.Engine.Binary).
		Dur("timeout", cfg.Engine.Timeout).
		Msg("Resolved configuration")
	return cfg, nil
}

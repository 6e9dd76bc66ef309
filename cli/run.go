package cli

// This file contains the run command, which executes the report pipeline once.

import (
	"fmt"
	"os"

	"github.com/perfgo/perfreport/analysis"
	"github.com/perfgo/perfreport/config"
	"github.com/perfgo/perfreport/guard"
	"github.com/perfgo/perfreport/notify"
	"github.com/perfgo/perfreport/pipeline"
	"github.com/perfgo/perfreport/report"
	"github.com/urfave/cli/v2"
)

func (a *App) run(ctx *cli.Context) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	runner := analysis.New(a.logger, cfg)

	if ctx.Bool("print-prompt") {
		fmt.Println(runner.Request().Instruction)
		return nil
	}

	fmt.Println(pipeline.Rule)
	fmt.Println("PostgreSQL Performance Analysis Automation")
	fmt.Println(pipeline.Rule)
	fmt.Println()

	p := a.newPipeline(cfg, runner, !ctx.Bool("no-email"))
	out := p.Run(ctx.Context)

	if !out.OK() {
		return cli.Exit("ERROR: Failed to generate analysis report", 1)
	}

	switch out.State {
	case pipeline.StateNotified:
		fmt.Println("\nHTML report sent by email")
	case pipeline.StateNotifyFailed:
		fmt.Println("\nWARNING: HTML report ready but email was not sent")
	default:
		fmt.Println("\nWARNING: HTML report not emailed")
	}

	fmt.Println("\nAnalysis complete!")
	if out.SummaryPath != "" {
		fmt.Printf("Summary saved to: %s\n", out.SummaryPath)
	}
	return nil
}

func (a *App) newPipeline(cfg config.Config, runner *analysis.Runner, sendEmail bool) *pipeline.Pipeline {
	p := &pipeline.Pipeline{
		Logger:    a.logger,
		Out:       os.Stdout,
		Guard:     guard.New(cfg.Guard),
		Analyzer:  runner,
		Persister: report.NewPersister(a.logger, cfg.ReportDir),
	}
	if sendEmail {
		p.Notifier = notify.New(a.logger, notify.ConfigFromEnv(), cfg.Email.Subject)
	}
	return p
}

package cli

// This file contains the check command, which reports whether a run could
// proceed without starting the engine.

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/perfgo/perfreport/analysis"
	"github.com/perfgo/perfreport/config"
	"github.com/perfgo/perfreport/guard"
	"github.com/perfgo/perfreport/notify"
	"github.com/urfave/cli/v2"
)

func (a *App) check(ctx *cli.Context) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}
	printCheck(os.Stdout, cfg, guard.New(cfg.Guard), notify.ConfigFromEnv(), exec.LookPath)
	return nil
}

func printCheck(w io.Writer, cfg config.Config, g *guard.Guard, mail notify.Config, lookPath func(string) (string, error)) {
	fmt.Fprintf(w, "Root:         %s\n", cfg.Root)
	fmt.Fprintf(w, "Report dir:   %s\n", cfg.ReportDir)
	fmt.Fprintf(w, "Staging file: %s\n", cfg.StagingFile)
	fmt.Fprintf(w, "Engine:       %s %s\n", cfg.Engine.Binary, strings.Join(cfg.EngineArgs(), " "))
	fmt.Fprintf(w, "Timeout:      %s\n", cfg.Engine.Timeout)
	fmt.Fprintf(w, "Output today: %s\n", analysis.OutputPath(cfg.ReportDir, time.Now()))

	if path, err := lookPath(cfg.Engine.Binary); err != nil {
		fmt.Fprintf(w, "✗ engine not found: %v\n", err)
	} else {
		fmt.Fprintf(w, "✓ engine found at %s\n", path)
	}

	if active, reason := g.Check(); active {
		fmt.Fprintf(w, "✗ session guard would block the run: %s\n", reason)
	} else {
		fmt.Fprintln(w, "✓ no active engine session detected")
	}

	if missing := mail.Missing(); len(missing) > 0 {
		fmt.Fprintf(w, "✗ email disabled, missing: %s\n", strings.Join(missing, ", "))
	} else if _, err := mail.PortNumber(); err != nil {
		fmt.Fprintf(w, "✗ email disabled: %v\n", err)
	} else {
		fmt.Fprintf(w, "✓ email to %s via %s:%s as %s\n",
			strings.Join(mail.Recipients(), ", "), mail.Host, mail.Port, mail.User)
	}
}

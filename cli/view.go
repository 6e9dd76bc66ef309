package cli

// This file contains the view command for printing a report from a previous run.

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/perfgo/perfreport/history"
	"github.com/perfgo/perfreport/model"
	"github.com/urfave/cli/v2"
)

// parseViewArgs returns the selector argument, defaulting to "0" (latest).
func parseViewArgs(in []string) string {
	if len(in) > 0 && in[0] == "--" {
		in = in[1:]
	}
	if len(in) == 0 || in[0] == "" {
		return "0"
	}
	return in[0]
}

// selectEntry picks a report by index (0 = newest, -1 = the one before, ...)
// or by file name prefix. entries must be sorted newest first.
func selectEntry(entries []model.ReportFile, arg string) (*model.ReportFile, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no reports found")
	}

	if parsed, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if parsed > 0 {
			return nil, fmt.Errorf("invalid index: %s (use 0 for last, -1 for second-to-last, -2 for third-to-last, etc.)", arg)
		}
		if parsed <= -int64(len(entries)) {
			return nil, fmt.Errorf("index %s out of range (only %d reports)", arg, len(entries))
		}
		return &entries[-parsed], nil
	}

	for i := range entries {
		if strings.HasPrefix(filepath.Base(entries[i].Path), arg) {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("no report found matching: %s", arg)
}

func (a *App) view(ctx *cli.Context) error {
	arg := parseViewArgs(ctx.Args().Slice())

	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	entries, err := history.LoadEntries(a.logger, cfg.ReportDir)
	if err != nil {
		return fmt.Errorf("failed to load reports: %w", err)
	}

	if kind := ctx.String("kind"); kind != "" {
		var filtered []model.ReportFile
		for _, entry := range entries {
			if entry.Kind.String() == kind {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	entry, err := selectEntry(entries, arg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	a.logger.Debug().Str("path", entry.Path).Str("kind", entry.Kind.String()).Msg("Displaying report")
	_, err = os.Stdout.Write(data)
	return err
}

package cli

// This file contains the list command for displaying reports of previous runs.

import (
	"fmt"

	"github.com/perfgo/perfreport/history"
	"github.com/perfgo/perfreport/model"
	"github.com/urfave/cli/v2"
)

func (a *App) list(ctx *cli.Context) error {
	limit := ctx.Int("limit")

	kindFilter := ctx.String("kind")
	if kindFilter != "" && kindFilter != model.ReportKindSummary.String() && kindFilter != model.ReportKindAnalysis.String() {
		return fmt.Errorf("unknown report kind %q: use %s or %s", kindFilter, model.ReportKindSummary, model.ReportKindAnalysis)
	}

	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	entries, err := history.LoadEntries(a.logger, cfg.ReportDir)
	if err != nil {
		return fmt.Errorf("failed to load reports: %w", err)
	}

	var filtered []model.ReportFile
	for _, entry := range entries {
		if kindFilter == "" || entry.Kind.String() == kindFilter {
			filtered = append(filtered, entry)
		}
	}

	if len(filtered) == 0 {
		fmt.Printf("No reports found in %s\n", cfg.ReportDir)
		return nil
	}

	display := filtered
	if limit > 0 && limit < len(display) {
		display = display[:limit]
	}

	fmt.Printf("\n=== Reports (%d total) ===\n\n", len(filtered))

	for _, entry := range display {
		timestamp := entry.Timestamp.Format("2006-01-02 15:04:05")
		if entry.Kind == model.ReportKindAnalysis {
			timestamp = entry.Timestamp.Format("2006-01-02")
		}
		fmt.Printf("%-8s  %-19s  %8.1f KB  %s\n", entry.Kind, timestamp, float64(entry.Size)/1024, entry.Path)
	}
	fmt.Println()

	return nil
}

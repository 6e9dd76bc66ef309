package history

// This file contains shared utilities for discovering reports written by
// earlier runs in the report directory.

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/perfgo/perfreport/analysis"
	"github.com/perfgo/perfreport/model"
	"github.com/perfgo/perfreport/report"
	"github.com/rs/zerolog"
)

// ParseName recognises a report file name and returns its kind and the
// timestamp encoded in it.
func ParseName(name string) (model.ReportKind, time.Time, bool) {
	if stamp, ok := between(name, report.SummaryPrefix, report.SummarySuffix); ok {
		if t, err := time.ParseInLocation(report.SummaryTimeLayout, stamp, time.Local); err == nil {
			return model.ReportKindSummary, t, true
		}
	}
	if stamp, ok := between(name, analysis.OutputFilePrefix, analysis.OutputFileSuffix); ok {
		if t, err := time.ParseInLocation(analysis.OutputTimeLayout, stamp, time.Local); err == nil {
			return model.ReportKindAnalysis, t, true
		}
	}
	return 0, time.Time{}, false
}

func between(s, prefix, suffix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) || !strings.HasSuffix(s, suffix) {
		return "", false
	}
	return s[len(prefix) : len(s)-len(suffix)], true
}

// LoadEntries lists the reports in reportDir, newest first. Files that do not
// follow the report naming scheme are ignored.
func LoadEntries(logger zerolog.Logger, reportDir string) ([]model.ReportFile, error) {
	dirEntries, err := os.ReadDir(reportDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report directory: %w", err)
	}

	var entries []model.ReportFile
	for _, d := range dirEntries {
		if d.IsDir() {
			continue
		}
		kind, ts, ok := ParseName(d.Name())
		if !ok {
			continue
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn().Err(err).Str("file", d.Name()).Msg("Failed to stat report")
			continue
		}

		entries = append(entries, model.ReportFile{
			Kind:      kind,
			Timestamp: ts,
			Size:      uint64(info.Size()),
			Path:      filepath.Join(reportDir, d.Name()),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Path > entries[j].Path
		}
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	return entries, nil
}

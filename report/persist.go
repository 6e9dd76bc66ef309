package report

// This file contains persistence of the plain-text analysis summary.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const (
	// SummaryPrefix and SummarySuffix frame the timestamp in persisted summary names.
	SummaryPrefix = "performance_report_"
	SummarySuffix = ".txt"
	// SummaryTimeLayout is precise to the second.
	SummaryTimeLayout = "20060102_150405"
)

// Persister writes summaries into the report directory.
type Persister struct {
	logger zerolog.Logger
	dir    string
	now    func() time.Time
}

// NewPersister returns a Persister writing into dir.
func NewPersister(logger zerolog.Logger, dir string) *Persister {
	return &Persister{
		logger: logger,
		dir:    dir,
		now:    time.Now,
	}
}

// SummaryPath returns the summary file name for t inside dir.
func SummaryPath(dir string, t time.Time) string {
	return filepath.Join(dir, SummaryPrefix+t.Format(SummaryTimeLayout)+SummarySuffix)
}

// Persist writes text to a new timestamped file and returns its path. The
// report directory is created if missing. An existing file with the same name
// is never overwritten.
func (p *Persister) Persist(text string) (string, error) {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		p.logger.Error().Err(err).Str("dir", p.dir).Msg("Failed to create report directory")
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := SummaryPath(p.dir, p.now())
	if err := writeExclusive(path, []byte(text)); err != nil {
		p.logger.Error().Err(err).Str("path", path).Msg("Failed to save report")
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	p.logger.Info().Str("path", path).Msg("Report saved")
	return path, nil
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

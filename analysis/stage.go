package analysis

// This file contains the staging of the engine instruction on disk. The
// staged file is fed to the engine as stdin and removed afterwards.

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// stage writes instruction to path and returns the file rewound for reading,
// together with a release func that closes and removes it. Callers must defer
// release as soon as stage returns without error; on error nothing is left
// behind.
func stage(logger zerolog.Logger, path, instruction string) (*os.File, func(), error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create staging file: %w", err)
	}

	release := func() {
		if err := f.Close(); err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("Failed to close staging file")
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", path).Msg("Failed to remove staging file")
			return
		}
		logger.Debug().Str("path", path).Msg("Staging file removed")
	}

	if _, err := io.WriteString(f, instruction); err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to write staging file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to rewind staging file: %w", err)
	}

	return f, release, nil
}

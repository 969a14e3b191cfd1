package shipping

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Loader reads a rate table document from some backing store.
type Loader interface {
	// Load reads and validates the rate table at the given path or key.
	Load(ctx context.Context, path string) (RateTable, error)
}

// fileLoader implements Loader for a local JSON rate table file.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a file-based rate table loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "rate-table-loader").Logger(),
	}
}

// Load reads a JSON rate table file from the local file system.
func (l *fileLoader) Load(ctx context.Context, filePath string) (RateTable, error) {
	l.logger.Info().Str("file", filePath).Msg("loading rate table file")

	data, err := os.ReadFile(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read rate table file")
		return nil, fmt.Errorf("failed to read rate table file %s: %w", filePath, err)
	}

	table, err := ParseRateTable(data)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to parse rate table file")
		return nil, fmt.Errorf("rate table file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("tiers", len(table)).
		Msg("rate table loaded successfully")

	return table, nil
}

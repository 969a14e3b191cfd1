package shipping

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRateFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileLoader_Load(t *testing.T) {
	path := writeRateFile(t, `{"tiers": [
		{"threshold": 0, "fee": 9.50},
		{"threshold": 100, "fee": 0}
	]}`)

	loader := NewFileLoader(zerolog.Nop())
	table, err := loader.Load(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.True(t, table[0].Fee.Equal(dec("9.50")))
}

func TestFileLoader_MissingFile(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	_, err := loader.Load(context.Background(), "/nonexistent/rates.json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read rate table file")
}

func TestFileLoader_InvalidTable(t *testing.T) {
	path := writeRateFile(t, `{"tiers": [{"threshold": 10, "fee": 5}]}`)

	loader := NewFileLoader(zerolog.Nop())
	_, err := loader.Load(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rate table")
}

// stubLoader returns a fixed table or error, for fallback tests.
type stubLoader struct {
	table RateTable
	err   error
	calls int
}

func (s *stubLoader) Load(ctx context.Context, path string) (RateTable, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.table, nil
}

func TestFallbackLoader_PrefersS3(t *testing.T) {
	s3 := &stubLoader{table: DefaultRateTable()}
	file := &stubLoader{table: RateTable{{Fee: dec("1")}}}

	loader := NewFallbackLoader(s3, file, "config/", true, zerolog.Nop())
	table, err := loader.Load(context.Background(), "rates.json")

	require.NoError(t, err)
	assert.Len(t, table, 4)
	assert.Equal(t, 1, s3.calls)
	assert.Equal(t, 0, file.calls)
}

func TestFallbackLoader_FallsBackToFile(t *testing.T) {
	s3 := &stubLoader{err: assert.AnError}
	file := &stubLoader{table: DefaultRateTable()}

	loader := NewFallbackLoader(s3, file, "config/", true, zerolog.Nop())
	table, err := loader.Load(context.Background(), "rates.json")

	require.NoError(t, err)
	assert.Len(t, table, 4)
	assert.Equal(t, 1, s3.calls)
	assert.Equal(t, 1, file.calls)
}

func TestFallbackLoader_S3Disabled(t *testing.T) {
	s3 := &stubLoader{table: DefaultRateTable()}
	file := &stubLoader{table: DefaultRateTable()}

	loader := NewFallbackLoader(s3, file, "config/", false, zerolog.Nop())
	_, err := loader.Load(context.Background(), "rates.json")

	require.NoError(t, err)
	assert.Equal(t, 0, s3.calls)
	assert.Equal(t, 1, file.calls)
}

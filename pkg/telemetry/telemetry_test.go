package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/hybridrag/pkg/types"
)

func parquetFiles(t *testing.T, dir, prefix string) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, prefix+"_*.parquet"))
	require.NoError(t, err)
	return files
}

func TestParquetHandlerPersistsErrorsOnly(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	next := slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelDebug})

	h, err := NewParquetHandler(next, dir, 10)
	require.NoError(t, err)
	logger := slog.New(h).With("component", "retriever")

	ctx := context.WithValue(context.Background(), types.ContextKeyRequestID, "req-1")
	logger.InfoContext(ctx, "Retrieval complete", "results", 3)
	logger.ErrorContext(ctx, "Retrieval failed", "error", errors.New("graph unreachable"))

	assert.Contains(t, console.String(), "Retrieval complete")
	assert.Contains(t, console.String(), "Retrieval failed")
	assert.Empty(t, parquetFiles(t, dir, "execution_errors"))

	require.NoError(t, h.Close())
	files := parquetFiles(t, dir, "execution_errors")
	require.Len(t, files, 1)

	rows, err := parquet.ReadFile[LogRecord](files[0])
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Retrieval failed", rows[0].Message)
	assert.Equal(t, "req-1", rows[0].RequestID)
	assert.Equal(t, "ERROR", rows[0].Level)
	assert.Contains(t, rows[0].Attributes, "graph unreachable")
	assert.Contains(t, rows[0].Attributes, "retriever")
}

func TestQueryRecorderBatches(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewQueryRecorder(dir, 2)
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), types.ContextKeyRequestSource, "cli")
	require.NoError(t, rec.Record(ctx, QueryRow{Query: "διαβατήριο", TopK: 5, Results: 2}))
	assert.Equal(t, 1, rec.Pending())
	require.NoError(t, rec.Record(ctx, QueryRow{Query: "xyzzy", TopK: 5, Suggestions: 3}))
	assert.Equal(t, 0, rec.Pending())

	require.NoError(t, rec.Record(ctx, QueryRow{Query: "third"}))
	require.NoError(t, rec.Close())

	files := parquetFiles(t, dir, "queries")
	require.Len(t, files, 2)

	var all []QueryRow
	for _, f := range files {
		rows, err := parquet.ReadFile[QueryRow](f)
		require.NoError(t, err)
		all = append(all, rows...)
	}
	require.Len(t, all, 3)
	for _, row := range all {
		assert.NotEmpty(t, row.ID)
		assert.Equal(t, "cli", row.RequestSource)
		assert.False(t, row.Timestamp.IsZero())
	}
}

func TestEncodeErrors(t *testing.T) {
	assert.Equal(t, "", EncodeErrors(nil))
	assert.Equal(t, `{"vector":"timeout"}`, EncodeErrors(map[string]string{"vector": "timeout"}))
}

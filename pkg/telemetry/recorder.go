package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/soundprediction/hybridrag/pkg/types"
)

// QueryRow is one audited retrieval.
type QueryRow struct {
	ID             string    `parquet:"id"`
	RequestID      string    `parquet:"request_id"`
	RequestSource  string    `parquet:"request_source"`
	Timestamp      time.Time `parquet:"timestamp"`
	Query          string    `parquet:"query"`
	Normalized     string    `parquet:"normalized"`
	TopK           int       `parquet:"top_k"`
	VectorCount    int       `parquet:"vector_count"`
	FullTextCount  int       `parquet:"fulltext_count"`
	ProximityCount int       `parquet:"proximity_count"`
	FuzzyCount     int       `parquet:"fuzzy_count"`
	KeywordCount   int       `parquet:"keyword_count"`
	DocumentCount  int       `parquet:"document_count"`
	ChannelErrors  string    `parquet:"channel_errors"` // JSON object keyed by channel
	Seeds          int       `parquet:"seeds"`
	Edges          int       `parquet:"edges"`
	Results        int       `parquet:"results"`
	Suggestions    int       `parquet:"suggestions"`
	DurationMs     int64     `parquet:"duration_ms"`
	Error          string    `parquet:"error"`
}

// QueryRecorder appends QueryRows to parquet files in batches.
type QueryRecorder struct {
	sink *batchWriter[QueryRow]
}

// NewQueryRecorder creates a recorder writing into outputDir.
func NewQueryRecorder(outputDir string, batchSize int) (*QueryRecorder, error) {
	sink, err := newBatchWriter[QueryRow](outputDir, "queries", batchSize)
	if err != nil {
		return nil, err
	}
	return &QueryRecorder{sink: sink}, nil
}

// Record buffers row, filling its ID, timestamp and request metadata from ctx
// when unset.
func (r *QueryRecorder) Record(ctx context.Context, row QueryRow) error {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	if row.Timestamp.IsZero() {
		row.Timestamp = time.Now().UTC()
	}
	if row.RequestID == "" {
		row.RequestID = contextString(ctx, types.ContextKeyRequestID)
	}
	if row.RequestSource == "" {
		row.RequestSource = contextString(ctx, types.ContextKeyRequestSource)
	}
	return r.sink.Add(row)
}

// Pending returns the number of buffered rows.
func (r *QueryRecorder) Pending() int {
	return r.sink.Pending()
}

// Flush writes buffered rows.
func (r *QueryRecorder) Flush() error {
	return r.sink.Flush()
}

// Close flushes buffered rows.
func (r *QueryRecorder) Close() error {
	return r.sink.Flush()
}

// EncodeErrors renders per-channel error messages as a JSON object.
func EncodeErrors(errs map[string]string) string {
	if len(errs) == 0 {
		return ""
	}
	b, err := json.Marshal(errs)
	if err != nil {
		return ""
	}
	return string(b)
}

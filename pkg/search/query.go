package search

import (
	"context"
	"errors"
	"sync"

	"github.com/soundprediction/hybridrag/pkg/embedder"
	"github.com/soundprediction/hybridrag/pkg/normalize"
)

// ErrNoEmbedder indicates embedding-based channels were asked for a vector without a client
var ErrNoEmbedder = errors.New("no embedder configured")

// Query is one retrieval request as seen by the channels.
type Query struct {
	// Raw is the trimmed user query, used for vector, full-text and proximity lookups.
	Raw string
	// Normalized is Raw after case folding and suffix stripping, used for lexical matching.
	Normalized string
	// TopK bounds the candidates each channel returns.
	TopK int

	embedder  embedder.Client
	embedOnce sync.Once
	vec       []float32
	embedErr  error
}

// NewQuery prepares a query. emb may be nil.
func NewQuery(raw string, topK int, n *normalize.Normalizer, emb embedder.Client) *Query {
	return &Query{
		Raw:        raw,
		Normalized: n.Normalize(raw),
		TopK:       topK,
		embedder:   emb,
	}
}

// Embedding returns the raw query's embedding, computing it at most once per
// query. The first caller's context bounds the embedding call.
func (q *Query) Embedding(ctx context.Context) ([]float32, error) {
	q.embedOnce.Do(func() {
		if q.embedder == nil {
			q.embedErr = ErrNoEmbedder
			return
		}
		q.vec, q.embedErr = q.embedder.EmbedSingle(ctx, q.Raw)
	})
	return q.vec, q.embedErr
}

package search

import (
	"context"
	"sync"
	"time"

	"github.com/soundprediction/hybridrag/pkg/driver"
	"github.com/soundprediction/hybridrag/pkg/types"
)

// mockStore is a scripted GraphStore. Each method returns its configured
// result, after an optional delay that honours context cancellation.
type mockStore struct {
	mu sync.Mutex

	vector    []types.Candidate
	fulltext  []types.Candidate
	documents []driver.Document
	lexicon   []driver.LexiconEntry
	keywords  []driver.KeywordEntry
	proximity []types.EdgeTriple
	edges     map[string][]types.EdgeTriple
	catalog   []string

	errs   map[string]error
	delays map[string]time.Duration

	expandCalls []string
}

func newMockStore() *mockStore {
	return &mockStore{
		edges:  make(map[string][]types.EdgeTriple),
		errs:   make(map[string]error),
		delays: make(map[string]time.Duration),
	}
}

func (m *mockStore) behave(ctx context.Context, method string) error {
	m.mu.Lock()
	delay, err := m.delays[method], m.errs[method]
	m.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return types.NewTransientBackendError(method, ctx.Err())
		}
	}
	return err
}

func (m *mockStore) VectorSearch(ctx context.Context, index string, embedding []float32, limit int) ([]types.Candidate, error) {
	if err := m.behave(ctx, "vector"); err != nil {
		return nil, err
	}
	return limitCandidates(m.vector, limit), nil
}

func (m *mockStore) FullTextSearch(ctx context.Context, index, query string, limit int) ([]types.Candidate, error) {
	if err := m.behave(ctx, "fulltext"); err != nil {
		return nil, err
	}
	return limitCandidates(m.fulltext, limit), nil
}

func (m *mockStore) DocumentSearch(ctx context.Context, index string, embedding []float32, limit int) ([]driver.Document, error) {
	if err := m.behave(ctx, "document"); err != nil {
		return nil, err
	}
	if len(m.documents) > limit {
		return m.documents[:limit], nil
	}
	return m.documents, nil
}

func (m *mockStore) NodeLexicon(ctx context.Context) ([]driver.LexiconEntry, error) {
	if err := m.behave(ctx, "lexicon"); err != nil {
		return nil, err
	}
	return m.lexicon, nil
}

func (m *mockStore) KeywordLexicon(ctx context.Context) ([]driver.KeywordEntry, error) {
	if err := m.behave(ctx, "keywords"); err != nil {
		return nil, err
	}
	return m.keywords, nil
}

func (m *mockStore) Expand(ctx context.Context, seedID string, maxHops, limit int) ([]types.EdgeTriple, error) {
	m.mu.Lock()
	m.expandCalls = append(m.expandCalls, seedID)
	m.mu.Unlock()
	if err := m.behave(ctx, "expand:"+seedID); err != nil {
		return nil, err
	}
	edges := append([]types.EdgeTriple(nil), m.edges[seedID]...)
	if len(edges) > limit {
		edges = edges[:limit]
	}
	return edges, nil
}

func (m *mockStore) ProximityEdges(ctx context.Context, query string, limit int) ([]types.EdgeTriple, error) {
	if err := m.behave(ctx, "proximity"); err != nil {
		return nil, err
	}
	if len(m.proximity) > limit {
		return m.proximity[:limit], nil
	}
	return m.proximity, nil
}

func (m *mockStore) FindNode(ctx context.Context, name string) (*types.Candidate, error) {
	for _, e := range m.lexicon {
		if e.Name == name {
			return &types.Candidate{NodeID: e.NodeID, Name: e.Name, Description: e.Description}, nil
		}
	}
	return nil, driver.ErrNodeNotFound
}

func (m *mockStore) CatalogNames(ctx context.Context) ([]string, error) {
	return m.catalog, m.errs["catalog"]
}

func (m *mockStore) Topics(ctx context.Context) ([]string, error) { return nil, nil }

func (m *mockStore) NodesByTopic(ctx context.Context, topic string) ([]string, error) {
	return m.catalog, nil
}

func (m *mockStore) Ping(ctx context.Context) error { return m.errs["ping"] }

func (m *mockStore) Provider() driver.GraphProvider { return driver.GraphProviderMemory }

func (m *mockStore) Close(ctx context.Context) error { return nil }

func limitCandidates(in []types.Candidate, limit int) []types.Candidate {
	if len(in) > limit {
		in = in[:limit]
	}
	return append([]types.Candidate(nil), in...)
}

// stubEmbedder returns a fixed vector, or err, after an optional delay.
type stubEmbedder struct {
	mu    sync.Mutex
	vec   []float32
	err   error
	delay time.Duration
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, types.NewTransientBackendError("embedder", ctx.Err())
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

func (s *stubEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *stubEmbedder) Dimensions() int { return len(s.vec) }

func (s *stubEmbedder) Close() error { return nil }

func (s *stubEmbedder) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

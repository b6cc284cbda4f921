package handlers

import (
	"context"
	"strings"

	"github.com/soundprediction/hybridrag/pkg/types"
)

// mockClient is a scripted hybridrag.HybridRAG.
type mockClient struct {
	result      *types.ResultSet
	suggestions []types.Suggestion
	outcome     *types.Outcome
	edges       []types.EdgeTriple
	topics      []string
	nodes       []string
	catalogSize int
	err         error
	pingErr     error

	lastQuery string
	lastTopK  int
}

func (m *mockClient) Retrieve(ctx context.Context, query string, topK int) (*types.ResultSet, error) {
	m.lastQuery, m.lastTopK = query, topK
	if strings.TrimSpace(query) == "" {
		return nil, types.NewInvalidQueryError(query)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockClient) Suggest(ctx context.Context, query string, limit int) ([]types.Suggestion, error) {
	m.lastQuery = query
	return m.suggestions, m.err
}

func (m *mockClient) Lookup(ctx context.Context, query string, topK int) *types.Outcome {
	m.lastQuery, m.lastTopK = query, topK
	if strings.TrimSpace(query) == "" {
		return &types.Outcome{Query: query, Results: []types.EdgeTriple{}, Message: types.MessageNoQuery}
	}
	return m.outcome
}

func (m *mockClient) Neighborhood(ctx context.Context, name string) ([]types.EdgeTriple, error) {
	m.lastQuery = name
	return m.edges, m.err
}

func (m *mockClient) Topics(ctx context.Context) ([]string, error) {
	return m.topics, m.err
}

func (m *mockClient) NodesByTopic(ctx context.Context, topic string) ([]string, error) {
	m.lastQuery = topic
	return m.nodes, m.err
}

func (m *mockClient) RefreshCatalog(ctx context.Context) (int, error) {
	return m.catalogSize, m.err
}

func (m *mockClient) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockClient) Close(ctx context.Context) error {
	return nil
}

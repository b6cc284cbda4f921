package embedder

import (
	"context"
	"sync"
)

// MockEmbedder is a scripted Client for wrapper tests.
type MockEmbedder struct {
	mu         sync.Mutex
	embeddings map[string][]float32
	errs       []error
	calls      int
	texts      [][]string
	closed     bool
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{embeddings: make(map[string][]float32)}
}

// SetEmbeddings sets the vector returned for text.
func (m *MockEmbedder) SetEmbeddings(text string, vec []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embeddings[text] = vec
}

// SetError queues errors returned by the next calls, in order.
func (m *MockEmbedder) SetError(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, errs...)
}

func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.texts = append(m.texts, append([]string(nil), texts...))

	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := m.embeddings[text]
		if !ok {
			vec = []float32{float32(len(text)), 1}
		}
		out[i] = vec
	}
	return out, nil
}

func (m *MockEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return embedSingle(ctx, m, text)
}

func (m *MockEmbedder) Dimensions() int { return 2 }

func (m *MockEmbedder) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

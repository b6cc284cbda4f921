package driver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/soundprediction/hybridrag/pkg/types"
	"gonum.org/v1/gonum/blas/blas32"
)

const memoryBackend = "memory"

// ErrEmptyFixtureID indicates a fixture node without an id
var ErrEmptyFixtureID = errors.New("fixture node id cannot be empty")

type memNode struct {
	FixtureNode
	labels map[string]struct{}
	norm   float32
}

type memEdge struct {
	from, to string
	relType  string
}

type memDocument struct {
	FixtureDocument
	norm float32
}

// bleveNode is the document indexed for full-text search.
type bleveNode struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MemoryDriver is an in-process GraphStore built from a Fixture. It is
// read-only after construction and safe for concurrent use. Index names are
// accepted for interface compatibility; the store has one index of each kind.
type MemoryDriver struct {
	schema    Schema
	nodes     map[string]*memNode
	order     []string // node ids ordered by name
	edges     []memEdge
	adjacency map[string][]int // node id -> edge positions
	documents []memDocument
	fulltext  bleve.Index

	mu     sync.RWMutex
	closed bool
}

// NewMemoryDriver builds a store from fixture.
func NewMemoryDriver(fixture *Fixture, schema Schema) (*MemoryDriver, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if fixture == nil {
		return nil, errors.New("fixture is required")
	}
	if err := fixture.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create fulltext index: %w", err)
	}

	m := &MemoryDriver{
		schema:    schema,
		nodes:     make(map[string]*memNode, len(fixture.Nodes)),
		adjacency: make(map[string][]int),
		fulltext:  index,
	}

	for _, n := range fixture.Nodes {
		m.addNode(n)
	}
	for _, e := range fixture.Edges {
		m.addEdge(e.From, e.Type, e.To)
	}
	m.attachKeywords(fixture.Nodes)

	for _, d := range fixture.Documents {
		m.documents = append(m.documents, memDocument{FixtureDocument: d, norm: norm(d.Embedding)})
	}

	batch := index.NewBatch()
	for id, n := range m.nodes {
		if n.Name == "" {
			continue
		}
		if err := batch.Index(id, bleveNode{Name: n.Name, Description: n.Description}); err != nil {
			return nil, fmt.Errorf("failed to index node %s: %w", id, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("failed to build fulltext index: %w", err)
	}

	m.order = make([]string, 0, len(m.nodes))
	for id := range m.nodes {
		m.order = append(m.order, id)
	}
	sort.Slice(m.order, func(i, j int) bool {
		a, b := m.nodes[m.order[i]], m.nodes[m.order[j]]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	return m, nil
}

// NewMemoryDriverFromFile loads a fixture file and builds a store from it.
func NewMemoryDriverFromFile(path string, schema Schema) (*MemoryDriver, error) {
	fixture, err := LoadFixture(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryDriver(fixture, schema)
}

func (m *MemoryDriver) addNode(n FixtureNode) {
	labels := make(map[string]struct{}, len(n.Labels))
	for _, l := range n.Labels {
		labels[l] = struct{}{}
	}
	m.nodes[n.ID] = &memNode{FixtureNode: n, labels: labels, norm: norm(n.Embedding)}
}

func (m *MemoryDriver) addEdge(from, relType, to string) {
	m.edges = append(m.edges, memEdge{from: from, to: to, relType: relType})
	pos := len(m.edges) - 1
	m.adjacency[from] = append(m.adjacency[from], pos)
	if to != from {
		m.adjacency[to] = append(m.adjacency[to], pos)
	}
}

// attachKeywords materializes fixture keywords as keyword-label nodes linked
// by the keyword relationship, the same shape the Neo4j graph has.
func (m *MemoryDriver) attachKeywords(nodes []FixtureNode) {
	for _, n := range nodes {
		for _, kw := range n.Keywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			id := "keyword:" + kw
			if _, ok := m.nodes[id]; !ok {
				m.addNode(FixtureNode{ID: id, Name: kw, Labels: []string{m.schema.KeywordLabel}})
			}
			m.addEdge(n.ID, m.schema.KeywordRelationship, id)
		}
	}
}

func (m *MemoryDriver) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return types.NewTransientBackendError(memoryBackend, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return types.NewBackendUnreachableError(memoryBackend, errors.New("store is closed"))
	}
	return nil
}

func (n *memNode) hasLabel(label string) bool {
	_, ok := n.labels[label]
	return ok
}

func norm(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return blas32.Nrm2(blas32.Vector{N: len(v), Inc: 1, Data: v})
}

// cosine returns the cosine similarity of a and b given their norms.
func cosine(a []float32, normA float32, b []float32, normB float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) || normA == 0 || normB == 0 {
		return 0, false
	}
	dot := blas32.Dot(
		blas32.Vector{N: len(a), Inc: 1, Data: a},
		blas32.Vector{N: len(b), Inc: 1, Data: b},
	)
	sim := float64(dot) / (float64(normA) * float64(normB))
	if math.IsNaN(sim) {
		return 0, false
	}
	return sim, true
}

// VectorSearch ranks every node with an embedding by cosine similarity.
func (m *MemoryDriver) VectorSearch(ctx context.Context, index string, embedding []float32, limit int) ([]types.Candidate, error) {
	if err := m.checkOpen(ctx); err != nil {
		return nil, err
	}
	if len(embedding) == 0 || limit <= 0 {
		return nil, nil
	}

	qNorm := norm(embedding)
	var out []types.Candidate
	for _, id := range m.order {
		n := m.nodes[id]
		sim, ok := cosine(embedding, qNorm, n.Embedding, n.norm)
		if !ok || n.Name == "" {
			continue
		}
		out = append(out, types.Candidate{
			NodeID:      n.ID,
			Name:        n.Name,
			Description: n.Description,
			Score:       sim,
			Source:      types.ChannelVector,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FullTextSearch runs a bleve match query over names and descriptions.
func (m *MemoryDriver) FullTextSearch(ctx context.Context, index, query string, limit int) ([]types.Candidate, error) {
	if err := m.checkOpen(ctx); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)
	res, err := m.fulltext.SearchInContext(ctx, req)
	if err != nil {
		return nil, types.NewTransientBackendError(memoryBackend, err)
	}

	out := make([]types.Candidate, 0, len(res.Hits))
	for _, hit := range res.Hits {
		n, ok := m.nodes[hit.ID]
		if !ok {
			continue
		}
		out = append(out, types.Candidate{
			NodeID:      n.ID,
			Name:        n.Name,
			Description: n.Description,
			Score:       hit.Score,
			Source:      types.ChannelFullText,
		})
	}
	return out, nil
}

// DocumentSearch ranks document chunks by cosine similarity.
func (m *MemoryDriver) DocumentSearch(ctx context.Context, index string, embedding []float32, limit int) ([]Document, error) {
	if err := m.checkOpen(ctx); err != nil {
		return nil, err
	}
	if len(embedding) == 0 || limit <= 0 {
		return nil, nil
	}

	qNorm := norm(embedding)
	var out []Document
	for _, d := range m.documents {
		sim, ok := cosine(embedding, qNorm, d.Embedding, d.norm)
		if !ok || d.Text == "" {
			continue
		}
		out = append(out, Document{ID: d.ID, Text: d.Text, Score: sim})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// NodeLexicon returns every named node ordered by name.
func (m *MemoryDriver) NodeLexicon(ctx context.Context) ([]LexiconEntry, error) {
	if err := m.checkOpen(ctx); err != nil {
		return nil, err
	}

	out := make([]LexiconEntry, 0, len(m.order))
	for _, id := range m.order {
		n := m.nodes[id]
		if n.Name == "" {
			continue
		}
		out = append(out, LexiconEntry{NodeID: n.ID, Name: n.Name, Description: n.Description})
	}
	return out, nil
}

// KeywordLexicon returns node-keyword pairs ordered by node name then keyword.
func (m *MemoryDriver) KeywordLexicon(ctx context.Context) ([]KeywordEntry, error) {
	if err := m.checkOpen(ctx); err != nil {
		return nil, err
	}

	var out []KeywordEntry
	for _, id := range m.order {
		n := m.nodes[id]
		if n.Name == "" {
			continue
		}
		var keywords []string
		for _, pos := range m.adjacency[id] {
			e := m.edges[pos]
			if e.from != id || e.relType != m.schema.KeywordRelationship {
				continue
			}
			k := m.nodes[e.to]
			if k.hasLabel(m.schema.KeywordLabel) && k.Name != "" {
				keywords = append(keywords, k.Name)
			}
		}
		slices.Sort(keywords)
		for _, kw := range keywords {
			out = append(out, KeywordEntry{
				LexiconEntry: LexiconEntry{NodeID: n.ID, Name: n.Name, Description: n.Description},
				Keyword:      kw,
			})
		}
	}
	return out, nil
}

// Expand walks the graph breadth-first in both directions from the seed.
// An edge's depth is one more than the distance of its nearer endpoint.
func (m *MemoryDriver) Expand(ctx context.Context, seedID string, maxHops, limit int) ([]types.EdgeTriple, error) {
	if err := m.checkOpen(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	if maxHops < 1 || maxHops > MaxTraversalHops {
		maxHops = MaxTraversalHops
	}
	if _, ok := m.nodes[seedID]; !ok {
		return nil, nil
	}

	dist := map[string]int{seedID: 0}
	edgeDepth := make(map[int]int)
	frontier := []string{seedID}

	for d := 0; d < maxHops && len(frontier) > 0; d++ {
		var next []string
		for _, id := range frontier {
			for _, pos := range m.adjacency[id] {
				if _, seen := edgeDepth[pos]; !seen {
					edgeDepth[pos] = d + 1
				}
				e := m.edges[pos]
				other := e.to
				if other == id {
					other = e.from
				}
				if _, seen := dist[other]; !seen {
					dist[other] = d + 1
					next = append(next, other)
				}
			}
		}
		frontier = next
	}

	out := make([]types.EdgeTriple, 0, len(edgeDepth))
	for pos, depth := range edgeDepth {
		e := m.edges[pos]
		from, to := m.nodes[e.from], m.nodes[e.to]
		if from.Name == "" || to.Name == "" {
			continue
		}
		out = append(out, types.EdgeTriple{
			Node1:        from.Name,
			Relationship: e.relType,
			Node2:        to.Name,
			Depth:        depth,
			Seed:         seedID,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return lessTriple(out[i], out[j])
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func lessTriple(a, b types.EdgeTriple) bool {
	if a.Node1 != b.Node1 {
		return a.Node1 < b.Node1
	}
	if a.Relationship != b.Relationship {
		return a.Relationship < b.Relationship
	}
	return a.Node2 < b.Node2
}

// ProximityEdges returns directed edges whose endpoint names contain query.
func (m *MemoryDriver) ProximityEdges(ctx context.Context, query string, limit int) ([]types.EdgeTriple, error) {
	if err := m.checkOpen(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil, nil
	}

	var out []types.EdgeTriple
	for _, e := range m.edges {
		from, to := m.nodes[e.from], m.nodes[e.to]
		if from.Name == "" || to.Name == "" {
			continue
		}
		if strings.Contains(from.Name, query) || strings.Contains(to.Name, query) {
			out = append(out, types.EdgeTriple{Node1: from.Name, Relationship: e.relType, Node2: to.Name})
		}
	}

	sort.Slice(out, func(i, j int) bool { return lessTriple(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindNode looks a node up by exact name, first by name order.
func (m *MemoryDriver) FindNode(ctx context.Context, name string) (*types.Candidate, error) {
	if err := m.checkOpen(ctx); err != nil {
		return nil, err
	}
	for _, id := range m.order {
		if n := m.nodes[id]; n.Name == name {
			return &types.Candidate{NodeID: n.ID, Name: n.Name, Description: n.Description}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
}

func (m *MemoryDriver) namesWithLabel(label string, keep func(*memNode) bool) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, id := range m.order {
		n := m.nodes[id]
		if n.Name == "" || !n.hasLabel(label) || (keep != nil && !keep(n)) {
			continue
		}
		if _, dup := seen[n.Name]; dup {
			continue
		}
		seen[n.Name] = struct{}{}
		out = append(out, n.Name)
	}
	return out
}

// CatalogNames returns distinct catalog-label names ordered by name.
func (m *MemoryDriver) CatalogNames(ctx context.Context) ([]string, error) {
	if err := m.checkOpen(ctx); err != nil {
		return nil, err
	}
	return m.namesWithLabel(m.schema.CatalogLabel, nil), nil
}

// Topics returns distinct topic-label names ordered by name.
func (m *MemoryDriver) Topics(ctx context.Context) ([]string, error) {
	if err := m.checkOpen(ctx); err != nil {
		return nil, err
	}
	return m.namesWithLabel(m.schema.TopicLabel, nil), nil
}

// NodesByTopic returns catalog names with a topic relationship to topic.
func (m *MemoryDriver) NodesByTopic(ctx context.Context, topic string) ([]string, error) {
	if topic == "" {
		return m.CatalogNames(ctx)
	}
	if err := m.checkOpen(ctx); err != nil {
		return nil, err
	}

	return m.namesWithLabel(m.schema.CatalogLabel, func(n *memNode) bool {
		for _, pos := range m.adjacency[n.ID] {
			e := m.edges[pos]
			if e.from != n.ID || e.relType != m.schema.TopicRelationship {
				continue
			}
			t := m.nodes[e.to]
			if t.Name == topic && t.hasLabel(m.schema.TopicLabel) {
				return true
			}
		}
		return false
	}), nil
}

// Ping reports whether the store is open.
func (m *MemoryDriver) Ping(ctx context.Context) error {
	return m.checkOpen(ctx)
}

// Provider returns the type of graph store.
func (m *MemoryDriver) Provider() GraphProvider {
	return GraphProviderMemory
}

// Close releases the fulltext index. Later calls fail as unreachable.
func (m *MemoryDriver) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.fulltext.Close()
}

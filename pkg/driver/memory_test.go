package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/soundprediction/hybridrag/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFixture = `
nodes:
  - id: p1
    name: Έκδοση πιστοποιητικού γέννησης
    labels: [PROCESS]
    description: Αίτηση στο ληξιαρχείο για πιστοποιητικό γέννησης
    embedding: [1, 0, 0]
    keywords: [ληξιαρχείο, γέννηση]
  - id: p2
    name: Έκδοση διαβατηρίου
    labels: [PROCESS]
    description: Αίτηση για νέο διαβατήριο
    embedding: [0, 1, 0]
    keywords: [διαβατήριο]
  - id: s1
    name: Υποβολή αίτησης
    labels: [STEP]
  - id: s2
    name: Παραλαβή εγγράφου
    labels: [STEP]
  - id: d1
    name: Ταυτότητα
    labels: [DOCUMENT]
  - id: t1
    name: Οικογένεια
    labels: [TOPIC]
  - id: t2
    name: Ταξίδια
    labels: [TOPIC]
edges:
  - {from: p1, type: HAS_STEP, to: s1}
  - {from: s1, type: NEXT, to: s2}
  - {from: s2, type: REQUIRES, to: d1}
  - {from: p1, type: HAS_TOPIC, to: t1}
  - {from: p2, type: HAS_TOPIC, to: t2}
  - {from: p2, type: REQUIRES, to: d1}
documents:
  - id: c1
    text: Το πιστοποιητικό γέννησης εκδίδεται από το ληξιαρχείο.
    embedding: [0.9, 0.1, 0]
  - id: c2
    text: Το διαβατήριο εκδίδεται από την αστυνομία.
    embedding: [0, 1, 0]
`

func newTestStore(t *testing.T) *MemoryDriver {
	t.Helper()
	fixture, err := ParseFixture([]byte(testFixture))
	require.NoError(t, err)
	store, err := NewMemoryDriver(fixture, DefaultSchema())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestMemoryDriverVectorSearch(t *testing.T) {
	store := newTestStore(t)

	got, err := store.VectorSearch(context.Background(), "vector_index", []float32{1, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].NodeID)
	assert.Equal(t, types.ChannelVector, got[0].Source)
	assert.Greater(t, got[0].Score, got[1].Score)

	none, err := store.VectorSearch(context.Background(), "vector_index", []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Empty(t, none, "dimension mismatch matches nothing")
}

func TestMemoryDriverFullTextSearch(t *testing.T) {
	store := newTestStore(t)

	got, err := store.FullTextSearch(context.Background(), "fulltext_index", "διαβατηρίου", 5)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "p2", got[0].NodeID)
	assert.Equal(t, types.ChannelFullText, got[0].Source)

	empty, err := store.FullTextSearch(context.Background(), "fulltext_index", "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryDriverDocumentSearch(t *testing.T) {
	store := newTestStore(t)

	got, err := store.DocumentSearch(context.Background(), "chunk_vector_index", []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
}

func TestMemoryDriverLexicons(t *testing.T) {
	store := newTestStore(t)

	nodes, err := store.NodeLexicon(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "ληξιαρχείο", "keywords become nodes")

	keywords, err := store.KeywordLexicon(context.Background())
	require.NoError(t, err)
	require.Len(t, keywords, 3)
	assert.Equal(t, "διαβατήριο", keywords[0].Keyword)
	assert.Equal(t, "p2", keywords[0].NodeID)
	assert.Equal(t, "γέννηση", keywords[1].Keyword)
	assert.Equal(t, "ληξιαρχείο", keywords[2].Keyword)
}

func TestMemoryDriverExpandRespectsHops(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name    string
		hops    int
		want    []types.IdentityKey
		notWant []types.IdentityKey
	}{
		{
			name: "one hop",
			hops: 1,
			want: []types.IdentityKey{
				{Node1: "Έκδοση πιστοποιητικού γέννησης", Relationship: "HAS_STEP", Node2: "Υποβολή αίτησης"},
				{Node1: "Έκδοση πιστοποιητικού γέννησης", Relationship: "HAS_TOPIC", Node2: "Οικογένεια"},
			},
			notWant: []types.IdentityKey{
				{Node1: "Υποβολή αίτησης", Relationship: "NEXT", Node2: "Παραλαβή εγγράφου"},
			},
		},
		{
			name: "three hops reaches the shared document",
			hops: 3,
			want: []types.IdentityKey{
				{Node1: "Παραλαβή εγγράφου", Relationship: "REQUIRES", Node2: "Ταυτότητα"},
			},
			notWant: []types.IdentityKey{
				{Node1: "Έκδοση διαβατηρίου", Relationship: "REQUIRES", Node2: "Ταυτότητα"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges, err := store.Expand(context.Background(), "p1", tt.hops, 100)
			require.NoError(t, err)

			keys := make(map[types.IdentityKey]bool)
			for _, e := range edges {
				assert.LessOrEqual(t, e.Depth, tt.hops)
				assert.Equal(t, "p1", e.Seed)
				assert.False(t, keys[e.Key()], "duplicate edge %v", e.Key())
				keys[e.Key()] = true
			}
			for _, k := range tt.want {
				assert.True(t, keys[k], "missing %v", k)
			}
			for _, k := range tt.notWant {
				assert.False(t, keys[k], "unexpected %v", k)
			}
		})
	}
}

func TestMemoryDriverExpandClampsAndLimits(t *testing.T) {
	store := newTestStore(t)

	edges, err := store.Expand(context.Background(), "p1", 10, 100)
	require.NoError(t, err)
	for _, e := range edges {
		assert.LessOrEqual(t, e.Depth, MaxTraversalHops)
	}

	limited, err := store.Expand(context.Background(), "p1", 3, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
	for _, e := range limited {
		assert.Equal(t, 1, e.Depth, "nearest edges come first")
	}

	unknown, err := store.Expand(context.Background(), "missing", 3, 10)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestMemoryDriverProximityEdges(t *testing.T) {
	store := newTestStore(t)

	edges, err := store.ProximityEdges(context.Background(), "διαβατηρίου", 20)
	require.NoError(t, err)
	require.Len(t, edges, 3)
	for _, e := range edges {
		assert.Equal(t, "Έκδοση διαβατηρίου", e.Node1)
	}

	injection, err := store.ProximityEdges(context.Background(), "' OR 1=1 //", 20)
	require.NoError(t, err)
	assert.Empty(t, injection)
}

func TestMemoryDriverCatalogAndTopics(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	names, err := store.CatalogNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Έκδοση διαβατηρίου", "Έκδοση πιστοποιητικού γέννησης"}, names)

	topics, err := store.Topics(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Οικογένεια", "Ταξίδια"}, topics)

	byTopic, err := store.NodesByTopic(ctx, "Ταξίδια")
	require.NoError(t, err)
	assert.Equal(t, []string{"Έκδοση διαβατηρίου"}, byTopic)

	all, err := store.NodesByTopic(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, names, all)
}

func TestMemoryDriverFindNode(t *testing.T) {
	store := newTestStore(t)

	node, err := store.FindNode(context.Background(), "Έκδοση διαβατηρίου")
	require.NoError(t, err)
	assert.Equal(t, "p2", node.NodeID)

	_, err = store.FindNode(context.Background(), "Άγνωστο")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestMemoryDriverClosedIsUnreachable(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close(context.Background()))

	assert.ErrorIs(t, store.Ping(context.Background()), types.ErrBackendUnreachable)
	_, err := store.CatalogNames(context.Background())
	assert.ErrorIs(t, err, types.ErrBackendUnreachable)
}

func TestMemoryDriverCancelledContextIsTransient(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.NodeLexicon(ctx)
	assert.ErrorIs(t, err, types.ErrTransientBackend)
}

func TestParseFixtureErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing id", "nodes:\n  - name: A\n"},
		{"duplicate id", "nodes:\n  - {id: a}\n  - {id: a}\n"},
		{"dangling edge", "nodes:\n  - {id: a}\nedges:\n  - {from: a, type: R, to: b}\n"},
		{"bad relationship type", "nodes:\n  - {id: a}\nedges:\n  - {from: a, type: 'R]->() DELETE', to: a}\n"},
		{"not yaml", "nodes: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixture([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestNewMemoryDriverValidatesFixture(t *testing.T) {
	tests := []struct {
		name    string
		fixture *Fixture
	}{
		{"nil fixture", nil},
		{"dangling edge", &Fixture{
			Nodes: []FixtureNode{{ID: "a", Name: "A"}},
			Edges: []FixtureEdge{{From: "a", Type: "NEXT", To: "ghost"}},
		}},
		{"missing id", &Fixture{Nodes: []FixtureNode{{Name: "A"}}}},
		{"bad relationship type", &Fixture{
			Nodes: []FixtureNode{{ID: "a"}},
			Edges: []FixtureEdge{{From: "a", Type: "R` DELETE", To: "a"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewMemoryDriver(tt.fixture, DefaultSchema())
			assert.Error(t, err)
			assert.Nil(t, store)
		})
	}

	fixture := &Fixture{
		Nodes: []FixtureNode{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		Edges: []FixtureEdge{{From: "a", Type: "NEXT", To: "b"}},
	}
	store, err := NewMemoryDriver(fixture, DefaultSchema())
	require.NoError(t, err)
	defer store.Close(context.Background())

	edges, err := store.ProximityEdges(context.Background(), "A", 10)
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestNewMemoryDriverFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testFixture), 0o644))

	store, err := NewMemoryDriverFromFile(path, DefaultSchema())
	require.NoError(t, err)
	defer store.Close(context.Background())
	assert.Equal(t, GraphProviderMemory, store.Provider())

	_, err = NewMemoryDriverFromFile(filepath.Join(t.TempDir(), "missing.yaml"), DefaultSchema())
	assert.Error(t, err)
}

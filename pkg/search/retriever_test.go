package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/soundprediction/hybridrag/pkg/driver"
	"github.com/soundprediction/hybridrag/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRetriever(t *testing.T, store *mockStore, emb *stubEmbedder, mutate func(*Options)) *Retriever {
	t.Helper()
	options := DefaultOptions()
	options.ExpansionWorkers = 4
	if mutate != nil {
		mutate(&options)
	}
	var r *Retriever
	var err error
	if emb == nil {
		r, err = NewRetriever(store, nil, options, nil)
	} else {
		r, err = NewRetriever(store, emb, options, nil)
	}
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func edge(n1, rel, n2 string, depth int) types.EdgeTriple {
	return types.EdgeTriple{Node1: n1, Relationship: rel, Node2: n2, Depth: depth}
}

func keys(triples []types.EdgeTriple) []types.IdentityKey {
	out := make([]types.IdentityKey, len(triples))
	for i, t := range triples {
		out[i] = t.Key()
	}
	return out
}

func TestRetrieveDeduplicatesAcrossChannels(t *testing.T) {
	store := newMockStore()
	store.vector = []types.Candidate{{NodeID: "a", Name: "A", Score: 0.92}}
	store.fulltext = []types.Candidate{
		{NodeID: "a", Name: "A", Score: 0.81},
		{NodeID: "b", Name: "B", Score: 0.70},
	}
	store.edges["a"] = []types.EdgeTriple{edge("A", "HAS_STEP", "S1", 1)}
	store.edges["b"] = []types.EdgeTriple{edge("B", "REQUIRES", "D", 1)}

	r := newTestRetriever(t, store, &stubEmbedder{vec: []float32{1, 0}}, nil)

	result, report, err := r.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Len(t, result.Triples, 2)

	assert.Equal(t, types.IdentityKey{Node1: "A", Relationship: "HAS_STEP", Node2: "S1"}, result.Triples[0].Key())
	assert.InDelta(t, 0.92, result.Triples[0].ScoreOr(0), 1e-9)
	assert.Equal(t, types.IdentityKey{Node1: "B", Relationship: "REQUIRES", Node2: "D"}, result.Triples[1].Key())
	assert.InDelta(t, 0.70, result.Triples[1].ScoreOr(0), 1e-9)

	assert.Equal(t, 2, report.Seeds)
	assert.False(t, report.Degraded())
}

func TestRetrieveAdjacentSeedsShareEdgesWithoutFallback(t *testing.T) {
	store := newMockStore()
	store.fulltext = []types.Candidate{
		{NodeID: "a", Name: "A", Description: "da", Score: 0.9},
		{NodeID: "b", Name: "B", Description: "db", Score: 0.8},
	}
	store.edges["a"] = []types.EdgeTriple{edge("A", "NEXT", "B", 1)}
	store.edges["b"] = []types.EdgeTriple{edge("A", "NEXT", "B", 1)}

	r := newTestRetriever(t, store, nil, nil)

	result, report, err := r.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Equal(t, []types.IdentityKey{
		{Node1: "A", Relationship: "NEXT", Node2: "B"},
	}, keys(result.Triples))
	assert.Equal(t, 2, report.Seeds)
	assert.Equal(t, 1, report.Edges)
}

func TestRetrieveOverallDeadlineKeepsFinishedChannels(t *testing.T) {
	store := newMockStore()
	store.fulltext = []types.Candidate{{NodeID: "b", Name: "B", Description: "db", Score: 0.7}}
	store.lexicon = []driver.LexiconEntry{{NodeID: "c", Name: "query"}}
	store.delays["lexicon"] = 2 * time.Second
	store.delays["keywords"] = 2 * time.Second

	r := newTestRetriever(t, store, nil, func(o *Options) {
		o.Timeout = 100 * time.Millisecond
	})

	start := time.Now()
	result, report, err := r.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	assert.Equal(t, []types.IdentityKey{
		{Node1: "B", Relationship: types.RelationshipSimilar, Node2: "db"},
	}, keys(result.Triples))
	assert.True(t, report.Degraded())

	for _, c := range report.Channels {
		switch c.Channel {
		case types.ChannelFuzzy, types.ChannelKeyword:
			assert.Error(t, c.Err, c.Channel.String())
		case types.ChannelFullText:
			assert.NoError(t, c.Err)
			assert.Equal(t, 1, c.Count)
		}
	}
}

func TestRetrieveEmptyChannelsYieldEmptyResult(t *testing.T) {
	store := newMockStore()
	store.catalog = []string{"Έκδοση διαβατηρίου", "Έκδοση πιστοποιητικού γέννησης"}

	r := newTestRetriever(t, store, &stubEmbedder{vec: []float32{1, 0}}, nil)

	result, _, err := r.Retrieve(context.Background(), "xyzzy", 5)
	require.NoError(t, err)
	assert.True(t, result.Empty())
	assert.Empty(t, store.expandCalls)

	suggestions := Suggest("διαβατηριο", store.catalog, 5)
	require.NotEmpty(t, suggestions)
	assert.LessOrEqual(t, len(suggestions), types.MaxSuggestions)
	assert.Equal(t, "Έκδοση διαβατηρίου", suggestions[0].Name)
}

func TestRetrieveEmbedderTimeoutDegradesToFullText(t *testing.T) {
	store := newMockStore()
	store.vector = []types.Candidate{{NodeID: "a", Name: "A", Score: 0.99}}
	store.fulltext = []types.Candidate{{NodeID: "b", Name: "B", Description: "about B", Score: 0.5}}

	emb := &stubEmbedder{vec: []float32{1, 0}, delay: 2 * time.Second}
	r := newTestRetriever(t, store, emb, func(o *Options) {
		o.ChannelTimeout = 50 * time.Millisecond
	})

	result, report, err := r.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Len(t, result.Triples, 1)
	assert.Equal(t, types.IdentityKey{Node1: "B", Relationship: types.RelationshipSimilar, Node2: "about B"}, result.Triples[0].Key())
	assert.True(t, report.Degraded())

	var vectorErr error
	for _, c := range report.Channels {
		if c.Channel == types.ChannelVector {
			vectorErr = c.Err
		}
	}
	require.Error(t, vectorErr)
	assert.True(t, types.IsTransient(vectorErr))
}

func TestRetrieveRejectsBlankQuery(t *testing.T) {
	r := newTestRetriever(t, newMockStore(), nil, nil)

	for _, q := range []string{"", "   ", "\t\n"} {
		_, _, err := r.Retrieve(context.Background(), q, 5)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidQuery)
	}
}

func TestRetrieveUnreachableStoreFails(t *testing.T) {
	store := newMockStore()
	store.errs["fulltext"] = types.NewBackendUnreachableError("graph", errors.New("connection refused"))
	store.lexicon = []driver.LexiconEntry{{NodeID: "a", Name: "query"}}

	r := newTestRetriever(t, store, nil, nil)

	_, _, err := r.Retrieve(context.Background(), "query", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBackendUnreachable)
}

func TestRetrieveAllChannelsFailed(t *testing.T) {
	store := newMockStore()
	boom := types.NewTransientBackendError("graph", errors.New("busy"))
	for _, m := range []string{"fulltext", "proximity", "lexicon", "keywords"} {
		store.errs[m] = boom
	}

	r := newTestRetriever(t, store, nil, nil)

	_, _, err := r.Retrieve(context.Background(), "query", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrAllChannelsFailed)
}

func TestRetrieveRespectsTopKAndIsDeterministic(t *testing.T) {
	store := newMockStore()
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("n%d", i)
		store.fulltext = append(store.fulltext, types.Candidate{NodeID: id, Name: id, Score: 1 - float64(i)/10})
		for j := 0; j < 3; j++ {
			store.edges[id] = append(store.edges[id], edge(id, "REL", fmt.Sprintf("%s-%d", id, j), 1))
		}
	}
	store.proximity = []types.EdgeTriple{edge("n0", "REL", "n0-0", 0), edge("x", "NEAR", "y", 0)}

	r := newTestRetriever(t, store, nil, nil)

	first, _, err := r.Retrieve(context.Background(), "n", 3)
	require.NoError(t, err)
	assert.Len(t, first.Triples, 3)

	seen := make(map[types.IdentityKey]bool)
	for _, tr := range first.Triples {
		assert.False(t, seen[tr.Key()], "duplicate %v", tr.Key())
		seen[tr.Key()] = true
	}

	for i := 0; i < 5; i++ {
		again, _, err := r.Retrieve(context.Background(), "n", 3)
		require.NoError(t, err)
		assert.Equal(t, keys(first.Triples), keys(again.Triples))
	}

	defaulted, _, err := r.Retrieve(context.Background(), "n", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTopK, defaulted.TopK)
	assert.LessOrEqual(t, defaulted.Len(), DefaultTopK)
}

func TestRetrieveDropsEdgesBeyondMaxHops(t *testing.T) {
	store := newMockStore()
	store.fulltext = []types.Candidate{{NodeID: "a", Name: "A", Score: 1}}
	store.edges["a"] = []types.EdgeTriple{
		edge("A", "R", "B", 1),
		edge("B", "R", "C", 2),
		edge("C", "R", "D", 3),
		edge("D", "R", "E", 4),
	}

	r := newTestRetriever(t, store, nil, nil)

	result, _, err := r.Retrieve(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, result.Triples, 3)
	for _, tr := range result.Triples {
		assert.LessOrEqual(t, tr.Depth, DefaultMaxHops)
	}
}

func TestRetrieveComputesEmbeddingOnce(t *testing.T) {
	store := newMockStore()
	store.vector = []types.Candidate{{NodeID: "a", Name: "A", Score: 0.9}}
	store.documents = []driver.Document{{ID: "c1", Text: "chunk", Score: 0.8}}

	emb := &stubEmbedder{vec: []float32{1, 0}}
	r := newTestRetriever(t, store, emb, func(o *Options) {
		o.DocumentIndex = "documents"
	})

	result, _, err := r.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, emb.callCount())
	require.Len(t, result.Triples, 2)
	assert.Equal(t, types.RelationshipSimilar, result.Triples[0].Relationship)
	assert.Equal(t, types.IdentityKey{Node1: "chunk", Relationship: types.RelationshipSimpleRAG}, result.Triples[1].Key())
}

func TestRetrieveFuzzyAndKeywordChannels(t *testing.T) {
	store := newMockStore()
	store.lexicon = []driver.LexiconEntry{
		{NodeID: "p1", Name: "Έκδοση πιστοποιητικού γέννησης"},
		{NodeID: "p2", Name: "Διαβατήριο"},
	}
	store.keywords = []driver.KeywordEntry{
		{LexiconEntry: driver.LexiconEntry{NodeID: "p1", Name: "Έκδοση πιστοποιητικού γέννησης"}, Keyword: "ληξιαρχείο"},
	}
	store.edges["p2"] = []types.EdgeTriple{edge("Διαβατήριο", "REQUIRES", "Ταυτότητα", 1)}
	store.edges["p1"] = []types.EdgeTriple{edge("Έκδοση πιστοποιητικού γέννησης", "HAS_STEP", "Αίτηση", 1)}

	r := newTestRetriever(t, store, nil, func(o *Options) {
		o.Channels = []types.Channel{types.ChannelFuzzy, types.ChannelKeyword}
	})
	assert.Equal(t, []types.Channel{types.ChannelFuzzy, types.ChannelKeyword}, r.Channels())

	result, _, err := r.Retrieve(context.Background(), "ΔΙΑΒΑΤΗΡΙΟ", 5)
	require.NoError(t, err)
	require.Len(t, result.Triples, 1)
	assert.Equal(t, "Ταυτότητα", result.Triples[0].Node2)
	assert.InDelta(t, types.FixedMatchScore, result.Triples[0].ScoreOr(0), 1e-9)

	result, _, err = r.Retrieve(context.Background(), "ληξιαρχείο", 5)
	require.NoError(t, err)
	require.Len(t, result.Triples, 1)
	assert.Equal(t, "Αίτηση", result.Triples[0].Node2)
}

func TestNewRetrieverValidatesBounds(t *testing.T) {
	_, err := NewRetriever(newMockStore(), nil, Options{MaxHops: 4}, nil)
	assert.Error(t, err)

	_, err = NewRetriever(newMockStore(), nil, Options{MaxEdges: 50}, nil)
	assert.Error(t, err)

	_, err = NewRetriever(nil, nil, DefaultOptions(), nil)
	assert.Error(t, err)
}

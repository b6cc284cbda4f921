package search

import (
	"testing"

	"github.com/soundprediction/hybridrag/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFirstWriterWinsInPriorityOrder(t *testing.T) {
	shared := edge("A", "R", "B", 1)
	outputs := []ChannelTriples{
		{Channel: types.ChannelKeyword, Triples: []types.EdgeTriple{shared.WithScore(1.0), edge("K", "R", "L", 1)}},
		{Channel: types.ChannelVector, Triples: []types.EdgeTriple{shared.WithScore(0.3)}},
		{Channel: types.ChannelFullText, Triples: []types.EdgeTriple{edge("F", "R", "G", 1).WithScore(12.5)}},
	}

	merged := Merge(outputs, 10)
	require.Len(t, merged, 3)
	assert.Equal(t, shared.Key(), merged[0].Key())
	assert.InDelta(t, 0.3, merged[0].ScoreOr(0), 1e-9)
	assert.Equal(t, "F", merged[1].Node1)
	assert.Equal(t, "K", merged[2].Node1)
}

func TestMergeStopsAtTopK(t *testing.T) {
	outputs := []ChannelTriples{
		{Channel: types.ChannelVector, Triples: []types.EdgeTriple{edge("a", "r", "b", 1), edge("a", "r", "b", 2), edge("c", "r", "d", 1)}},
		{Channel: types.ChannelFullText, Triples: []types.EdgeTriple{edge("e", "r", "f", 1)}},
	}

	merged := Merge(outputs, 2)
	assert.Equal(t, []types.IdentityKey{
		{Node1: "a", Relationship: "r", Node2: "b"},
		{Node1: "c", Relationship: "r", Node2: "d"},
	}, keys(merged))

	assert.Empty(t, Merge(outputs, 0))
	assert.Empty(t, Merge(nil, 5))
}

func TestTriplesForFallsBackToSimilar(t *testing.T) {
	candidates := []types.Candidate{
		{NodeID: "a", Name: "A", Description: "first", Score: 0.9},
		{NodeID: "b", Name: "B", Score: 0.4},
		{NodeID: "a", Name: "A", Score: 0.1},
	}
	expansion := &Expansion{
		Edges: []types.EdgeTriple{
			{Node1: "B", Relationship: "R", Node2: "C", Seed: "b"},
			{Node1: "C", Relationship: "R", Node2: "D", Seed: "b"},
		},
		Reached: map[string]struct{}{"b": {}},
	}

	triples := TriplesFor(candidates, expansion)
	require.Len(t, triples, 3)
	assert.Equal(t, types.IdentityKey{Node1: "A", Relationship: types.RelationshipSimilar, Node2: "first"}, triples[0].Key())
	assert.InDelta(t, 0.9, triples[0].ScoreOr(0), 1e-9)
	assert.InDelta(t, 0.4, triples[1].ScoreOr(0), 1e-9)
	assert.InDelta(t, 0.4, triples[2].ScoreOr(0), 1e-9)
}

func TestTriplesForSkipsCandidatesWhoseEdgesWereClaimed(t *testing.T) {
	candidates := []types.Candidate{
		{NodeID: "a", Name: "A", Description: "da", Score: 0.9},
		{NodeID: "b", Name: "B", Description: "db", Score: 0.8},
	}
	expansion := &Expansion{
		Edges:   []types.EdgeTriple{{Node1: "A", Relationship: "NEXT", Node2: "B", Seed: "a"}},
		Reached: map[string]struct{}{"a": {}, "b": {}},
	}

	triples := TriplesFor(candidates, expansion)
	require.Len(t, triples, 1)
	assert.Equal(t, types.IdentityKey{Node1: "A", Relationship: "NEXT", Node2: "B"}, triples[0].Key())
}

func TestTriplesForWithoutExpansion(t *testing.T) {
	triples := TriplesFor([]types.Candidate{{NodeID: "a", Name: "A", Description: "da", Score: 0.5}}, nil)
	require.Len(t, triples, 1)
	assert.Equal(t, types.RelationshipSimilar, triples[0].Relationship)
}

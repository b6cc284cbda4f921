package search

import (
	"context"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/soundprediction/hybridrag/pkg/driver"
	"github.com/soundprediction/hybridrag/pkg/normalize"
	"github.com/soundprediction/hybridrag/pkg/types"
)

// MaxFuzzyDistance is the exclusive edit-distance bound of a fuzzy match.
const MaxFuzzyDistance = 4

// Output is what a single channel contributes to a retrieval.
// Candidate channels fill Candidates; triple channels fill Triples.
type Output struct {
	Candidates []types.Candidate
	Triples    []types.EdgeTriple

	took time.Duration
}

// Channel is one independent retrieval strategy.
type Channel interface {
	Kind() types.Channel
	Retrieve(ctx context.Context, q *Query) (Output, error)
}

// VectorChannel returns nodes nearest to the query embedding.
type VectorChannel struct {
	store driver.IndexSearcher
	index string
}

func NewVectorChannel(store driver.IndexSearcher, index string) *VectorChannel {
	return &VectorChannel{store: store, index: index}
}

func (c *VectorChannel) Kind() types.Channel { return types.ChannelVector }

func (c *VectorChannel) Retrieve(ctx context.Context, q *Query) (Output, error) {
	vec, err := q.Embedding(ctx)
	if err != nil {
		return Output{}, err
	}
	candidates, err := c.store.VectorSearch(ctx, c.index, vec, q.TopK)
	if err != nil {
		return Output{}, err
	}
	return Output{Candidates: tag(candidates, types.ChannelVector, q.TopK)}, nil
}

// FullTextChannel returns nodes ranked by the full-text index.
type FullTextChannel struct {
	store driver.IndexSearcher
	index string
}

func NewFullTextChannel(store driver.IndexSearcher, index string) *FullTextChannel {
	return &FullTextChannel{store: store, index: index}
}

func (c *FullTextChannel) Kind() types.Channel { return types.ChannelFullText }

func (c *FullTextChannel) Retrieve(ctx context.Context, q *Query) (Output, error) {
	candidates, err := c.store.FullTextSearch(ctx, c.index, q.Raw, q.TopK)
	if err != nil {
		return Output{}, err
	}
	return Output{Candidates: tag(candidates, types.ChannelFullText, q.TopK)}, nil
}

// FuzzyLexicalChannel matches the normalized query against normalized node names.
type FuzzyLexicalChannel struct {
	store      driver.LexiconSource
	normalizer *normalize.Normalizer
}

func NewFuzzyLexicalChannel(store driver.LexiconSource, n *normalize.Normalizer) *FuzzyLexicalChannel {
	return &FuzzyLexicalChannel{store: store, normalizer: n}
}

func (c *FuzzyLexicalChannel) Kind() types.Channel { return types.ChannelFuzzy }

func (c *FuzzyLexicalChannel) Retrieve(ctx context.Context, q *Query) (Output, error) {
	if q.Normalized == "" {
		return Output{}, nil
	}
	entries, err := c.store.NodeLexicon(ctx)
	if err != nil {
		return Output{}, err
	}

	seen := make(map[string]struct{})
	var out []types.Candidate
	for _, e := range entries {
		if len(out) >= q.TopK {
			break
		}
		if _, ok := seen[e.NodeID]; ok {
			continue
		}
		if !LexicalMatch(q.Normalized, c.normalizer.Normalize(e.Name)) {
			continue
		}
		seen[e.NodeID] = struct{}{}
		out = append(out, types.Candidate{
			NodeID:      e.NodeID,
			Name:        e.Name,
			Description: e.Description,
			Score:       types.FixedMatchScore,
			Source:      types.ChannelFuzzy,
		})
	}
	return Output{Candidates: out}, nil
}

// KeywordChannel matches the normalized query against keywords attached to nodes.
type KeywordChannel struct {
	store      driver.LexiconSource
	normalizer *normalize.Normalizer
}

func NewKeywordChannel(store driver.LexiconSource, n *normalize.Normalizer) *KeywordChannel {
	return &KeywordChannel{store: store, normalizer: n}
}

func (c *KeywordChannel) Kind() types.Channel { return types.ChannelKeyword }

func (c *KeywordChannel) Retrieve(ctx context.Context, q *Query) (Output, error) {
	if q.Normalized == "" {
		return Output{}, nil
	}
	entries, err := c.store.KeywordLexicon(ctx)
	if err != nil {
		return Output{}, err
	}

	seen := make(map[string]struct{})
	var out []types.Candidate
	for _, e := range entries {
		if len(out) >= q.TopK {
			break
		}
		if _, ok := seen[e.NodeID]; ok {
			continue
		}
		if !LexicalMatch(q.Normalized, c.normalizer.Normalize(e.Keyword)) {
			continue
		}
		seen[e.NodeID] = struct{}{}
		out = append(out, types.Candidate{
			NodeID:      e.NodeID,
			Name:        e.Name,
			Description: e.Description,
			Score:       types.FixedMatchScore,
			Source:      types.ChannelKeyword,
		})
	}
	return Output{Candidates: out}, nil
}

// ProximityChannel returns edges whose endpoint names contain the raw query.
type ProximityChannel struct {
	store driver.Traverser
	limit int
}

func NewProximityChannel(store driver.Traverser, limit int) *ProximityChannel {
	return &ProximityChannel{store: store, limit: limit}
}

func (c *ProximityChannel) Kind() types.Channel { return types.ChannelProximity }

func (c *ProximityChannel) Retrieve(ctx context.Context, q *Query) (Output, error) {
	edges, err := c.store.ProximityEdges(ctx, q.Raw, c.limit)
	if err != nil {
		return Output{}, err
	}
	return Output{Triples: edges}, nil
}

// DocumentChannel returns document chunks nearest to the query embedding as
// (text, SIMPLE_RAG, "") triples.
type DocumentChannel struct {
	store driver.IndexSearcher
	index string
}

func NewDocumentChannel(store driver.IndexSearcher, index string) *DocumentChannel {
	return &DocumentChannel{store: store, index: index}
}

func (c *DocumentChannel) Kind() types.Channel { return types.ChannelDocument }

func (c *DocumentChannel) Retrieve(ctx context.Context, q *Query) (Output, error) {
	vec, err := q.Embedding(ctx)
	if err != nil {
		return Output{}, err
	}
	docs, err := c.store.DocumentSearch(ctx, c.index, vec, q.TopK)
	if err != nil {
		return Output{}, err
	}
	triples := make([]types.EdgeTriple, 0, len(docs))
	for _, d := range docs {
		if d.Text == "" {
			continue
		}
		t := types.EdgeTriple{Node1: d.Text, Relationship: types.RelationshipSimpleRAG}
		triples = append(triples, t.WithScore(d.Score))
	}
	return Output{Triples: triples}, nil
}

// LexicalMatch reports whether a normalized query matches a normalized name:
// the name contains the query, or they are within MaxFuzzyDistance-1 edits.
func LexicalMatch(query, name string) bool {
	if query == "" || name == "" {
		return false
	}
	if strings.Contains(name, query) {
		return true
	}
	return levenshtein.ComputeDistance(query, name) < MaxFuzzyDistance
}

func tag(candidates []types.Candidate, source types.Channel, limit int) []types.Candidate {
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := candidates[:0:0]
	for _, c := range candidates {
		if c.Validate() != nil {
			continue
		}
		c.Source = source
		out = append(out, c)
	}
	return out
}

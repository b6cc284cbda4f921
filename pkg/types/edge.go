package types

const (
	// RelationshipSimilar marks a candidate that produced no graph context.
	RelationshipSimilar = "similar"
	// RelationshipSimpleRAG marks a document chunk surfaced by the document channel.
	RelationshipSimpleRAG = "SIMPLE_RAG"
)

// EdgeTriple is a directed relationship fact, the unit handed to the answer generator.
type EdgeTriple struct {
	Node1        string   `json:"node_1"`
	Relationship string   `json:"relationship"`
	Node2        string   `json:"node_2"`
	Score        *float64 `json:"score,omitempty"`

	// Depth is the hop distance from the expansion seed, zero when not produced by traversal.
	Depth int `json:"-"`
	// Seed is the node ID the edge was reached from.
	Seed string `json:"-"`
}

// IdentityKey is the deduplication key of an EdgeTriple.
type IdentityKey struct {
	Node1        string
	Relationship string
	Node2        string
}

// Key returns the identity key of the triple. Scores do not participate.
func (e EdgeTriple) Key() IdentityKey {
	return IdentityKey{Node1: e.Node1, Relationship: e.Relationship, Node2: e.Node2}
}

// WithScore returns a copy of the triple carrying score.
func (e EdgeTriple) WithScore(score float64) EdgeTriple {
	e.Score = &score
	return e
}

// ScoreOr returns the triple's score, or fallback when it has none.
func (e EdgeTriple) ScoreOr(fallback float64) float64 {
	if e.Score == nil {
		return fallback
	}
	return *e.Score
}

// ResultSet is the ordered output of a retrieval, capped at TopK.
type ResultSet struct {
	Query   string       `json:"query"`
	TopK    int          `json:"top_k"`
	Triples []EdgeTriple `json:"results"`
}

// Len returns the number of triples in the set.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Triples)
}

// Empty reports whether the result set holds no triples.
func (r *ResultSet) Empty() bool {
	return r.Len() == 0
}

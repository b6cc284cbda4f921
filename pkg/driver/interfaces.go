package driver

import (
	"context"

	"github.com/soundprediction/hybridrag/pkg/types"
)

// GraphProvider represents the type of graph store.
type GraphProvider string

const (
	GraphProviderNeo4j  GraphProvider = "neo4j"
	GraphProviderMemory GraphProvider = "memory"
)

// LexiconEntry is a named node considered by the fuzzy lexical channel.
type LexiconEntry struct {
	NodeID      string
	Name        string
	Description string
}

// KeywordEntry links a keyword to the node that carries it.
type KeywordEntry struct {
	LexiconEntry
	Keyword string
}

// Document is a text chunk from the vector-indexed document store.
type Document struct {
	ID    string
	Text  string
	Score float64
}

// IndexSearcher answers nearest-neighbour and full-text queries over named indexes.
type IndexSearcher interface {
	// VectorSearch returns up to limit nodes nearest to embedding, most similar first.
	VectorSearch(ctx context.Context, index string, embedding []float32, limit int) ([]types.Candidate, error)
	// FullTextSearch returns up to limit nodes ranked by index relevance.
	FullTextSearch(ctx context.Context, index, query string, limit int) ([]types.Candidate, error)
	// DocumentSearch returns up to limit document chunks nearest to embedding.
	DocumentSearch(ctx context.Context, index string, embedding []float32, limit int) ([]Document, error)
}

// LexiconSource exposes the vocabularies the lexical channels match against.
type LexiconSource interface {
	// NodeLexicon returns every named node, ordered by name.
	NodeLexicon(ctx context.Context) ([]LexiconEntry, error)
	// KeywordLexicon returns every (node, keyword) pair linked by the keyword relationship.
	KeywordLexicon(ctx context.Context) ([]KeywordEntry, error)
}

// Traverser reads edges around nodes.
type Traverser interface {
	// Expand returns distinct edges within maxHops of the seed in either
	// direction, nearest first, at most limit of them.
	Expand(ctx context.Context, seedID string, maxHops, limit int) ([]types.EdgeTriple, error)
	// ProximityEdges returns directed edges where either endpoint name contains query.
	ProximityEdges(ctx context.Context, query string, limit int) ([]types.EdgeTriple, error)
	// FindNode looks a node up by exact name.
	FindNode(ctx context.Context, name string) (*types.Candidate, error)
}

// CatalogSource lists browsable node names.
type CatalogSource interface {
	// CatalogNames returns the distinct names of catalog-label nodes, ordered by name.
	CatalogNames(ctx context.Context) ([]string, error)
	// Topics returns the distinct topic names, ordered by name.
	Topics(ctx context.Context) ([]string, error)
	// NodesByTopic returns catalog names linked to topic. An empty topic returns every catalog name.
	NodesByTopic(ctx context.Context, topic string) ([]string, error)
}

// GraphStore is the read-only view of the knowledge base used on the query path.
type GraphStore interface {
	IndexSearcher
	LexiconSource
	Traverser
	CatalogSource

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
	// Provider returns the type of graph store.
	Provider() GraphProvider
	// Close releases all resources held by the store.
	Close(ctx context.Context) error
}

package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/soundprediction/hybridrag/pkg/types"
)

const (
	// MaxTraversalHops bounds Expand regardless of the caller's request.
	MaxTraversalHops = 3

	neo4jBackend = "neo4j"
)

// Neo4jDriver implements GraphStore for Neo4j databases.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
	schema   Schema
}

// NewNeo4jDriver creates a new Neo4j driver instance.
func NewNeo4jDriver(uri, username, password, database string, schema Schema) (*Neo4jDriver, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""), func(c *config.Config) {
		// the per-call context deadline bounds the request; keep driver retries short
		c.MaxTransactionRetryTime = 2 * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}

	return &Neo4jDriver{
		client:   driver,
		database: database,
		schema:   schema,
	}, nil
}

// read runs a parameterized read query and collects its records.
func (n *Neo4jDriver) read(ctx context.Context, query string, params map[string]any) ([]*db.Record, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: n.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, classifyError(err)
	}

	records, ok := AsRecordSlice(result)
	if !ok {
		return nil, NewTypeConversionError("[]*db.Record", fmt.Sprintf("%T", result), "")
	}
	return records, nil
}

// classifyError maps driver failures onto the retrieval error taxonomy.
func classifyError(err error) error {
	switch {
	case err == nil:
		return nil
	case neo4j.IsConnectivityError(err):
		return types.NewBackendUnreachableError(neo4jBackend, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), neo4j.IsRetryable(err):
		return types.NewTransientBackendError(neo4jBackend, err)
	default:
		return err
	}
}

func toFloat64s(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func candidatesFromRecords(records []*db.Record, source types.Channel) ([]types.Candidate, error) {
	candidates := make([]types.Candidate, 0, len(records))
	for _, record := range records {
		id, err := RecordString(record, "id")
		if err != nil {
			return nil, err
		}
		name, err := RecordString(record, "name")
		if err != nil {
			return nil, err
		}
		description, err := RecordString(record, "description")
		if err != nil {
			return nil, err
		}
		score, err := RecordFloat(record, "score")
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, types.Candidate{
			NodeID:      id,
			Name:        name,
			Description: description,
			Score:       score,
			Source:      source,
		})
	}
	return candidates, nil
}

// VectorSearch queries a native vector index.
func (n *Neo4jDriver) VectorSearch(ctx context.Context, index string, embedding []float32, limit int) ([]types.Candidate, error) {
	if len(embedding) == 0 || limit <= 0 {
		return nil, nil
	}

	query := `
		CALL db.index.vector.queryNodes($index, $limit, $embedding)
		YIELD node, score
		WHERE node.name IS NOT NULL
		RETURN elementId(node) AS id, node.name AS name,
		       coalesce(node.description, '') AS description, score
		ORDER BY score DESC
	`
	records, err := n.read(ctx, query, map[string]any{
		"index":     index,
		"limit":     limit,
		"embedding": toFloat64s(embedding),
	})
	if err != nil {
		return nil, fmt.Errorf("vector search on %s: %w", index, err)
	}
	return candidatesFromRecords(records, types.ChannelVector)
}

// FullTextSearch queries a native full-text index. Lucene operators in the
// query are escaped so the text is matched literally.
func (n *Neo4jDriver) FullTextSearch(ctx context.Context, index, query string, limit int) ([]types.Candidate, error) {
	sanitized := EscapeLucene(strings.TrimSpace(query))
	if sanitized == "" || limit <= 0 {
		return nil, nil
	}

	cypher := `
		CALL db.index.fulltext.queryNodes($index, $query, {limit: $limit})
		YIELD node, score
		WHERE node.name IS NOT NULL
		RETURN elementId(node) AS id, node.name AS name,
		       coalesce(node.description, '') AS description, score
		ORDER BY score DESC
	`
	records, err := n.read(ctx, cypher, map[string]any{
		"index": index,
		"query": sanitized,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("fulltext search on %s: %w", index, err)
	}
	return candidatesFromRecords(records, types.ChannelFullText)
}

// DocumentSearch queries the vector index over document chunks.
func (n *Neo4jDriver) DocumentSearch(ctx context.Context, index string, embedding []float32, limit int) ([]Document, error) {
	if len(embedding) == 0 || limit <= 0 {
		return nil, nil
	}

	query := `
		CALL db.index.vector.queryNodes($index, $limit, $embedding)
		YIELD node, score
		RETURN elementId(node) AS id, coalesce(node.text, node.content, '') AS text, score
		ORDER BY score DESC
	`
	records, err := n.read(ctx, query, map[string]any{
		"index":     index,
		"limit":     limit,
		"embedding": toFloat64s(embedding),
	})
	if err != nil {
		return nil, fmt.Errorf("document search on %s: %w", index, err)
	}

	docs := make([]Document, 0, len(records))
	for _, record := range records {
		id, err := RecordString(record, "id")
		if err != nil {
			return nil, err
		}
		text, err := RecordString(record, "text")
		if err != nil {
			return nil, err
		}
		score, err := RecordFloat(record, "score")
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		docs = append(docs, Document{ID: id, Text: text, Score: score})
	}
	return docs, nil
}

// NodeLexicon returns every named node.
func (n *Neo4jDriver) NodeLexicon(ctx context.Context) ([]LexiconEntry, error) {
	query := `
		MATCH (n)
		WHERE n.name IS NOT NULL
		RETURN elementId(n) AS id, n.name AS name, coalesce(n.description, '') AS description
		ORDER BY n.name
	`
	records, err := n.read(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("node lexicon: %w", err)
	}

	entries := make([]LexiconEntry, 0, len(records))
	for _, record := range records {
		entry, err := lexiconEntryFromRecord(record)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// KeywordLexicon returns every node-keyword pair.
func (n *Neo4jDriver) KeywordLexicon(ctx context.Context) ([]KeywordEntry, error) {
	query := fmt.Sprintf(`
		MATCH (n)-[:%s]->(k:%s)
		WHERE n.name IS NOT NULL AND k.name IS NOT NULL
		RETURN elementId(n) AS id, n.name AS name,
		       coalesce(n.description, '') AS description, k.name AS keyword
		ORDER BY n.name, k.name
	`, quoteIdentifier(n.schema.KeywordRelationship), quoteIdentifier(n.schema.KeywordLabel))

	records, err := n.read(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("keyword lexicon: %w", err)
	}

	entries := make([]KeywordEntry, 0, len(records))
	for _, record := range records {
		entry, err := lexiconEntryFromRecord(record)
		if err != nil {
			return nil, err
		}
		keyword, err := RecordString(record, "keyword")
		if err != nil {
			return nil, err
		}
		entries = append(entries, KeywordEntry{LexiconEntry: entry, Keyword: keyword})
	}
	return entries, nil
}

func lexiconEntryFromRecord(record *db.Record) (LexiconEntry, error) {
	id, err := RecordString(record, "id")
	if err != nil {
		return LexiconEntry{}, err
	}
	name, err := RecordString(record, "name")
	if err != nil {
		return LexiconEntry{}, err
	}
	description, err := RecordString(record, "description")
	if err != nil {
		return LexiconEntry{}, err
	}
	return LexiconEntry{NodeID: id, Name: name, Description: description}, nil
}

// Expand returns the distinct edges within maxHops of the seed, nearest first.
func (n *Neo4jDriver) Expand(ctx context.Context, seedID string, maxHops, limit int) ([]types.EdgeTriple, error) {
	if limit <= 0 {
		return nil, nil
	}
	if maxHops < 1 || maxHops > MaxTraversalHops {
		maxHops = MaxTraversalHops
	}

	// variable-length bounds cannot be parameterized; maxHops is a clamped integer
	query := fmt.Sprintf(`
		MATCH (seed)
		WHERE elementId(seed) = $seedId
		MATCH p = (seed)-[*1..%d]-()
		UNWIND range(0, length(p) - 1) AS i
		WITH relationships(p)[i] AS r, i + 1 AS depth
		WITH r, min(depth) AS depth
		WITH startNode(r) AS a, r, endNode(r) AS b, depth
		WHERE a.name IS NOT NULL AND b.name IS NOT NULL
		RETURN a.name AS node1, type(r) AS relationship, b.name AS node2, depth
		ORDER BY depth, node1, relationship, node2
		LIMIT $limit
	`, maxHops)

	records, err := n.read(ctx, query, map[string]any{
		"seedId": seedID,
		"limit":  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", seedID, err)
	}

	edges := make([]types.EdgeTriple, 0, len(records))
	for _, record := range records {
		edge, err := edgeFromRecord(record)
		if err != nil {
			return nil, err
		}
		depth, err := RecordInt(record, "depth")
		if err != nil {
			return nil, err
		}
		edge.Depth = int(depth)
		edge.Seed = seedID
		edges = append(edges, edge)
	}
	return edges, nil
}

// ProximityEdges returns edges whose endpoint names contain query.
func (n *Neo4jDriver) ProximityEdges(ctx context.Context, query string, limit int) ([]types.EdgeTriple, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil, nil
	}

	cypher := `
		MATCH (n)-[r]->(m)
		WHERE n.name CONTAINS $query OR m.name CONTAINS $query
		RETURN n.name AS node1, type(r) AS relationship, m.name AS node2
		ORDER BY node1, relationship, node2
		LIMIT $limit
	`
	records, err := n.read(ctx, cypher, map[string]any{
		"query": query,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("proximity edges: %w", err)
	}

	edges := make([]types.EdgeTriple, 0, len(records))
	for _, record := range records {
		edge, err := edgeFromRecord(record)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

func edgeFromRecord(record *db.Record) (types.EdgeTriple, error) {
	node1, err := RecordString(record, "node1")
	if err != nil {
		return types.EdgeTriple{}, err
	}
	relationship, err := RecordString(record, "relationship")
	if err != nil {
		return types.EdgeTriple{}, err
	}
	node2, err := RecordString(record, "node2")
	if err != nil {
		return types.EdgeTriple{}, err
	}
	return types.EdgeTriple{Node1: node1, Relationship: relationship, Node2: node2}, nil
}

// FindNode looks a node up by exact name.
func (n *Neo4jDriver) FindNode(ctx context.Context, name string) (*types.Candidate, error) {
	query := `
		MATCH (n)
		WHERE n.name = $name
		RETURN elementId(n) AS id, n.name AS name, coalesce(n.description, '') AS description
		LIMIT 1
	`
	records, err := n.read(ctx, query, map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("find node: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}

	entry, err := lexiconEntryFromRecord(records[0])
	if err != nil {
		return nil, err
	}
	return &types.Candidate{NodeID: entry.NodeID, Name: entry.Name, Description: entry.Description}, nil
}

func (n *Neo4jDriver) names(ctx context.Context, query string, params map[string]any) ([]string, error) {
	records, err := n.read(ctx, query, params)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for _, record := range records {
		name, err := RecordString(record, "name")
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// CatalogNames returns the distinct catalog node names.
func (n *Neo4jDriver) CatalogNames(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`
		MATCH (n:%s)
		WHERE n.name IS NOT NULL
		RETURN DISTINCT n.name AS name
		ORDER BY name
	`, quoteIdentifier(n.schema.CatalogLabel))

	names, err := n.names(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog names: %w", err)
	}
	return names, nil
}

// Topics returns the distinct topic names.
func (n *Neo4jDriver) Topics(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`
		MATCH (t:%s)
		WHERE t.name IS NOT NULL
		RETURN DISTINCT t.name AS name
		ORDER BY name
	`, quoteIdentifier(n.schema.TopicLabel))

	names, err := n.names(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("topics: %w", err)
	}
	return names, nil
}

// NodesByTopic returns catalog names linked to topic.
func (n *Neo4jDriver) NodesByTopic(ctx context.Context, topic string) ([]string, error) {
	if topic == "" {
		return n.CatalogNames(ctx)
	}

	query := fmt.Sprintf(`
		MATCH (n:%s)-[:%s]->(t:%s {name: $topic})
		WHERE n.name IS NOT NULL
		RETURN DISTINCT n.name AS name
		ORDER BY name
	`, quoteIdentifier(n.schema.CatalogLabel), quoteIdentifier(n.schema.TopicRelationship), quoteIdentifier(n.schema.TopicLabel))

	names, err := n.names(ctx, query, map[string]any{"topic": topic})
	if err != nil {
		return nil, fmt.Errorf("nodes by topic: %w", err)
	}
	return names, nil
}

// Ping verifies connectivity.
func (n *Neo4jDriver) Ping(ctx context.Context) error {
	if err := n.client.VerifyConnectivity(ctx); err != nil {
		return types.NewBackendUnreachableError(neo4jBackend, err)
	}
	return nil
}

// Provider returns the type of graph store.
func (n *Neo4jDriver) Provider() GraphProvider {
	return GraphProviderNeo4j
}

// Close closes the underlying driver.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

var luceneEscaper = strings.NewReplacer(
	`\`, `\\`,
	"+", `\+`,
	"-", `\-`,
	"&&", `\&&`,
	"||", `\||`,
	"!", `\!`,
	"(", `\(`,
	")", `\)`,
	"{", `\{`,
	"}", `\}`,
	"[", `\[`,
	"]", `\]`,
	"^", `\^`,
	"~", `\~`,
	"*", `\*`,
	"?", `\?`,
	":", `\:`,
	`"`, `\"`,
	"/", `\/`,
)

// EscapeLucene escapes Lucene query operators so text is searched literally.
func EscapeLucene(query string) string {
	return luceneEscaper.Replace(query)
}

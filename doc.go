// Package hybridrag provides hybrid retrieval over a procedure knowledge graph.
//
// A query is answered by several independent channels (vector similarity,
// full-text relevance, fuzzy name matching, keyword matching, graph
// proximity and document chunks). The nodes they surface are expanded into
// the relationships around them, and the resulting facts are merged into a
// short, deduplicated list of (node_1, relationship, node_2) triples. When
// nothing matches, the client offers "did you mean" suggestions from the
// catalog of known node names.
//
// # Basic Usage
//
//	store, err := driver.NewNeo4jDriver("bolt://localhost:7687", "neo4j", "password", "neo4j", driver.DefaultSchema())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	emb := embedder.NewOpenAIEmbedder(os.Getenv("OPENAI_API_KEY"), embedder.Config{Model: "text-embedding-3-small"})
//
//	client, err := hybridrag.NewClient(store, emb, nil, slog.Default())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
// # Retrieval
//
//	result, err := client.Retrieve(ctx, "πιστοποιητικό γέννησης", 5)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, t := range result.Triples {
//		fmt.Printf("%s -[%s]-> %s\n", t.Node1, t.Relationship, t.Node2)
//	}
//
// # Lookup
//
// Lookup never fails. It returns results, or suggestions with the message
// "no information found", or the message "no query" for a blank query:
//
//	outcome := client.Lookup(ctx, "διαβατηριο", 5)
//
// # Error Handling
//
// Errors wrap the sentinels in pkg/types:
//
//   - types.ErrInvalidQuery: the query was empty after trimming
//   - types.ErrBackendUnreachable: the graph store could not be reached
//   - types.ErrAllChannelsFailed: every retrieval channel failed
//
// A single failing channel is not an error; it contributes no results.
//
// # Architecture
//
//   - pkg/driver: graph store abstraction (Neo4j, in-memory fixture store)
//   - pkg/embedder: embedding clients with retry, circuit breaker and caching
//   - pkg/normalize: query normalization for lexical matching
//   - pkg/search: channels, graph expansion, merging and suggestions
//   - pkg/catalog: cached node names for suggestions
//   - pkg/telemetry: parquet error logs and query audit rows
package hybridrag

// Package search implements hybrid retrieval over the procedure knowledge graph.
//
// A Retriever fans a query out to independent channels, expands the nodes
// they surface into edge triples, and merges the triples into a ResultSet.
//
// # Channels
//
// Candidate channels return graph nodes:
//   - VectorChannel: nearest neighbours of the raw query's embedding
//   - FullTextChannel: full-text relevance on the raw query
//   - FuzzyLexicalChannel: edit distance < 4 or substring match on normalized names
//   - KeywordChannel: the same rule against keywords attached to nodes
//
// Triple channels return facts directly:
//   - ProximityChannel: edges whose endpoint names contain the raw query
//   - DocumentChannel: document chunks nearest to the query embedding
//
// # Pipeline
//
//	query -> normalize -> channels (concurrent) -> barrier -> Expander -> Merge -> ResultSet
//
// Each channel call has its own timeout. A channel that fails contributes
// nothing; the request fails only when the graph store is unreachable or
// every channel failed.
//
// # Merging
//
// Merge walks channel outputs in fixed priority order (vector, fulltext,
// proximity, fuzzy, keyword, document) and keeps the first occurrence of each
// (node1, relationship, node2) key until top_k triples are collected. Scores
// from different channels are never compared.
//
// # Suggestions
//
// When a retrieval comes back empty, Suggest ranks catalog names by an
// indel similarity ratio against the raw query and returns at most five.
//
// # Usage
//
//	retriever, err := search.NewRetriever(store, embedderClient, search.DefaultOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	defer retriever.Close()
//
//	result, report, err := retriever.Retrieve(ctx, "πιστοποιητικό γέννησης", 5)
package search

// Package types defines the core data types shared by the hybridrag retrieval core.
//
// This package contains the fundamental types used throughout hybridrag:
//   - Candidate: a graph node surfaced by one retrieval channel
//   - EdgeTriple: a (node1, relationship, node2) fact returned to the answer generator
//   - ResultSet: the ordered, deduplicated, top_k-capped output of a retrieval
//   - Outcome: the consumer-facing response combining results and suggestions
//
// # Channels
//
// Every candidate records the channel that produced it:
//   - ChannelVector: nearest-neighbour lookup over node embeddings
//   - ChannelFullText: inverted full-text index over names and descriptions
//   - ChannelProximity: edges whose endpoints contain the raw query
//   - ChannelFuzzy: edit-distance or substring match on normalized names
//   - ChannelKeyword: the same rule applied to the HAS_KEYWORD vocabulary
//   - ChannelDocument: nearest-neighbour lookup over document chunks
//
// The declaration order of the channels is the merge priority order.
//
// # Errors
//
// Backend failures are classified into TransientBackendError,
// InvalidQueryError and BackendUnreachableError. Use errors.Is with the
// matching sentinel:
//
//	if errors.Is(err, types.ErrBackendUnreachable) {
//	    // surface a retrieval failure
//	}
package types

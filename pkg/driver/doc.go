// Package driver provides the graph store implementations behind hybridrag's retrieval channels.
//
// This package defines the GraphStore interface and provides two
// implementations:
//   - Neo4j: vector and full-text indexes queried through db.index procedures
//   - Memory: a YAML fixture held in process, with a bleve full-text index
//     and brute-force cosine search, used for tests and offline demos
//
// # Usage
//
//	store, err := driver.NewNeo4jDriver(uri, username, password, database, driver.DefaultSchema())
//	if err != nil {
//	    return err
//	}
//	defer store.Close(ctx)
//
//	candidates, err := store.FullTextSearch(ctx, "fulltext_index", "πιστοποιητικό γέννησης", 5)
//
// # Query Safety
//
// Every value that originates from a caller is sent as a bind parameter.
// Labels and relationship types cannot be parameterized in Cypher, so they
// come only from Schema, which ValidateIdentifier checks before any query is
// built.
//
// # Errors
//
// Connectivity failures are reported as *types.BackendUnreachableError;
// timeouts and retryable database errors as *types.TransientBackendError.
//
// # Type Helpers
//
// The package provides safe type conversion helpers in type_helpers.go for
// converting database results to Go types without panicking on type assertion
// failures.
package driver

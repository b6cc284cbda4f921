// Package embedder provides text embedding clients for the vector and document channels.
//
// This package defines the Client interface and provides implementations for
// OpenAI-compatible embedding APIs and for local models through
// go-embedeverything.
//
// # Supported Providers
//
//   - OpenAI: text-embedding-3-small, text-embedding-3-large, text-embedding-ada-002
//   - EmbedEverything: local sentence-transformer models, no network access
//
// # Wrappers
//
// Clients compose. New builds the chain from configuration:
//
//	CachedClient -> BreakerClient -> RetryClient -> provider
//
// Failures that a channel should absorb (timeouts, 429s, 5xx, an open
// breaker) are returned as *types.TransientBackendError.
//
// # Usage
//
//	client := embedder.NewOpenAIEmbedder(apiKey, embedder.Config{
//	    Model: "text-embedding-3-small",
//	})
//	vec, err := client.EmbedSingle(ctx, "πιστοποιητικό γέννησης")
package embedder

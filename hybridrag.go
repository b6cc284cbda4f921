package hybridrag

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soundprediction/hybridrag/pkg/catalog"
	"github.com/soundprediction/hybridrag/pkg/driver"
	"github.com/soundprediction/hybridrag/pkg/embedder"
	"github.com/soundprediction/hybridrag/pkg/search"
	"github.com/soundprediction/hybridrag/pkg/telemetry"
	"github.com/soundprediction/hybridrag/pkg/types"
)

// Retriever answers queries with ranked relationship triples.
type Retriever interface {
	// Retrieve returns at most topK distinct triples relevant to query.
	// A topK of zero or less uses the configured default.
	Retrieve(ctx context.Context, query string, topK int) (*types.ResultSet, error)

	// Suggest returns up to limit catalog names similar to query.
	Suggest(ctx context.Context, query string, limit int) ([]types.Suggestion, error)

	// Lookup combines Retrieve and Suggest into a consumer-ready outcome. It never fails.
	Lookup(ctx context.Context, query string, topK int) *types.Outcome
}

// GraphBrowser exposes read-only navigation of the knowledge graph.
type GraphBrowser interface {
	// Neighborhood returns the edges around the node with the given name.
	Neighborhood(ctx context.Context, name string) ([]types.EdgeTriple, error)

	// Topics returns the topic names.
	Topics(ctx context.Context) ([]string, error)

	// NodesByTopic returns the catalog names linked to topic.
	NodesByTopic(ctx context.Context, topic string) ([]string, error)
}

// HybridRAG is the full client surface.
type HybridRAG interface {
	Retriever
	GraphBrowser

	// RefreshCatalog reloads the suggestion catalog and returns its size.
	RefreshCatalog(ctx context.Context) (int, error)

	// Ping checks that the graph store is reachable.
	Ping(ctx context.Context) error

	// Close releases the client and everything it owns.
	Close(ctx context.Context) error
}

var _ HybridRAG = (*Client)(nil)

// Config holds configuration for the client.
type Config struct {
	// Retrieval configures channels, expansion and merging.
	Retrieval search.Options
	// Recorder receives one audit row per retrieval when set.
	Recorder *telemetry.QueryRecorder
}

// NewDefaultConfig returns a config with default retrieval options and no recorder.
func NewDefaultConfig() *Config {
	return &Config{Retrieval: search.DefaultOptions()}
}

// Client is the main implementation of HybridRAG.
type Client struct {
	store     driver.GraphStore
	embedder  embedder.Client
	retriever *search.Retriever
	catalog   *catalog.NodeCatalog
	recorder  *telemetry.QueryRecorder
	config    *Config
	logger    *slog.Logger
}

// NewClient creates a client over store. embedderClient may be nil, which
// disables the vector and document channels.
func NewClient(store driver.GraphStore, embedderClient embedder.Client, config *Config, logger *slog.Logger) (*Client, error) {
	if store == nil {
		return nil, errors.New("graph store is required")
	}
	if config == nil {
		config = NewDefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	retriever, err := search.NewRetriever(store, embedderClient, config.Retrieval, logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:     store,
		embedder:  embedderClient,
		retriever: retriever,
		catalog:   catalog.New(store, logger),
		recorder:  config.Recorder,
		config:    config,
		logger:    logger,
	}, nil
}

// GetCatalog returns the node catalog.
func (c *Client) GetCatalog() *catalog.NodeCatalog {
	return c.catalog
}

// Ping checks that the graph store is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close releases the retriever, flushes telemetry and closes the embedder and store.
func (c *Client) Close(ctx context.Context) error {
	c.retriever.Close()

	var errs []error
	if c.recorder != nil {
		if err := c.recorder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.store.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Channels returns the active retrieval channels in merge priority order.
func (c *Client) Channels() []types.Channel {
	return c.retriever.Channels()
}

package hybridrag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/soundprediction/hybridrag"
	"github.com/soundprediction/hybridrag/pkg/config"
	"github.com/soundprediction/hybridrag/pkg/driver"
	"github.com/soundprediction/hybridrag/pkg/embedder"
	"github.com/soundprediction/hybridrag/pkg/logger"
	"github.com/soundprediction/hybridrag/pkg/search"
	"github.com/soundprediction/hybridrag/pkg/telemetry"
	"github.com/soundprediction/hybridrag/pkg/types"
)

// app bundles what a command needs and how to release it.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *hybridrag.Client
	closers []func() error
}

func (r *app) Close(ctx context.Context) {
	if r.client != nil {
		if err := r.client.Close(ctx); err != nil {
			r.logger.Warn("Failed to close client", "error", err)
		}
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		_ = r.closers[i]()
	}
}

// bootstrap loads configuration and builds the logger, graph store, embedder and client.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	rt := &app{cfg: cfg}
	rt.logger, err = newLogger(cfg, rt)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(rt.logger)

	store, err := openStore(cfg)
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}

	embedderClient, err := embedder.NewFromConfig(cfg.Embedding, cfg.CircuitBreaker, rt.logger)
	if err != nil {
		_ = store.Close(ctx)
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	clientConfig := &hybridrag.Config{Retrieval: retrievalOptions(cfg.Retrieval)}
	if cfg.Telemetry.Enabled {
		recorder, err := telemetry.NewQueryRecorder(cfg.Telemetry.ParquetPath, cfg.Telemetry.BatchSize)
		if err != nil {
			rt.logger.Warn("Query telemetry disabled", "error", err)
		} else {
			clientConfig.Recorder = recorder
		}
	}

	rt.client, err = hybridrag.NewClient(store, embedderClient, clientConfig, rt.logger)
	if err != nil {
		if embedderClient != nil {
			_ = embedderClient.Close()
		}
		_ = store.Close(ctx)
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	rt.logger.Debug("Client initialized",
		"driver", cfg.Database.Driver,
		"embedding_provider", cfg.Embedding.Provider,
		"channels", len(rt.client.Channels()))
	return rt, nil
}

func newLogger(cfg *config.Config, rt *app) (*slog.Logger, error) {
	handler := logger.NewHandler(os.Stderr, cfg.Log.Format, logger.ParseLevel(cfg.Log.Level))
	if !cfg.Telemetry.Enabled {
		return slog.New(handler), nil
	}

	parquetHandler, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath, cfg.Telemetry.BatchSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize error tracking: %v\n", err)
		return slog.New(handler), nil
	}
	rt.closers = append(rt.closers, parquetHandler.Close)
	return slog.New(parquetHandler), nil
}

func openStore(cfg *config.Config) (driver.GraphStore, error) {
	schema := driver.Schema{
		CatalogLabel:        cfg.Retrieval.CatalogLabel,
		TopicLabel:          cfg.Retrieval.TopicLabel,
		KeywordLabel:        cfg.Retrieval.KeywordLabel,
		KeywordRelationship: cfg.Retrieval.KeywordRelationship,
		TopicRelationship:   cfg.Retrieval.TopicRelationship,
	}

	switch strings.ToLower(cfg.Database.Driver) {
	case "neo4j":
		store, err := driver.NewNeo4jDriver(cfg.Database.URI, cfg.Database.Username, cfg.Database.Password, cfg.Database.Database, schema)
		if err != nil {
			return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
		}
		return store, nil
	case "memory":
		if cfg.Database.Fixture == "" {
			return nil, errors.New("database.fixture is required for the memory driver")
		}
		store, err := driver.NewMemoryDriverFromFile(cfg.Database.Fixture, schema)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory driver: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

func retrievalOptions(r config.RetrievalConfig) search.Options {
	return search.Options{
		TopK:             r.TopK,
		Timeout:          r.Timeout,
		ChannelTimeout:   r.ChannelTimeout,
		MaxHops:          r.MaxHops,
		MaxEdges:         r.MaxEdges,
		ProximityLimit:   r.ProximityLimit,
		ExpansionWorkers: r.ExpansionWorkers,
		VectorIndex:      r.VectorIndex,
		FullTextIndex:    r.FullTextIndex,
		DocumentIndex:    r.DocumentIndex,
	}
}

// withRuntime runs fn with a bootstrapped app, tagging the context as a CLI request.
func withRuntime(fn func(ctx context.Context, rt *app) error) error {
	ctx := context.WithValue(context.Background(), types.ContextKeyRequestSource, "cli")
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())
	return fn(ctx, rt)
}

package embedder

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soundprediction/hybridrag/pkg/config"
)

// NewFromConfig builds the configured provider wrapped with retry, circuit
// breaker and cache layers. Provider "none" returns a nil Client, which
// disables the vector and document channels.
func NewFromConfig(cfg config.EmbeddingConfig, cbCfg config.CircuitBreakerConfig, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	base := Config{
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		Dimensions: cfg.Dimensions,
		Timeout:    cfg.Timeout,
	}

	var client Client
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client = NewOpenAIEmbedder(cfg.APIKey, base)
	case "embedeverything":
		local, err := NewEmbedEverythingClient(base)
		if err != nil {
			return nil, err
		}
		client = local
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	if cfg.Retries > 0 {
		retry := DefaultRetryConfig()
		retry.MaxRetries = cfg.Retries
		client = NewRetryClient(client, retry)
	}

	if cbCfg.Enabled {
		client = NewBreakerClient(client, BreakerSettings{
			MaxRequests:      cbCfg.MaxRequests,
			Interval:         time.Duration(cbCfg.Interval) * time.Second,
			Timeout:          time.Duration(cbCfg.Timeout) * time.Second,
			ReadyToTripRatio: cbCfg.ReadyToTripRatio,
			MinRequests:      cbCfg.MinRequests,
		}, "embedder-"+cfg.Provider, logger)
	}

	switch strings.ToLower(cfg.Cache.Type) {
	case "lru":
		client = NewCachedClient(client, NewLRUCache(cfg.Cache.Size, cfg.Cache.TTL), cfg.Model)
	case "badger":
		cache, err := OpenBadgerCache(cfg.Cache.Path, cfg.Cache.TTL, logger)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		client = NewCachedClient(client, cache, cfg.Model)
	}

	return client, nil
}

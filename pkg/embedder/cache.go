package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache stores query embeddings keyed by model and text.
type Cache interface {
	Get(key string) ([]float32, bool)
	Set(key string, vec []float32)
	Close() error
}

// CacheKey derives the cache key for text embedded with model.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// LRUCache is an in-process embedding cache with size and age bounds.
type LRUCache struct {
	lru *expirable.LRU[string, []float32]
}

// NewLRUCache creates an LRU cache holding at most size vectors for ttl.
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if size <= 0 {
		size = 1024
	}
	return &LRUCache{lru: expirable.NewLRU[string, []float32](size, nil, ttl)}
}

func (c *LRUCache) Get(key string) ([]float32, bool) {
	return c.lru.Get(key)
}

func (c *LRUCache) Set(key string, vec []float32) {
	c.lru.Add(key, vec)
}

func (c *LRUCache) Close() error {
	c.lru.Purge()
	return nil
}

// Len returns the number of cached vectors.
func (c *LRUCache) Len() int {
	return c.lru.Len()
}

// BadgerCache persists query embeddings across restarts.
type BadgerCache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBadgerCache opens a badger database at path. An empty path opens an in-memory store.
func OpenBadgerCache(path string, ttl time.Duration, logger *slog.Logger) (*BadgerCache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create embedding cache directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}
	return &BadgerCache{db: db, ttl: ttl, logger: logger}, nil
}

func (c *BadgerCache) Get(key string) ([]float32, bool) {
	var vec []float32
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			vec = decodeVector(val)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn("Embedding cache read failed", "error", err)
		}
		return nil, false
	}
	return vec, vec != nil
}

func (c *BadgerCache) Set(key string, vec []float32) {
	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), encodeVector(vec))
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.logger.Warn("Embedding cache write failed", "error", err)
	}
}

func (c *BadgerCache) Close() error {
	return c.db.Close()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec
}

// CachedClient serves repeated texts from a Cache and embeds only the misses.
type CachedClient struct {
	client Client
	cache  Cache
	model  string
}

// NewCachedClient wraps client with cache. model namespaces the keys.
func NewCachedClient(client Client, cache Cache, model string) *CachedClient {
	return &CachedClient{client: client, cache: cache, model: model}
}

// Embed implements Client
func (c *CachedClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	for i, text := range texts {
		if vec, ok := c.cache.Get(CacheKey(c.model, text)); ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	embeddings, err := c.client.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(missTexts) {
		return nil, fmt.Errorf("%w: got %d for %d texts", ErrNoEmbeddings, len(embeddings), len(missTexts))
	}
	for j, vec := range embeddings {
		out[missIdx[j]] = vec
		c.cache.Set(CacheKey(c.model, missTexts[j]), vec)
	}
	return out, nil
}

// EmbedSingle implements Client
func (c *CachedClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return embedSingle(ctx, c, text)
}

// Dimensions implements Client
func (c *CachedClient) Dimensions() int {
	return c.client.Dimensions()
}

// Close closes the cache and the wrapped client.
func (c *CachedClient) Close() error {
	return errors.Join(c.cache.Close(), c.client.Close())
}

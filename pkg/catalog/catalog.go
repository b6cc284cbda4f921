// Package catalog keeps the list of retrievable node names used for
// "did you mean" suggestions.
//
// The catalog is an immutable snapshot. Readers never block, and the
// snapshot only changes through an explicit Refresh.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soundprediction/hybridrag/pkg/driver"
)

// Snapshot is one loaded version of the catalog.
type Snapshot struct {
	Names    []string
	LoadedAt time.Time
}

// NodeCatalog caches catalog names from a graph store.
type NodeCatalog struct {
	source  driver.CatalogSource
	current atomic.Pointer[Snapshot]
	// refreshMu serializes refreshes so two callers do not both hit the store
	refreshMu sync.Mutex
	logger    *slog.Logger
}

// New creates an empty catalog. Call Refresh to load it.
func New(source driver.CatalogSource, logger *slog.Logger) *NodeCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &NodeCatalog{source: source, logger: logger}
	c.current.Store(&Snapshot{})
	return c
}

// Refresh reloads the names from the store and swaps in a new snapshot.
// On error the previous snapshot stays in place.
func (c *NodeCatalog) Refresh(ctx context.Context) (*Snapshot, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	start := time.Now()
	names, err := c.source.CatalogNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	snapshot := &Snapshot{
		Names:    append([]string(nil), names...),
		LoadedAt: time.Now(),
	}
	c.current.Store(snapshot)

	c.logger.Info("Catalog refreshed",
		"names", len(snapshot.Names),
		"duration", time.Since(start))
	return snapshot, nil
}

// Names returns the current names. The slice must not be modified.
func (c *NodeCatalog) Names() []string {
	return c.current.Load().Names
}

// Len returns the number of names in the current snapshot.
func (c *NodeCatalog) Len() int {
	return len(c.current.Load().Names)
}

// Snapshot returns the current snapshot.
func (c *NodeCatalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Loaded reports whether a refresh has succeeded at least once.
func (c *NodeCatalog) Loaded() bool {
	return !c.current.Load().LoadedAt.IsZero()
}

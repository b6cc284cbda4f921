package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/soundprediction/hybridrag/pkg/driver"
	"github.com/soundprediction/hybridrag/pkg/types"
	"github.com/soundprediction/hybridrag/pkg/utils"
)

const (
	DefaultMaxHops  = 3
	DefaultMaxEdges = 150
	MinMaxEdges     = 100
	MaxMaxEdges     = 200
)

// Expansion is the neighborhood of a set of seeds.
type Expansion struct {
	// Edges are the distinct edges in seed order, at most the expander's
	// edge cap. Each edge carries the first seed that reached it.
	Edges []types.EdgeTriple
	// Reached holds every seed whose traversal found at least one edge
	// within the hop limit, including edges already claimed by an earlier
	// seed or dropped by the cap.
	Reached map[string]struct{}
}

// HasEdges reports whether seed reached any edge. It is false for seeds
// that are isolated or whose traversal failed.
func (x *Expansion) HasEdges(seed string) bool {
	if x == nil {
		return false
	}
	_, ok := x.Reached[seed]
	return ok
}

// BySeed groups the expansion edges by the seed they are attributed to.
func (x *Expansion) BySeed() map[string][]types.EdgeTriple {
	if x == nil {
		return nil
	}
	return GroupBySeed(x.Edges)
}

// Expander turns seed nodes into the edges surrounding them, one traversal
// per seed on a bounded worker pool.
type Expander struct {
	store    driver.Traverser
	pool     *ants.Pool
	maxHops  int
	maxEdges int
	logger   *slog.Logger
}

// NewExpander creates an expander with a pool of workers goroutines.
func NewExpander(store driver.Traverser, workers, maxHops, maxEdges int, logger *slog.Logger) (*Expander, error) {
	if maxHops < 1 || maxHops > driver.MaxTraversalHops {
		return nil, fmt.Errorf("max hops must be between 1 and %d, got %d", driver.MaxTraversalHops, maxHops)
	}
	if maxEdges < MinMaxEdges || maxEdges > MaxMaxEdges {
		return nil, fmt.Errorf("max edges must be between %d and %d, got %d", MinMaxEdges, MaxMaxEdges, maxEdges)
	}
	if workers <= 0 {
		workers = utils.GetSemaphoreLimit()
	}
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create expansion pool: %w", err)
	}
	return &Expander{
		store:    store,
		pool:     pool,
		maxHops:  maxHops,
		maxEdges: maxEdges,
		logger:   logger,
	}, nil
}

// MaxEdges returns the bound on edges returned by Expand.
func (e *Expander) MaxEdges() int { return e.maxEdges }

// Expand traverses up to maxHops around every seed and returns the distinct
// edges found, grouped by seed in seed order, at most maxEdges in total.
//
// A seed whose traversal fails is skipped. Expand fails only when the store
// is unreachable.
func (e *Expander) Expand(ctx context.Context, seeds []string) (*Expansion, error) {
	expansion := &Expansion{Reached: make(map[string]struct{})}
	if len(seeds) == 0 {
		return expansion, nil
	}

	perSeed := make([][]types.EdgeTriple, len(seeds))
	errs := make([]error, len(seeds))
	var wg sync.WaitGroup

	for i, seed := range seeds {
		wg.Add(1)
		index, seedID := i, seed
		task := func() {
			defer wg.Done()
			defer utils.RecoverWithCallback(func(err error) {
				errs[index] = err
			})
			edges, err := e.store.Expand(ctx, seedID, e.maxHops, e.maxEdges)
			if err != nil {
				errs[index] = err
				return
			}
			for j := range edges {
				edges[j].Seed = seedID
			}
			perSeed[index] = edges
		}
		if err := e.pool.Submit(task); err != nil {
			wg.Done()
			errs[index] = fmt.Errorf("failed to submit expansion of %s: %w", seedID, err)
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, types.ErrBackendUnreachable) {
			return nil, err
		}
		e.logger.Warn("Expansion failed for seed", "seed", seeds[i], "error", err)
	}

	seen := make(map[types.IdentityKey]struct{})
	for i, edges := range perSeed {
		for _, edge := range edges {
			if edge.Depth > e.maxHops {
				continue
			}
			expansion.Reached[seeds[i]] = struct{}{}
			if len(expansion.Edges) >= e.maxEdges {
				break
			}
			key := edge.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			expansion.Edges = append(expansion.Edges, edge)
		}
	}
	return expansion, nil
}

// Close releases the worker pool.
func (e *Expander) Close() {
	e.pool.Release()
}

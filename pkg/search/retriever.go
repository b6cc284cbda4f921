package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/soundprediction/hybridrag/pkg/driver"
	"github.com/soundprediction/hybridrag/pkg/embedder"
	"github.com/soundprediction/hybridrag/pkg/normalize"
	"github.com/soundprediction/hybridrag/pkg/types"
	"github.com/soundprediction/hybridrag/pkg/utils"
)

const (
	DefaultTopK           = 5
	DefaultTimeout        = 10 * time.Second
	DefaultChannelTimeout = 4 * time.Second
	DefaultProximityLimit = 20
	DefaultWorkers        = 8
)

// Options configures a Retriever.
type Options struct {
	TopK             int
	Timeout          time.Duration
	ChannelTimeout   time.Duration
	MaxHops          int
	MaxEdges         int
	ProximityLimit   int
	ExpansionWorkers int

	VectorIndex   string
	FullTextIndex string
	// DocumentIndex enables the document channel when set.
	DocumentIndex string

	// Channels restricts retrieval to the listed channels. Empty means all available.
	Channels []types.Channel
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		TopK:             DefaultTopK,
		Timeout:          DefaultTimeout,
		ChannelTimeout:   DefaultChannelTimeout,
		MaxHops:          DefaultMaxHops,
		MaxEdges:         DefaultMaxEdges,
		ProximityLimit:   DefaultProximityLimit,
		ExpansionWorkers: DefaultWorkers,
		VectorIndex:      "vector_index",
		FullTextIndex:    "fulltext_index",
		DocumentIndex:    "chunk_vector_index",
	}
}

// ChannelReport records how one channel behaved during a retrieval.
type ChannelReport struct {
	Channel  types.Channel
	Count    int
	Duration time.Duration
	Err      error
}

// Report describes a completed retrieval for logging and telemetry.
type Report struct {
	Query      string
	Normalized string
	TopK       int
	Channels   []ChannelReport
	Seeds      int
	Edges      int
	Results    int
	Duration   time.Duration
}

// Degraded reports whether any channel failed.
func (r *Report) Degraded() bool {
	for _, c := range r.Channels {
		if c.Err != nil {
			return true
		}
	}
	return false
}

// Retriever runs hybrid retrieval against a graph store.
type Retriever struct {
	store      driver.GraphStore
	embedder   embedder.Client
	normalizer *normalize.Normalizer
	channels   []Channel
	expander   *Expander
	options    Options
	logger     *slog.Logger
}

// NewRetriever wires the channels and expander. emb may be nil, in which case
// the vector and document channels are disabled.
func NewRetriever(store driver.GraphStore, emb embedder.Client, options Options, logger *slog.Logger) (*Retriever, error) {
	if store == nil {
		return nil, errors.New("graph store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultOptions()
	if options.TopK <= 0 {
		options.TopK = defaults.TopK
	}
	if options.Timeout <= 0 {
		options.Timeout = defaults.Timeout
	}
	if options.ChannelTimeout <= 0 {
		options.ChannelTimeout = defaults.ChannelTimeout
	}
	if options.MaxHops == 0 {
		options.MaxHops = defaults.MaxHops
	}
	if options.MaxEdges == 0 {
		options.MaxEdges = defaults.MaxEdges
	}
	if options.ProximityLimit <= 0 {
		options.ProximityLimit = defaults.ProximityLimit
	}

	expander, err := NewExpander(store, options.ExpansionWorkers, options.MaxHops, options.MaxEdges, logger)
	if err != nil {
		return nil, err
	}

	normalizer := normalize.New()
	enabled := func(c types.Channel) bool {
		if len(options.Channels) == 0 {
			return true
		}
		for _, want := range options.Channels {
			if want == c {
				return true
			}
		}
		return false
	}

	var channels []Channel
	if emb != nil && options.VectorIndex != "" && enabled(types.ChannelVector) {
		channels = append(channels, NewVectorChannel(store, options.VectorIndex))
	}
	if options.FullTextIndex != "" && enabled(types.ChannelFullText) {
		channels = append(channels, NewFullTextChannel(store, options.FullTextIndex))
	}
	if enabled(types.ChannelProximity) {
		channels = append(channels, NewProximityChannel(store, options.ProximityLimit))
	}
	if enabled(types.ChannelFuzzy) {
		channels = append(channels, NewFuzzyLexicalChannel(store, normalizer))
	}
	if enabled(types.ChannelKeyword) {
		channels = append(channels, NewKeywordChannel(store, normalizer))
	}
	if emb != nil && options.DocumentIndex != "" && enabled(types.ChannelDocument) {
		channels = append(channels, NewDocumentChannel(store, options.DocumentIndex))
	}
	if len(channels) == 0 {
		expander.Close()
		return nil, errors.New("no retrieval channels enabled")
	}

	return &Retriever{
		store:      store,
		embedder:   emb,
		normalizer: normalizer,
		channels:   channels,
		expander:   expander,
		options:    options,
		logger:     logger,
	}, nil
}

// Options returns the effective options.
func (r *Retriever) Options() Options { return r.options }

// Channels returns the kinds of the active channels in priority order.
func (r *Retriever) Channels() []types.Channel {
	kinds := make([]types.Channel, len(r.channels))
	for i, c := range r.channels {
		kinds[i] = c.Kind()
	}
	return kinds
}

// Retrieve answers query with at most topK distinct triples. A topK of zero
// or less uses the configured default.
//
// Failing channels are logged and skipped. Retrieve returns an error when the
// query is empty, the graph store is unreachable, or every channel failed.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) (_ *types.ResultSet, _ *Report, err error) {
	defer utils.RecoverAsError(&err)

	start := time.Now()
	raw := strings.TrimSpace(query)
	if raw == "" {
		return nil, nil, types.NewInvalidQueryError(query)
	}
	if topK <= 0 {
		topK = r.options.TopK
	}

	ctx, cancel := context.WithTimeout(ctx, r.options.Timeout)
	defer cancel()

	q := NewQuery(raw, topK, r.normalizer, r.embedder)
	report := &Report{Query: raw, Normalized: q.Normalized, TopK: topK}

	tasks := make([]func(context.Context) (Output, error), len(r.channels))
	for i, ch := range r.channels {
		channel := ch
		tasks[i] = func(ctx context.Context) (Output, error) {
			chCtx, chCancel := context.WithTimeout(ctx, r.options.ChannelTimeout)
			defer chCancel()
			began := time.Now()
			out, err := channel.Retrieve(chCtx, q)
			out.took = time.Since(began)
			return out, err
		}
	}
	outputs, errs := utils.GatherWithDeadline(ctx, tasks...)

	var failures []error
	for i, ch := range r.channels {
		cr := ChannelReport{Channel: ch.Kind(), Err: errs[i], Duration: outputs[i].took}
		if errs[i] != nil && cr.Duration == 0 {
			cr.Duration = time.Since(start)
		}
		if errs[i] != nil {
			if errors.Is(errs[i], types.ErrBackendUnreachable) {
				return nil, nil, errs[i]
			}
			failures = append(failures, fmt.Errorf("%s: %w", ch.Kind(), errs[i]))
			r.logger.Warn("Retrieval channel failed",
				"channel", ch.Kind().String(),
				"query", raw,
				"error", errs[i])
			outputs[i] = Output{}
		} else {
			cr.Count = len(outputs[i].Candidates) + len(outputs[i].Triples)
		}
		report.Channels = append(report.Channels, cr)
	}
	if len(failures) == len(r.channels) {
		return nil, nil, errors.Join(append([]error{types.ErrAllChannelsFailed}, failures...)...)
	}

	seeds := collectSeeds(r.channels, outputs)
	report.Seeds = len(seeds)

	var expansion *Expansion
	if len(seeds) > 0 && ctx.Err() == nil {
		expansion, err = r.expander.Expand(ctx, seeds)
		if err != nil {
			return nil, nil, err
		}
		report.Edges = len(expansion.Edges)
	}

	contributions := make([]ChannelTriples, 0, len(r.channels))
	for i, ch := range r.channels {
		triples := outputs[i].Triples
		if len(outputs[i].Candidates) > 0 {
			triples = append(TriplesFor(outputs[i].Candidates, expansion), triples...)
		}
		contributions = append(contributions, ChannelTriples{Channel: ch.Kind(), Triples: triples})
	}

	result := &types.ResultSet{
		Query:   raw,
		TopK:    topK,
		Triples: Merge(contributions, topK),
	}
	report.Results = result.Len()
	report.Duration = time.Since(start)

	r.logger.Debug("Retrieval finished",
		"query", raw,
		"results", report.Results,
		"seeds", report.Seeds,
		"edges", report.Edges,
		"degraded", report.Degraded(),
		"duration", report.Duration)

	return result, report, nil
}

// collectSeeds returns the distinct candidate node IDs across channels in
// priority order.
func collectSeeds(channels []Channel, outputs []Output) []string {
	type indexed struct {
		kind types.Channel
		out  Output
	}
	ordered := make([]indexed, len(channels))
	for i, ch := range channels {
		ordered[i] = indexed{kind: ch.Kind(), out: outputs[i]}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].kind < ordered[j].kind
	})

	seen := make(map[string]struct{})
	var seeds []string
	for _, o := range ordered {
		for _, c := range o.out.Candidates {
			if _, ok := seen[c.NodeID]; ok {
				continue
			}
			seen[c.NodeID] = struct{}{}
			seeds = append(seeds, c.NodeID)
		}
	}
	return seeds
}

// Neighborhood returns the edges within the configured hop limit of a single
// node, nearest first.
func (r *Retriever) Neighborhood(ctx context.Context, nodeID string) ([]types.EdgeTriple, error) {
	if strings.TrimSpace(nodeID) == "" {
		return nil, types.ErrEmptyID
	}
	ctx, cancel := context.WithTimeout(ctx, r.options.Timeout)
	defer cancel()
	expansion, err := r.expander.Expand(ctx, []string{nodeID})
	if err != nil {
		return nil, err
	}
	return expansion.Edges, nil
}

// Close releases the expansion pool. It does not close the store or embedder.
func (r *Retriever) Close() {
	r.expander.Close()
}

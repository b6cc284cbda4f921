package hybridrag

import (
	"context"
	"errors"
	"time"

	"github.com/soundprediction/hybridrag/pkg/search"
	"github.com/soundprediction/hybridrag/pkg/telemetry"
	"github.com/soundprediction/hybridrag/pkg/types"
)

// Retrieve runs hybrid retrieval for query.
func (c *Client) Retrieve(ctx context.Context, query string, topK int) (*types.ResultSet, error) {
	start := time.Now()
	result, report, err := c.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		if !errors.Is(err, types.ErrInvalidQuery) {
			c.logger.ErrorContext(ctx, "Retrieval failed", "query", query, "error", err)
		}
		c.record(ctx, query, topK, nil, 0, time.Since(start), err)
		return nil, err
	}

	c.logger.InfoContext(ctx, "Retrieval complete",
		"query", report.Query,
		"results", report.Results,
		"degraded", report.Degraded(),
		"duration", report.Duration)
	c.record(ctx, query, topK, report, 0, time.Since(start), nil)
	return result, nil
}

// Suggest ranks catalog names by similarity to query. The catalog is loaded
// on first use if it has never been refreshed.
func (c *Client) Suggest(ctx context.Context, query string, limit int) ([]types.Suggestion, error) {
	if !c.catalog.Loaded() {
		if _, err := c.catalog.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return search.Suggest(query, c.catalog.Names(), limit), nil
}

// Lookup answers query for an end user. It returns the results when there
// are any; otherwise up to types.MaxSuggestions catalog names and the
// "no information found" message. A blank query yields the "no query" message.
func (c *Client) Lookup(ctx context.Context, query string, topK int) *types.Outcome {
	outcome := &types.Outcome{Query: query, Results: []types.EdgeTriple{}}

	start := time.Now()
	result, report, err := c.retriever.Retrieve(ctx, query, topK)
	if errors.Is(err, types.ErrInvalidQuery) {
		outcome.Message = types.MessageNoQuery
		return outcome
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "Retrieval failed", "query", query, "error", err)
	}
	if err == nil && !result.Empty() {
		outcome.Results = result.Triples
		c.record(ctx, query, topK, report, 0, time.Since(start), nil)
		return outcome
	}

	outcome.Message = types.MessageNoInformation
	suggestions, serr := c.Suggest(ctx, query, types.MaxSuggestions)
	if serr != nil {
		c.logger.WarnContext(ctx, "Suggestions unavailable", "query", query, "error", serr)
	}
	for _, s := range suggestions {
		outcome.Suggestions = append(outcome.Suggestions, s.Name)
	}
	c.record(ctx, query, topK, report, len(outcome.Suggestions), time.Since(start), err)
	return outcome
}

func (c *Client) record(ctx context.Context, query string, topK int, report *search.Report, suggestions int, took time.Duration, err error) {
	if c.recorder == nil {
		return
	}

	row := telemetry.QueryRow{
		Query:       query,
		TopK:        topK,
		Suggestions: suggestions,
		DurationMs:  took.Milliseconds(),
	}
	if err != nil {
		row.Error = err.Error()
	}
	if report != nil {
		row.Normalized = report.Normalized
		row.TopK = report.TopK
		row.Seeds = report.Seeds
		row.Edges = report.Edges
		row.Results = report.Results

		channelErrors := make(map[string]string)
		for _, cr := range report.Channels {
			if cr.Err != nil {
				channelErrors[cr.Channel.String()] = cr.Err.Error()
			}
			switch cr.Channel {
			case types.ChannelVector:
				row.VectorCount = cr.Count
			case types.ChannelFullText:
				row.FullTextCount = cr.Count
			case types.ChannelProximity:
				row.ProximityCount = cr.Count
			case types.ChannelFuzzy:
				row.FuzzyCount = cr.Count
			case types.ChannelKeyword:
				row.KeywordCount = cr.Count
			case types.ChannelDocument:
				row.DocumentCount = cr.Count
			}
		}
		row.ChannelErrors = telemetry.EncodeErrors(channelErrors)
	}

	if rerr := c.recorder.Record(ctx, row); rerr != nil {
		c.logger.WarnContext(ctx, "Failed to record query telemetry", "error", rerr)
	}
}

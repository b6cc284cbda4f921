package embedder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/hybridrag/pkg/types"
)

// BreakerSettings configures BreakerClient.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	ReadyToTripRatio float64
	MinRequests      uint32
}

// BreakerClient wraps a Client with circuit breaking, so a failing embedding
// service is skipped quickly instead of consuming each request's channel budget.
type BreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

// NewBreakerClient creates a circuit breaker client
func NewBreakerClient(client Client, settings BreakerSettings, name string, logger *slog.Logger) *BreakerClient {
	if logger == nil {
		logger = slog.Default()
	}
	if settings.MinRequests == 0 {
		settings.MinRequests = 3
	}
	if settings.ReadyToTripRatio <= 0 {
		settings.ReadyToTripRatio = 0.6
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.ReadyToTripRatio
		},
		IsSuccessful: func(err error) bool {
			// caller cancellations say nothing about the service
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Error("Circuit breaker tripped", "breaker", name, "from", from.String(), "to", to.String())
				return
			}
			logger.Info("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &BreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
	}
}

// Embed implements Client
func (b *BreakerClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := b.cb.Execute(func() (interface{}, error) {
		return b.client.Embed(ctx, texts)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, types.NewTransientBackendError(backendName, err)
		}
		return nil, err
	}
	return resp.([][]float32), nil
}

// EmbedSingle implements Client
func (b *BreakerClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return embedSingle(ctx, b, text)
}

// Dimensions implements Client
func (b *BreakerClient) Dimensions() int {
	return b.client.Dimensions()
}

// Close implements Client
func (b *BreakerClient) Close() error {
	return b.client.Close()
}

// State returns the breaker state, for health reporting.
func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

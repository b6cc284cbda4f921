package embedder

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/soundprediction/hybridrag/pkg/types"
)

// backendName labels embedding failures in the error taxonomy.
const backendName = "embedder"

var (
	// ErrNoEmbeddings indicates the provider returned fewer vectors than texts
	ErrNoEmbeddings = errors.New("no embeddings returned")

	// ErrUnknownProvider indicates an unsupported provider name
	ErrUnknownProvider = errors.New("unknown embedding provider")
)

// classify wraps retryable provider failures as TransientBackendError.
func classify(err error) error {
	if err == nil || errors.Is(err, types.ErrTransientBackend) {
		return err
	}
	if isRetryableError(err) {
		return types.NewTransientBackendError(backendName, err)
	}
	return err
}

// isRetryableError determines if an embedding error is worth another attempt
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= 500 || reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"timeout",
		"connection reset",
		"connection refused",
		"temporary failure",
		"rate limit",
		"too many requests",
	} {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}

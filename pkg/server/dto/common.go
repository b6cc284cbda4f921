package dto

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxQueryLength bounds the query accepted by the API, in characters.
const MaxQueryLength = 1000

var (
	ErrQueryTooLong = errors.New("query exceeds maximum length")
	ErrNegativeTopK = errors.New("top_k cannot be negative")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// validateQuery checks size limits only. Blank queries are reported by the
// retrieval layer so that every entry point treats them the same way.
func validateQuery(query string) error {
	if utf8.RuneCountInString(strings.TrimSpace(query)) > MaxQueryLength {
		return ErrQueryTooLong
	}
	return nil
}

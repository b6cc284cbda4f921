package types

import "errors"

// Validation errors
var (
	ErrEmptyName = errors.New("name cannot be empty")
	ErrEmptyID   = errors.New("id cannot be empty")
)

// MaxSuggestions bounds the "did you mean" list.
const MaxSuggestions = 5

// Outcome messages
const (
	MessageNoQuery       = "no query"
	MessageNoInformation = "no information found"
)

// Suggestion is a catalog name ranked by lexical similarity to a query.
type Suggestion struct {
	Name  string  `json:"name"`
	Ratio float64 `json:"ratio"`
}

// Outcome is the consumer-facing answer to a lookup: either results or suggestions.
type Outcome struct {
	Query       string       `json:"query"`
	Results     []EdgeTriple `json:"results"`
	Suggestions []string     `json:"suggestions,omitempty"`
	Message     string       `json:"message,omitempty"`
}

// ContextKey is the type for values stored in a request context.
type ContextKey string

const (
	// ContextKeyRequestID carries the per-request identifier.
	ContextKeyRequestID ContextKey = "request_id"
	// ContextKeySessionID carries the caller's session identifier, if any.
	ContextKeySessionID ContextKey = "session_id"
	// ContextKeyRequestSource carries the entry point (http, cli).
	ContextKeyRequestSource ContextKey = "request_source"
)

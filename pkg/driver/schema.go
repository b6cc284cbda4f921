package driver

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrNodeNotFound indicates FindNode matched nothing
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidIdentifier indicates a label or relationship type that cannot be quoted safely
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier accepts plain Cypher identifiers only.
func ValidateIdentifier(s string) error {
	if !identifierPattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	return nil
}

// quoteIdentifier backtick-quotes an identifier already checked by ValidateIdentifier.
func quoteIdentifier(s string) string {
	return "`" + s + "`"
}

// Schema names the labels and relationship types the store queries rely on.
type Schema struct {
	CatalogLabel        string
	TopicLabel          string
	KeywordLabel        string
	KeywordRelationship string
	TopicRelationship   string
}

// DefaultSchema returns the labels used by the procedure knowledge graph.
func DefaultSchema() Schema {
	return Schema{
		CatalogLabel:        "PROCESS",
		TopicLabel:          "TOPIC",
		KeywordLabel:        "Keyword",
		KeywordRelationship: "HAS_KEYWORD",
		TopicRelationship:   "HAS_TOPIC",
	}
}

// Validate checks every identifier in the schema.
func (s Schema) Validate() error {
	return errors.Join(
		ValidateIdentifier(s.CatalogLabel),
		ValidateIdentifier(s.TopicLabel),
		ValidateIdentifier(s.KeywordLabel),
		ValidateIdentifier(s.KeywordRelationship),
		ValidateIdentifier(s.TopicRelationship),
	)
}

package driver

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

// TypeConversionError represents an error during type conversion from database types.
type TypeConversionError struct {
	Expected string
	Actual   string
	Field    string
}

func (e *TypeConversionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("type conversion error for field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("type conversion error: expected %s, got %s", e.Expected, e.Actual)
}

// NewTypeConversionError creates a new TypeConversionError.
func NewTypeConversionError(expected, actual, field string) *TypeConversionError {
	return &TypeConversionError{
		Expected: expected,
		Actual:   actual,
		Field:    field,
	}
}

// AsRecordSlice safely converts an interface{} to []*db.Record.
func AsRecordSlice(v any) ([]*db.Record, bool) {
	if v == nil {
		return nil, false
	}
	records, ok := v.([]*db.Record)
	return records, ok
}

// AsString safely converts an interface{} to string.
func AsString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// AsInt64 safely converts an interface{} to int64.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

// AsFloat64 safely converts an interface{} to float64. Integers are widened.
func AsFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// RecordString reads a string column. A missing or null column yields "".
func RecordString(record *db.Record, key string) (string, error) {
	v, found := record.Get(key)
	if !found || v == nil {
		return "", nil
	}
	s, ok := AsString(v)
	if !ok {
		return "", NewTypeConversionError("string", fmt.Sprintf("%T", v), key)
	}
	return s, nil
}

// RecordFloat reads a numeric column.
func RecordFloat(record *db.Record, key string) (float64, error) {
	v, found := record.Get(key)
	if !found || v == nil {
		return 0, NewTypeConversionError("float64", "nil", key)
	}
	f, ok := AsFloat64(v)
	if !ok {
		return 0, NewTypeConversionError("float64", fmt.Sprintf("%T", v), key)
	}
	return f, nil
}

// RecordInt reads an integer column.
func RecordInt(record *db.Record, key string) (int64, error) {
	v, found := record.Get(key)
	if !found || v == nil {
		return 0, NewTypeConversionError("int64", "nil", key)
	}
	n, ok := AsInt64(v)
	if !ok {
		return 0, NewTypeConversionError("int64", fmt.Sprintf("%T", v), key)
	}
	return n, nil
}

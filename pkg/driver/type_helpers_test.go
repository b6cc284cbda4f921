package driver

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

func TestTypeConversionError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *TypeConversionError
		expected string
	}{
		{
			name:     "with field",
			err:      NewTypeConversionError("string", "int64", "name"),
			expected: `type conversion error for field "name": expected string, got int64`,
		},
		{
			name:     "without field",
			err:      NewTypeConversionError("float64", "nil", ""),
			expected: "type conversion error: expected float64, got nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAsFloat64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{"float64", 0.92, 0.92, true},
		{"float32", float32(0.5), 0.5, true},
		{"int64 widened", int64(3), 3, true},
		{"nil", nil, 0, false},
		{"string", "0.9", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := AsFloat64(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("AsFloat64(%v) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRecordAccessors(t *testing.T) {
	t.Parallel()

	record := &db.Record{
		Keys:   []string{"name", "score", "depth", "description", "bad"},
		Values: []any{"Έκδοση διαβατηρίου", 0.81, int64(2), nil, 42},
	}

	if got, err := RecordString(record, "name"); err != nil || got != "Έκδοση διαβατηρίου" {
		t.Errorf("RecordString(name) = (%q, %v)", got, err)
	}
	if got, err := RecordString(record, "description"); err != nil || got != "" {
		t.Errorf("RecordString(null) = (%q, %v), want empty", got, err)
	}
	if _, err := RecordString(record, "bad"); err == nil {
		t.Error("RecordString(bad) expected a conversion error")
	}
	if got, err := RecordFloat(record, "score"); err != nil || got != 0.81 {
		t.Errorf("RecordFloat(score) = (%v, %v)", got, err)
	}
	if got, err := RecordInt(record, "depth"); err != nil || got != 2 {
		t.Errorf("RecordInt(depth) = (%v, %v)", got, err)
	}
	if _, err := RecordFloat(record, "missing"); err == nil {
		t.Error("RecordFloat(missing) expected an error")
	}
}

func TestAsRecordSlice(t *testing.T) {
	t.Parallel()

	if _, ok := AsRecordSlice(nil); ok {
		t.Error("AsRecordSlice(nil) should fail")
	}
	if records, ok := AsRecordSlice([]*db.Record{{}}); !ok || len(records) != 1 {
		t.Errorf("AsRecordSlice = (%v, %v)", records, ok)
	}
}

package driver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is the YAML layout loaded by the memory store.
//
//	nodes:
//	  - id: p1
//	    name: Έκδοση πιστοποιητικού γέννησης
//	    labels: [PROCESS]
//	    description: Αίτηση στο ληξιαρχείο
//	    embedding: [0.1, 0.9]
//	    keywords: [γέννηση]
//	edges:
//	  - {from: p1, type: HAS_STEP, to: s1}
//	documents:
//	  - {id: d1, text: "...", embedding: [0.2, 0.8]}
type Fixture struct {
	Nodes     []FixtureNode     `yaml:"nodes"`
	Edges     []FixtureEdge     `yaml:"edges"`
	Documents []FixtureDocument `yaml:"documents"`
}

// FixtureNode is a graph node.
type FixtureNode struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Labels      []string  `yaml:"labels"`
	Description string    `yaml:"description"`
	Embedding   []float32 `yaml:"embedding"`
	Keywords    []string  `yaml:"keywords"`
}

// FixtureEdge is a directed relationship between two node IDs.
type FixtureEdge struct {
	From string `yaml:"from"`
	Type string `yaml:"type"`
	To   string `yaml:"to"`
}

// FixtureDocument is a text chunk in the document store.
type FixtureDocument struct {
	ID        string    `yaml:"id"`
	Text      string    `yaml:"text"`
	Embedding []float32 `yaml:"embedding"`
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML and checks referential integrity.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks that node IDs are present and unique, that relationship
// types are plain identifiers, and that every edge joins two known nodes.
func (f *Fixture) Validate() error {
	ids := make(map[string]struct{}, len(f.Nodes))
	for i, n := range f.Nodes {
		if n.ID == "" {
			return fmt.Errorf("fixture node %d: %w", i, ErrEmptyFixtureID)
		}
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("fixture node %q: duplicate id", n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	for i, e := range f.Edges {
		if err := ValidateIdentifier(e.Type); err != nil {
			return fmt.Errorf("fixture edge %d: %w", i, err)
		}
		if _, ok := ids[e.From]; !ok {
			return fmt.Errorf("fixture edge %d: unknown node %q", i, e.From)
		}
		if _, ok := ids[e.To]; !ok {
			return fmt.Errorf("fixture edge %d: unknown node %q", i, e.To)
		}
	}
	return nil
}

package hybridrag

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/soundprediction/hybridrag/pkg/types"
)

var jsonOutput bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printTriples(w io.Writer, triples []types.EdgeTriple) {
	for i, t := range triples {
		line := fmt.Sprintf("%2d. %s -[%s]-> %s", i+1, t.Node1, t.Relationship, t.Node2)
		if t.Score != nil {
			line += fmt.Sprintf("  (%.3f)", *t.Score)
		}
		fmt.Fprintln(w, line)
	}
}

func printNames(w io.Writer, names []string) {
	for _, name := range names {
		fmt.Fprintf(w, "- %s\n", name)
	}
}

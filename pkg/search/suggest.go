package search

import (
	"sort"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"

	"github.com/soundprediction/hybridrag/pkg/types"
)

// Ratio returns the indel similarity of a and b in [0, 1]:
// 2*LCS(a, b) / (len(a) + len(b)), measured in runes. Two empty strings are identical.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(edlib.LCS(a, b)) / float64(total)
}

// Suggest ranks catalog names by similarity to query and returns at most
// limit of them, capped at types.MaxSuggestions. Ties keep catalog order.
func Suggest(query string, catalog []string, limit int) []types.Suggestion {
	if limit <= 0 || limit > types.MaxSuggestions {
		limit = types.MaxSuggestions
	}
	if len(catalog) == 0 {
		return []types.Suggestion{}
	}

	scored := make([]types.Suggestion, 0, len(catalog))
	for _, name := range catalog {
		scored = append(scored, types.Suggestion{Name: name, Ratio: Ratio(query, name)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Ratio > scored[j].Ratio
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

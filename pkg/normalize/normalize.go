// Package normalize canonicalizes raw queries and node names for lexical comparison.
//
// Normalization lowercases the input with Greek casing rules and strips one
// trailing morphological suffix at a time until none matches, so the result
// is a fixed point: Normalize(Normalize(s)) == Normalize(s).
//
// The normalized form is only meant for edit-distance and substring checks.
// Vector and full-text lookups must receive the raw query.
package normalize

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSuffixes are the Greek case/number endings stripped from queries and names.
var DefaultSuffixes = []string{"ώσεις", "σης", "ος", "ης", "ων", "ση"}

// Normalizer strips a fixed suffix list after case folding. It is safe for concurrent use.
type Normalizer struct {
	suffixes []string
	tag      language.Tag
}

// New creates a Normalizer for the given suffixes. An empty list uses DefaultSuffixes.
func New(suffixes ...string) *Normalizer {
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}

	sorted := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		if s = strings.TrimSpace(s); s != "" {
			sorted = append(sorted, cases.Lower(language.Greek).String(s))
		}
	}
	// longest suffix wins
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})

	return &Normalizer{suffixes: sorted, tag: language.Greek}
}

var defaultNormalizer = New()

// Normalize normalizes s with the default suffix list.
func Normalize(s string) string {
	return defaultNormalizer.Normalize(s)
}

// Normalize lowercases s and strips trailing suffixes until none matches.
func (n *Normalizer) Normalize(s string) string {
	// a Caser keeps state between calls and cannot be shared across goroutines
	out := cases.Lower(n.tag).String(strings.TrimSpace(s))

	for {
		suffix := n.match(out)
		if suffix == "" {
			return out
		}
		out = strings.TrimSpace(strings.TrimSuffix(out, suffix))
	}
}

// Suffixes returns the suffix list, longest first.
func (n *Normalizer) Suffixes() []string {
	return append([]string(nil), n.suffixes...)
}

func (n *Normalizer) match(s string) string {
	for _, suffix := range n.suffixes {
		if strings.HasSuffix(s, suffix) {
			return suffix
		}
	}
	return ""
}

package search

import (
	"sort"

	"github.com/soundprediction/hybridrag/pkg/types"
)

// ChannelTriples is the triple list a channel contributes to the merge.
type ChannelTriples struct {
	Channel types.Channel
	Triples []types.EdgeTriple
}

// Merge combines per-channel triples into at most topK distinct triples.
//
// Channels are visited in types.PriorityOrder and triples within a channel in
// the order given. The first occurrence of an identity key wins, with the
// score of the channel that produced it. Scores are not compared across
// channels.
func Merge(outputs []ChannelTriples, topK int) []types.EdgeTriple {
	if topK <= 0 {
		return nil
	}

	ordered := make([]ChannelTriples, len(outputs))
	copy(ordered, outputs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Channel < ordered[j].Channel
	})

	seen := make(map[types.IdentityKey]struct{})
	merged := make([]types.EdgeTriple, 0, topK)
	for _, out := range ordered {
		for _, t := range out.Triples {
			key := t.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, t)
			if len(merged) == topK {
				return merged
			}
		}
	}
	return merged
}

// TriplesFor attaches graph context to candidates. Each candidate contributes
// the expansion edges attributed to its node, scored with the candidate's
// score. A candidate whose node reached no edge at all, because it is
// isolated or its traversal failed, contributes a single
// (name, similar, description) triple instead. A candidate whose edges were
// all attributed to an earlier seed contributes nothing.
func TriplesFor(candidates []types.Candidate, expansion *Expansion) []types.EdgeTriple {
	bySeed := expansion.BySeed()
	var out []types.EdgeTriple
	emitted := make(map[string]struct{})
	for _, c := range candidates {
		if _, ok := emitted[c.NodeID]; ok {
			continue
		}
		emitted[c.NodeID] = struct{}{}

		edges := bySeed[c.NodeID]
		if len(edges) == 0 {
			if expansion.HasEdges(c.NodeID) {
				continue
			}
			fallback := types.EdgeTriple{
				Node1:        c.Name,
				Relationship: types.RelationshipSimilar,
				Node2:        c.Description,
			}
			out = append(out, fallback.WithScore(c.Score))
			continue
		}
		for _, e := range edges {
			out = append(out, e.WithScore(c.Score))
		}
	}
	return out
}

// GroupBySeed indexes expansion edges by the seed they were reached from,
// preserving order.
func GroupBySeed(edges []types.EdgeTriple) map[string][]types.EdgeTriple {
	grouped := make(map[string][]types.EdgeTriple)
	for _, e := range edges {
		grouped[e.Seed] = append(grouped[e.Seed], e)
	}
	return grouped
}

package types

import "fmt"

// Channel identifies a retrieval strategy.
type Channel int

const (
	// ChannelVector is approximate nearest-neighbour search over node embeddings.
	ChannelVector Channel = iota
	// ChannelFullText is relevance search over the full-text index.
	ChannelFullText
	// ChannelProximity returns edges whose endpoint names contain the raw query.
	ChannelProximity
	// ChannelFuzzy matches the normalized query against normalized node names.
	ChannelFuzzy
	// ChannelKeyword matches the normalized query against attached keywords.
	ChannelKeyword
	// ChannelDocument is nearest-neighbour search over document chunks.
	ChannelDocument
)

// PriorityOrder lists every channel in merge priority order.
var PriorityOrder = []Channel{
	ChannelVector,
	ChannelFullText,
	ChannelProximity,
	ChannelFuzzy,
	ChannelKeyword,
	ChannelDocument,
}

var channelNames = map[Channel]string{
	ChannelVector:    "vector",
	ChannelFullText:  "fulltext",
	ChannelProximity: "proximity",
	ChannelFuzzy:     "fuzzy",
	ChannelKeyword:   "keyword",
	ChannelDocument:  "document",
}

// String returns the channel name used in logs and telemetry.
func (c Channel) String() string {
	if name, ok := channelNames[c]; ok {
		return name
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// FixedMatchScore is the score assigned by the filtering channels (fuzzy, keyword).
const FixedMatchScore = 1.0

// Candidate is a graph node surfaced by one retrieval channel.
type Candidate struct {
	NodeID      string  `json:"node_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Score       float64 `json:"score"`
	// Source is kept for tie-breaking and debugging and is not serialized downstream.
	Source Channel `json:"-"`
}

// Validate checks that the candidate can be used as an expansion seed.
func (c *Candidate) Validate() error {
	if c.NodeID == "" {
		return ErrEmptyID
	}
	if c.Name == "" {
		return ErrEmptyName
	}
	return nil
}

package dto

import "github.com/soundprediction/hybridrag/pkg/types"

// RetrieveRequest is the body of POST /api/v1/retrieve and /api/v1/lookup.
type RetrieveRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// Validate performs validation on RetrieveRequest
func (r *RetrieveRequest) Validate() error {
	if r.TopK < 0 {
		return ErrNegativeTopK
	}
	return validateQuery(r.Query)
}

// SuggestRequest is the body of POST /api/v1/suggest.
type SuggestRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Validate performs validation on SuggestRequest
func (r *SuggestRequest) Validate() error {
	return validateQuery(r.Query)
}

// RetrieveResponse carries the merged triples.
type RetrieveResponse struct {
	Query   string             `json:"query"`
	TopK    int                `json:"top_k"`
	Results []types.EdgeTriple `json:"results"`
	Total   int                `json:"total"`
}

// NewRetrieveResponse converts a result set, never returning a nil results slice.
func NewRetrieveResponse(rs *types.ResultSet) RetrieveResponse {
	results := rs.Triples
	if results == nil {
		results = []types.EdgeTriple{}
	}
	return RetrieveResponse{Query: rs.Query, TopK: rs.TopK, Results: results, Total: len(results)}
}

// SuggestResponse carries ranked catalog names.
type SuggestResponse struct {
	Query       string             `json:"query"`
	Suggestions []types.Suggestion `json:"suggestions"`
}

// NeighborhoodResponse carries the edges around a node.
type NeighborhoodResponse struct {
	Node    string             `json:"node"`
	Results []types.EdgeTriple `json:"results"`
	Total   int                `json:"total"`
}

// TopicsResponse lists topic names.
type TopicsResponse struct {
	Topics []string `json:"topics"`
}

// TopicNodesResponse lists the catalog names under a topic.
type TopicNodesResponse struct {
	Topic string   `json:"topic"`
	Nodes []string `json:"nodes"`
}

// CatalogResponse reports the catalog size after a refresh.
type CatalogResponse struct {
	Size int `json:"size"`
}

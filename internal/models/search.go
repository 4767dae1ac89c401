package models

// Search modes reported to the client so a degraded local search is
// distinguishable from real index results.
const (
	SearchModeRemote = "remote"
	SearchModeLocal  = "local"
)

// SearchRequest is the query-string shape of GET /search.
type SearchRequest struct {
	Query string `form:"q" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// SearchResponse carries normalized hits plus the mode they came from.
type SearchResponse struct {
	Query          string `json:"query"`
	Mode           string `json:"mode"`
	Hits           []Item `json:"hits"`
	Found          int    `json:"found"`
	DegradedReason string `json:"degraded_reason,omitempty"`
}

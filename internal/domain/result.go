package domain

// DocResult is the structured answer of a documentation search.
type DocResult struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Result string `json:"result"`
}

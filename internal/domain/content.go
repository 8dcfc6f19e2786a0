package domain

// ContentSummary is a single catalog entry as returned by the search index:
// enough to render a result row, not the full record.
type ContentSummary struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Kind      string   `json:"kind"` // documentary, series, podcast, ...
	Year      int      `json:"year,omitempty"`
	Platforms []string `json:"platforms,omitempty"`
	Synopsis  string   `json:"synopsis,omitempty"`
}

package search

// Document is one navigable documentation page offered to the search engine.
type Document struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
	Href     string `json:"href"`
	// Content is the raw page body. Nil means the page is only searchable
	// by label and category.
	Content *string `json:"content,omitempty"`
}

// Hit is a single ranked search result.
type Hit struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
	Href     string `json:"href"`
	// Score only orders hits within one result set.
	Score   int    `json:"score"`
	Snippet string `json:"snippet,omitempty"`
}

// Text returns a pointer to s for use as Document.Content.
func Text(s string) *string {
	return &s
}

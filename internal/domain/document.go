package domain

// DocumentMetadata carries the provenance attached to every indexed document.
type DocumentMetadata struct {
	Filename string `json:"filename"`
	Source   string `json:"source"`
	DocID    string `json:"doc_id"`
}

// Document is one indexable product description. IDs are unique within a
// single index generation and derive from the corpus item name with its
// extension stripped.
type Document struct {
	ID       string
	Content  string
	Metadata DocumentMetadata
}

// SearchResult is a single nearest-neighbor match. Distance is a
// dissimilarity score: lower means more relevant. A result sequence returned
// from one query is sorted by non-decreasing distance.
type SearchResult struct {
	ID       string           `json:"id"`
	Content  string           `json:"content"`
	Metadata DocumentMetadata `json:"metadata"`
	Distance float32          `json:"distance"`
}

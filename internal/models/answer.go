package models

// Citation points a generated answer back at one retrieved chunk. Citations
// are computed per query and never persisted.
type Citation struct {
	ItemID     string     `json:"item_id"`
	SourceKind SourceKind `json:"source_kind"`
	OriginURL  string     `json:"origin_url,omitempty"`
	Title      string     `json:"title,omitempty"`
	Snippet    string     `json:"snippet"` // chunk text truncated for display
	Score      float64    `json:"score"`   // cosine similarity against the question
}

// Answer is the result of one query: generated text plus one citation per
// retrieved chunk, ordered by descending relevance.
type Answer struct {
	Text      string     `json:"answer"`
	HTML      string     `json:"answer_html,omitempty"` // Text rendered to HTML for browser clients
	Model     string     `json:"model"`
	Citations []Citation `json:"citations"`
}

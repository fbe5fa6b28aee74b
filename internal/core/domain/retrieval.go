package domain

type SearchFilter struct {
	Category string
	Tags     []string
}

// ScoredDocument lives only for the duration of one search call.
type ScoredDocument struct {
	Document
	RelevanceScore float64 `json:"relevanceScore"`
}

type Source struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	RelevantContent string   `json:"relevantContent"`
	Category        string   `json:"category,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	RelevanceScore  float64  `json:"relevanceScore"`
}

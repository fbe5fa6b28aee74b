package domain

import "time"

// GeneralCategory is assigned when no category keyword occurs in a document.
const GeneralCategory = "General"

type Document struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Summary     string    `json:"summary"`
	FilePath    string    `json:"-"`
	FileType    string    `json:"fileType"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	WordCount   int       `json:"wordCount"`
	IsProcessed bool      `json:"isProcessed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Classification is the derived metadata computed from a document's title and text.
type Classification struct {
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Summary   string   `json:"summary"`
	WordCount int      `json:"wordCount"`
}

func (d *Document) ApplyClassification(cls Classification) {
	d.Category = cls.Category
	d.Tags = cls.Tags
	d.Summary = cls.Summary
	d.WordCount = cls.WordCount
}

type DocumentFilter struct {
	Category string
	Search   string
	Tags     []string
}

type RelatedDocument struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	SharedTags int    `json:"sharedTags"`
}

package domain

import "time"

type DocumentEventType string

const (
	DocumentCreated      DocumentEventType = "created"
	DocumentReclassified DocumentEventType = "reclassified"
	DocumentDeleted      DocumentEventType = "deleted"
)

type DocumentEvent struct {
	Type       DocumentEventType `json:"type"`
	DocumentID int64             `json:"documentId"`
	Title      string            `json:"title"`
	Category   string            `json:"category,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

func NewDocumentEvent(eventType DocumentEventType, doc *Document) DocumentEvent {
	return DocumentEvent{
		Type:       eventType,
		DocumentID: doc.ID,
		Title:      doc.Title,
		Category:   doc.Category,
		Tags:       doc.Tags,
		OccurredAt: time.Now().UTC(),
	}
}

package ports

import (
	"context"
	"io"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

// DocumentUploader is the inbound contract for synchronous upload processing.
type DocumentUploader interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentCatalog is the inbound read/maintenance model for stored documents.
type DocumentCatalog interface {
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)
	Get(ctx context.Context, id int64) (*domain.Document, error)
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
	Reclassify(ctx context.Context, id int64) (*domain.Document, error)
	Related(ctx context.Context, id int64, limit int) ([]domain.RelatedDocument, error)
}

// DocumentSearcher ranks stored documents against a free-text query.
type DocumentSearcher interface {
	Search(ctx context.Context, query string, limit int, filter domain.SearchFilter) ([]domain.ScoredDocument, error)
}

// ChatService runs chat sessions over the knowledge base.
type ChatService interface {
	CreateSession(ctx context.Context) (*domain.ChatSession, error)
	SendMessage(ctx context.Context, sessionID, message string) (*domain.ChatReply, error)
	History(ctx context.Context, sessionID string) ([]domain.Message, error)
}

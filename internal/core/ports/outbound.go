package ports

import (
	"context"
	"io"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

// DocumentRepository persists documents and answers filtered listings.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id int64) (*domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListTags(ctx context.Context) ([]string, error)
}

// ChatRepository persists chat sessions and their messages.
type ChatRepository interface {
	CreateSession(ctx context.Context, session *domain.ChatSession) error
	GetSession(ctx context.Context, id string) (*domain.ChatSession, error)
	AppendMessage(ctx context.Context, message *domain.Message) error
	ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error)
}

// ObjectStorage stores uploaded source files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// TextExtractor extracts plain text from a stored file of the given MIME type.
type TextExtractor interface {
	Extract(ctx context.Context, key, mimeType string) (string, error)
}

// AnswerGenerator turns an assembled prompt into answer text.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DocumentEventPublisher announces document lifecycle changes.
type DocumentEventPublisher interface {
	PublishDocumentEvent(ctx context.Context, event domain.DocumentEvent) error
}

// TagGraph mirrors document/tag relations for related-document lookups.
type TagGraph interface {
	SyncDocument(ctx context.Context, doc *domain.Document) error
	RemoveDocument(ctx context.Context, id int64) error
	RelatedDocuments(ctx context.Context, id int64, limit int) ([]domain.RelatedDocument, error)
}

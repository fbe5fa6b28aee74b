package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/cto-coach/internal/core/domain"
	"github.com/kirillkom/cto-coach/internal/core/knowledge"
	"github.com/kirillkom/cto-coach/internal/core/ports"
)

const (
	mimePlainText = "text/plain"
	mimeMarkdown  = "text/markdown"
	mimePDF       = "application/pdf"
	mimeBinary    = "application/octet-stream"
)

var extensionMimeTypes = map[string]string{
	".txt":      mimePlainText,
	".text":     mimePlainText,
	".md":       mimeMarkdown,
	".markdown": mimeMarkdown,
	".pdf":      mimePDF,
}

// UploadDocumentUseCase stores, extracts and classifies an uploaded file in one pass.
type UploadDocumentUseCase struct {
	repo       ports.DocumentRepository
	storage    ports.ObjectStorage
	extractor  ports.TextExtractor
	classifier *knowledge.Classifier
	events     ports.DocumentEventPublisher
	graph      ports.TagGraph
}

// NewUploadDocumentUseCase accepts nil events and graph; both are optional side channels.
func NewUploadDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	classifier *knowledge.Classifier,
	events ports.DocumentEventPublisher,
	graph ports.TagGraph,
) *UploadDocumentUseCase {
	if classifier == nil {
		classifier = knowledge.NewClassifier()
	}
	return &UploadDocumentUseCase{
		repo:       repo,
		storage:    storage,
		extractor:  extractor,
		classifier: classifier,
		events:     events,
		graph:      graph,
	}
}

func (uc *UploadDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("filename is required"))
	}
	if body == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("file body is required"))
	}

	mimeType = resolveMimeType(filename, mimeType)
	storageKey := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc, err := uc.process(ctx, filename, mimeType, storageKey)
	if err != nil {
		uc.discard(ctx, storageKey)
		return nil, err
	}

	publishEvent(ctx, uc.events, domain.DocumentCreated, doc)
	syncGraph(ctx, uc.graph, doc)
	return doc, nil
}

func (uc *UploadDocumentUseCase) process(ctx context.Context, filename, mimeType, storageKey string) (*domain.Document, error) {
	text, err := uc.extractor.Extract(ctx, storageKey, mimeType)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		Title:       knowledge.TitleFromFilename(filename),
		Content:     text,
		FilePath:    storageKey,
		FileType:    mimeType,
		IsProcessed: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	doc.ApplyClassification(uc.classifier.Classify(doc.Title, doc.Content))

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

func (uc *UploadDocumentUseCase) discard(ctx context.Context, storageKey string) {
	if err := uc.storage.Delete(context.WithoutCancel(ctx), storageKey); err != nil {
		slog.Warn("upload_cleanup_failed", "storage_key", storageKey, "error", err)
	}
}

// resolveMimeType infers the type from the extension when the client sent none or a generic one.
func resolveMimeType(filename, declared string) string {
	declared = strings.TrimSpace(declared)
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
		declared = mediaType
	}
	declared = strings.ToLower(declared)
	if declared != "" && declared != mimeBinary {
		return declared
	}
	if inferred, ok := extensionMimeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return inferred
	}
	if declared == "" {
		return mimeBinary
	}
	return declared
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}

func publishEvent(ctx context.Context, events ports.DocumentEventPublisher, eventType domain.DocumentEventType, doc *domain.Document) {
	if events == nil {
		return
	}
	if err := events.PublishDocumentEvent(context.WithoutCancel(ctx), domain.NewDocumentEvent(eventType, doc)); err != nil {
		slog.Warn("document_event_publish_failed", "event", eventType, "document_id", doc.ID, "error", err)
	}
}

func syncGraph(ctx context.Context, graph ports.TagGraph, doc *domain.Document) {
	if graph == nil {
		return
	}
	if err := graph.SyncDocument(context.WithoutCancel(ctx), doc); err != nil {
		slog.Warn("tag_graph_sync_failed", "document_id", doc.ID, "error", err)
	}
}

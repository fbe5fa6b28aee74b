package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kirillkom/cto-coach/internal/core/domain"
	"github.com/kirillkom/cto-coach/internal/core/knowledge"
	"github.com/kirillkom/cto-coach/internal/core/ports"
)

const defaultRelatedLimit = 5

type CatalogUseCase struct {
	repo       ports.DocumentRepository
	storage    ports.ObjectStorage
	classifier *knowledge.Classifier
	events     ports.DocumentEventPublisher
	graph      ports.TagGraph
}

func NewCatalogUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	classifier *knowledge.Classifier,
	events ports.DocumentEventPublisher,
	graph ports.TagGraph,
) *CatalogUseCase {
	if classifier == nil {
		classifier = knowledge.NewClassifier()
	}
	return &CatalogUseCase{
		repo:       repo,
		storage:    storage,
		classifier: classifier,
		events:     events,
		graph:      graph,
	}
}

func (uc *CatalogUseCase) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Tags = normalizeTags(filter.Tags)

	docs, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (uc *CatalogUseCase) Get(ctx context.Context, id int64) (*domain.Document, error) {
	if id <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get document", fmt.Errorf("invalid id %d", id))
	}
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Delete removes the row after a best-effort file removal. A missing id changes nothing.
func (uc *CatalogUseCase) Delete(ctx context.Context, id int64) error {
	doc, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}

	if doc.FilePath != "" {
		if err := uc.storage.Delete(ctx, doc.FilePath); err != nil {
			slog.Warn("document_file_delete_failed", "document_id", id, "storage_key", doc.FilePath, "error", err)
		}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if uc.graph != nil {
		if err := uc.graph.RemoveDocument(context.WithoutCancel(ctx), id); err != nil {
			slog.Warn("tag_graph_remove_failed", "document_id", id, "error", err)
		}
	}
	publishEvent(ctx, uc.events, domain.DocumentDeleted, doc)
	return nil
}

func (uc *CatalogUseCase) Categories(ctx context.Context) ([]string, error) {
	categories, err := uc.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (uc *CatalogUseCase) Tags(ctx context.Context) ([]string, error) {
	tags, err := uc.repo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Reclassify recomputes the derived metadata from the stored title and content.
func (uc *CatalogUseCase) Reclassify(ctx context.Context, id int64) (*domain.Document, error) {
	doc, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	doc.ApplyClassification(uc.classifier.Classify(doc.Title, doc.Content))
	doc.IsProcessed = true
	doc.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}

	syncGraph(ctx, uc.graph, doc)
	publishEvent(ctx, uc.events, domain.DocumentReclassified, doc)
	return doc, nil
}

// Related lists documents sharing tags with id, most shared first. The tag graph answers
// when configured; otherwise tags are compared in memory.
func (uc *CatalogUseCase) Related(ctx context.Context, id int64, limit int) ([]domain.RelatedDocument, error) {
	if limit <= 0 {
		limit = defaultRelatedLimit
	}
	doc, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.graph != nil {
		related, err := uc.graph.RelatedDocuments(ctx, id, limit)
		if err == nil {
			return related, nil
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		slog.Warn("tag_graph_related_failed", "document_id", id, "error", err)
	}

	return uc.relatedFromStore(ctx, doc, limit)
}

func (uc *CatalogUseCase) relatedFromStore(ctx context.Context, doc *domain.Document, limit int) ([]domain.RelatedDocument, error) {
	if len(doc.Tags) == 0 {
		return []domain.RelatedDocument{}, nil
	}

	candidates, err := uc.repo.List(ctx, domain.DocumentFilter{})
	if err != nil {
		return nil, fmt.Errorf("list related candidates: %w", err)
	}

	own := make(map[string]struct{}, len(doc.Tags))
	for _, tag := range doc.Tags {
		own[tag] = struct{}{}
	}

	related := make([]domain.RelatedDocument, 0)
	for _, candidate := range candidates {
		if candidate.ID == doc.ID {
			continue
		}
		shared := 0
		for _, tag := range candidate.Tags {
			if _, ok := own[tag]; ok {
				shared++
			}
		}
		if shared == 0 {
			continue
		}
		related = append(related, domain.RelatedDocument{ID: candidate.ID, Title: candidate.Title, SharedTags: shared})
	}

	sort.Slice(related, func(i, j int) bool {
		if related[i].SharedTags != related[j].SharedTags {
			return related[i].SharedTags > related[j].SharedTags
		}
		return related[i].ID < related[j].ID
	})
	if len(related) > limit {
		related = related[:limit]
	}
	return related, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

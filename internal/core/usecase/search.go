package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/cto-coach/internal/core/domain"
	"github.com/kirillkom/cto-coach/internal/core/knowledge"
	"github.com/kirillkom/cto-coach/internal/core/ports"
)

const defaultSearchLimit = 5

// SearchUseCase takes candidates from the store's substring match on title, content and
// summary, then ranks them. The scorer itself never drops a candidate.
type SearchUseCase struct {
	repo         ports.DocumentRepository
	scorer       *knowledge.Scorer
	defaultLimit int
}

func NewSearchUseCase(repo ports.DocumentRepository, scorer *knowledge.Scorer, defaultLimit int) *SearchUseCase {
	if scorer == nil {
		scorer = knowledge.NewScorer(knowledge.DefaultWeights())
	}
	if defaultLimit <= 0 {
		defaultLimit = defaultSearchLimit
	}
	return &SearchUseCase{
		repo:         repo,
		scorer:       scorer,
		defaultLimit: defaultLimit,
	}
}

func (uc *SearchUseCase) Search(
	ctx context.Context,
	query string,
	limit int,
	filter domain.SearchFilter,
) ([]domain.ScoredDocument, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search documents", errors.New("query is required"))
	}
	if limit <= 0 {
		limit = uc.defaultLimit
	}

	docs, err := uc.repo.List(ctx, domain.DocumentFilter{
		Search:   strings.TrimSpace(query),
		Category: strings.TrimSpace(filter.Category),
		Tags:     normalizeTags(filter.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("list search candidates: %w", err)
	}

	candidates := docs[:0]
	for _, doc := range docs {
		if doc.IsProcessed {
			candidates = append(candidates, doc)
		}
	}

	return uc.scorer.Rank(query, candidates, limit), nil
}

package knowledge

import (
	"sort"
	"strings"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

// Weights are uncalibrated heuristic constants; tune them through configuration.
type Weights struct {
	Title             float64
	Summary           float64
	ContentOccurrence float64
	Tag               float64
	Category          float64
}

func DefaultWeights() Weights {
	return Weights{
		Title:             10,
		Summary:           8,
		ContentOccurrence: 2,
		Tag:               5,
		Category:          3,
	}
}

type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score is additive: title, summary and category hits add fixed weights, content adds per
// non-overlapping occurrence, tags add per matching tag. A blank query scores zero.
func (s *Scorer) Score(query string, doc *domain.Document) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || doc == nil {
		return 0
	}

	score := 0.0
	if strings.Contains(strings.ToLower(doc.Title), q) {
		score += s.weights.Title
	}
	if strings.Contains(strings.ToLower(doc.Summary), q) {
		score += s.weights.Summary
	}
	score += s.weights.ContentOccurrence * float64(strings.Count(strings.ToLower(doc.Content), q))

	tagHits := 0
	for _, tag := range doc.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			tagHits++
		}
	}
	score += s.weights.Tag * float64(tagHits)

	if strings.Contains(strings.ToLower(doc.Category), q) {
		score += s.weights.Category
	}
	return score
}

// Rank scores every candidate, orders by score descending keeping input order on ties,
// and truncates to limit when limit is positive.
func (s *Scorer) Rank(query string, docs []domain.Document, limit int) []domain.ScoredDocument {
	scored := make([]domain.ScoredDocument, len(docs))
	for i := range docs {
		scored[i] = domain.ScoredDocument{
			Document:       docs[i],
			RelevanceScore: s.Score(query, &docs[i]),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	if limit > 0 && limit < len(scored) {
		scored = scored[:limit]
	}
	return scored
}

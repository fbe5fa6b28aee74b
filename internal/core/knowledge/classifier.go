package knowledge

import (
	"strings"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

type CategoryRule struct {
	Name     string
	Keywords []string
}

// DefaultCategoryRules is evaluated in declaration order; on equal keyword totals the
// earlier category wins.
var DefaultCategoryRules = []CategoryRule{
	{Name: "Architecture", Keywords: []string{"architecture", "design pattern", "system design", "microservices", "monolith", "scalability"}},
	{Name: "Leadership", Keywords: []string{"leadership", "management", "team", "mentoring", "culture", "strategy"}},
	{Name: "Engineering", Keywords: []string{"engineering", "development", "coding", "programming", "software", "technical"}},
	{Name: "Process", Keywords: []string{"process", "workflow", "agile", "scrum", "kanban", "methodology", "best practice"}},
	{Name: "Security", Keywords: []string{"security", "vulnerability", "authentication", "authorization", "encryption", "privacy"}},
	{Name: "DevOps", Keywords: []string{"devops", "deployment", "ci/cd", "infrastructure", "monitoring", "automation"}},
	{Name: "Quality", Keywords: []string{"quality", "testing", "code review", "qa", "bug", "defect", "reliability"}},
}

var DefaultTagVocabulary = []string{
	"react", "nodejs", "typescript", "javascript", "python", "java",
	"aws", "azure", "gcp", "docker", "kubernetes",
	"api", "rest", "graphql", "database", "sql", "nosql",
	"frontend", "backend", "fullstack", "mobile",
	"performance", "optimization", "scalability", "reliability",
	"testing", "tdd", "bdd", "unit test", "integration test",
	"agile", "scrum", "kanban", "ci/cd", "git",
}

// DerivedTagRule adds Tag when any trigger occurs in the text.
type DerivedTagRule struct {
	Tag      string
	Triggers []string
}

var DefaultDerivedTagRules = []DerivedTagRule{
	{Tag: "microservices", Triggers: []string{"microservice"}},
	{Tag: "monolith", Triggers: []string{"monolith"}},
	{Tag: "cloud", Triggers: []string{"cloud"}},
	{Tag: "ai-ml", Triggers: []string{"ai", "machine learning"}},
}

// Classifier assigns a category, tags and summary from declarative keyword tables.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	categories []CategoryRule
	vocabulary []string
	derived    []DerivedTagRule
}

func NewClassifier() *Classifier {
	return NewClassifierWithRules(DefaultCategoryRules, DefaultTagVocabulary, DefaultDerivedTagRules)
}

func NewClassifierWithRules(categories []CategoryRule, vocabulary []string, derived []DerivedTagRule) *Classifier {
	return &Classifier{
		categories: categories,
		vocabulary: vocabulary,
		derived:    derived,
	}
}

func (c *Classifier) Classify(title, content string) domain.Classification {
	return domain.Classification{
		Category:  c.Category(title, content),
		Tags:      c.Tags(title, content),
		Summary:   Summarize(content),
		WordCount: CountWords(content),
	}
}

func (c *Classifier) Category(title, content string) string {
	text := classificationText(title, content)

	best := domain.GeneralCategory
	bestScore := 0
	for _, rule := range c.categories {
		score := 0
		for _, keyword := range rule.Keywords {
			keyword = strings.ToLower(keyword)
			if keyword == "" {
				continue
			}
			score += strings.Count(text, keyword)
		}
		if score > bestScore {
			best = rule.Name
			bestScore = score
		}
	}
	return best
}

func (c *Classifier) Tags(title, content string) []string {
	text := classificationText(title, content)

	seen := make(map[string]struct{}, len(c.vocabulary))
	tags := make([]string, 0)
	add := func(tag string) {
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, tag := range c.vocabulary {
		if containsFold(text, tag) {
			add(tag)
		}
	}
	for _, rule := range c.derived {
		for _, trigger := range rule.Triggers {
			if containsFold(text, trigger) {
				add(rule.Tag)
				break
			}
		}
	}
	return tags
}

func classificationText(title, content string) string {
	return strings.ToLower(title + " " + content)
}

// containsFold reports whether lowerText contains needle, ignoring needle's case.
func containsFold(lowerText, needle string) bool {
	needle = strings.ToLower(needle)
	return needle != "" && strings.Contains(lowerText, needle)
}

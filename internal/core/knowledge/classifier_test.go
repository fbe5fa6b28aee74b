package knowledge

import (
	"testing"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

func TestClassifierMicroservicesGuide(t *testing.T) {
	c := NewClassifier()
	cls := c.Classify(
		"Microservices Guide",
		"A microservice owns its data. Scalability comes from independent deployment.",
	)

	if cls.Category != "Architecture" {
		t.Fatalf("expected Architecture, got %q", cls.Category)
	}
	if !hasTag(cls.Tags, "microservices") {
		t.Fatalf("expected derived tag microservices, got %v", cls.Tags)
	}
	if !hasTag(cls.Tags, "scalability") {
		t.Fatalf("expected vocabulary tag scalability, got %v", cls.Tags)
	}
	if cls.WordCount != 10 {
		t.Fatalf("expected word count 10, got %d", cls.WordCount)
	}
}

func TestClassifierFallsBackToGeneral(t *testing.T) {
	c := NewClassifier()
	if got := c.Category("Notes", "Lunch menu for friday"); got != domain.GeneralCategory {
		t.Fatalf("expected %q, got %q", domain.GeneralCategory, got)
	}
}

func TestClassifierTieKeepsEarliestCategory(t *testing.T) {
	c := NewClassifierWithRules(
		[]CategoryRule{
			{Name: "First", Keywords: []string{"alpha"}},
			{Name: "Second", Keywords: []string{"beta"}},
		},
		nil,
		nil,
	)

	if got := c.Category("", "beta alpha"); got != "First" {
		t.Fatalf("expected tie to keep First, got %q", got)
	}
	if got := c.Category("", "beta beta alpha"); got != "Second" {
		t.Fatalf("expected strictly higher total to win, got %q", got)
	}
}

func TestClassifierCountsEveryOccurrence(t *testing.T) {
	c := NewClassifier()
	content := "Security review. Security training. Team sync."
	if got := c.Category("", content); got != "Security" {
		t.Fatalf("expected Security, got %q", got)
	}
}

func TestClassifierTagsAreDeduplicated(t *testing.T) {
	c := NewClassifierWithRules(
		nil,
		[]string{"cloud", "api", "cloud"},
		[]DerivedTagRule{{Tag: "cloud", Triggers: []string{"cloud"}}},
	)

	tags := c.Tags("Cloud API", "cloud native api design")
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", tags)
	}
	seen := map[string]bool{}
	for _, tag := range tags {
		if seen[tag] {
			t.Fatalf("duplicate tag %q in %v", tag, tags)
		}
		seen[tag] = true
	}
}

func TestClassifierDerivedTagsAreCaseInsensitive(t *testing.T) {
	c := NewClassifier()
	tags := c.Tags("Machine Learning at scale", "")
	if !hasTag(tags, "ai-ml") {
		t.Fatalf("expected ai-ml, got %v", tags)
	}
}

func TestClassifierIsDeterministic(t *testing.T) {
	c := NewClassifier()
	title := "Team process"
	content := "Agile teams use scrum and kanban. Deployment is automated with docker and kubernetes."

	first := c.Classify(title, content)
	for i := 0; i < 5; i++ {
		next := c.Classify(title, content)
		if next.Category != first.Category || next.Summary != first.Summary || len(next.Tags) != len(first.Tags) {
			t.Fatalf("classification changed between runs: %+v vs %+v", first, next)
		}
		for j := range next.Tags {
			if next.Tags[j] != first.Tags[j] {
				t.Fatalf("tag order changed between runs: %v vs %v", first.Tags, next.Tags)
			}
		}
	}
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

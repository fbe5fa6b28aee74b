package usecase

import (
	"strings"
	"testing"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

func TestBuildChatPromptWithSources(t *testing.T) {
	prompt := buildChatPrompt("How do we scale?", []domain.Source{
		{Title: "Scaling", Category: "Architecture", Tags: []string{"scalability", "cloud"}, Summary: "Scale out.", RelevantContent: "Shard early."},
		{Title: "Untagged", RelevantContent: "Something."},
	})

	wants := []string{
		"You are an expert CTO coach",
		"Context from knowledge base (2 relevant documents found):",
		"Document 1: Scaling\nCategory: Architecture\nTags: scalability, cloud\nSummary: Scale out.\nRelevant Content: Shard early.",
		"Document 2: Untagged\nCategory: General\nTags: None\nSummary: No summary available\nRelevant Content: Something.",
		"User question: How do we scale?",
		`"According to [Document Title]..."`,
	}
	for _, want := range wants {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildChatPromptWithoutSources(t *testing.T) {
	prompt := buildChatPrompt("Any advice?", nil)
	if strings.Contains(prompt, "Context from knowledge base") {
		t.Fatalf("expected no context section:\n%s", prompt)
	}
	if !strings.Contains(prompt, "User question: Any advice?") {
		t.Fatalf("expected user question:\n%s", prompt)
	}
	if strings.Contains(prompt, "According to") {
		t.Fatalf("expected short instruction without citation format:\n%s", prompt)
	}
}

package usecase

import (
	"fmt"
	"strings"

	"github.com/kirillkom/cto-coach/internal/core/domain"
)

const coachPreamble = `You are an expert CTO coach providing guidance on engineering leadership,
software architecture, and technology strategy.`

func buildChatPrompt(message string, sources []domain.Source) string {
	if len(sources) == 0 {
		return fmt.Sprintf(`%s

User question: %s

Provide helpful, practical advice as a CTO would. Draw from your knowledge
of engineering best practices, leadership principles, and technology trends.
`, coachPreamble, message)
	}

	blocks := make([]string, 0, len(sources))
	for idx, source := range sources {
		blocks = append(blocks, fmt.Sprintf(
			"Document %d: %s\nCategory: %s\nTags: %s\nSummary: %s\nRelevant Content: %s",
			idx+1,
			source.Title,
			valueOr(source.Category, domain.GeneralCategory),
			valueOr(strings.Join(source.Tags, ", "), "None"),
			valueOr(source.Summary, "No summary available"),
			source.RelevantContent,
		))
	}

	return fmt.Sprintf(`%s

Context from knowledge base (%d relevant documents found):
%s

User question: %s

Provide helpful, practical advice as a CTO would. Reference the provided
context when relevant and cite the document titles in your response.
When citing sources, use the format: "According to [Document Title]..."
or "As mentioned in [Document Title]...". Be specific about which document
you're referencing.
`, coachPreamble, len(sources), strings.Join(blocks, "\n\n"), message)
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

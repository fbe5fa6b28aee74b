package knowledge

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minSentenceRunes    = 10
	maxSummarySentences = 3
)

var (
	sentenceBoundary = regexp.MustCompile(`[.!?]+`)
	wordStart        = regexp.MustCompile(`\b\w`)
)

// Sentences splits text on runs of '.', '!' and '?' and keeps trimmed fragments of at
// least ten characters, in document order.
func Sentences(text string) []string {
	parts := sentenceBoundary.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if utf8.RuneCountInString(part) < minSentenceRunes {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Summarize keeps the first three sentences of content.
func Summarize(content string) string {
	sentences := Sentences(content)
	if len(sentences) > maxSummarySentences {
		sentences = sentences[:maxSummarySentences]
	}
	return joinSentences(sentences)
}

func CountWords(text string) int {
	return len(strings.Fields(text))
}

// TitleFromFilename turns "system-design_notes.md" into "System Design Notes".
func TitleFromFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		name = base
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	name = wordStart.ReplaceAllStringFunc(name, strings.ToUpper)
	return strings.TrimSpace(name)
}

func joinSentences(sentences []string) string {
	return strings.TrimSpace(strings.Join(sentences, ". ")) + "."
}

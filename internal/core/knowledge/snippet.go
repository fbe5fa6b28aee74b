package knowledge

import (
	"strings"
	"unicode/utf8"
)

const (
	maxSnippetSentences      = 3
	fallbackSnippetSentences = 2
	minQueryWordRunes        = 3
)

// ExtractSnippet returns up to three sentences of content that mention a query word
// longer than two characters, or the opening two sentences when none do.
func ExtractSnippet(content, query string) string {
	words := queryWords(query)
	sentences := Sentences(content)

	matched := make([]string, 0, maxSnippetSentences)
	for _, sentence := range sentences {
		if !mentionsAny(strings.ToLower(sentence), words) {
			continue
		}
		matched = append(matched, sentence)
		if len(matched) == maxSnippetSentences {
			break
		}
	}
	if len(matched) > 0 {
		return joinSentences(matched)
	}

	if len(sentences) > fallbackSnippetSentences {
		sentences = sentences[:fallbackSnippetSentences]
	}
	return joinSentences(sentences)
}

func queryWords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if utf8.RuneCountInString(field) >= minQueryWordRunes {
			out = append(out, field)
		}
	}
	return out
}

func mentionsAny(lowerSentence string, words []string) bool {
	for _, word := range words {
		if strings.Contains(lowerSentence, word) {
			return true
		}
	}
	return false
}

package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hairstory/backend/internal/domain"
)

// maxSnippetLength bounds a displayed review, in bytes
const maxSnippetLength = 220

// AppendReviewSection adds a "What customers are saying" block to text with
// the snippets of each mentioned product, in mention order. Text is returned
// unchanged when there is nothing to show.
func AppendReviewSection(text string, mentions []domain.ProductMention, reviews map[string][]domain.ReviewSnippet) string {
	var b strings.Builder
	for _, m := range mentions {
		snippets := reviews[m.Name]
		if len(snippets) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n**%s**\n", m.Name)
		for _, s := range snippets {
			fmt.Fprintf(&b, "- \"%s\" (%d/5", truncateSnippet(s.Content), s.ReviewScore)
			if s.HairType != "" {
				fmt.Fprintf(&b, ", %s hair", s.HairType)
			}
			b.WriteString(")\n")
		}
	}

	if b.Len() == 0 {
		return text
	}
	return strings.TrimRight(text, "\n") + "\n\n**What customers are saying:**\n" + strings.TrimRight(b.String(), "\n")
}

// truncateSnippet shortens content to maxSnippetLength at a word boundary
func truncateSnippet(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) <= maxSnippetLength {
		return content
	}
	cut := strings.LastIndex(content[:maxSnippetLength], " ")
	if cut <= 0 {
		cut = maxSnippetLength
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
	}
	return strings.TrimRight(content[:cut], " ,.;:") + "..."
}

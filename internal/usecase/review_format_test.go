package usecase

import (
	"strings"
	"testing"

	"github.com/hairstory/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAppendReviewSection(t *testing.T) {
	mentions := []domain.ProductMention{{Name: "New Wash Rich"}, {Name: "Hair Balm"}}

	t.Run("unchanged without snippets", func(t *testing.T) {
		text := "I recommend New Wash Rich."

		assert.Equal(t, text, AppendReviewSection(text, mentions, nil))
		assert.Equal(t, text, AppendReviewSection(text, mentions, map[string][]domain.ReviewSnippet{"Hair Balm": {}}))
	})

	t.Run("renders snippets in mention order", func(t *testing.T) {
		reviews := map[string][]domain.ReviewSnippet{
			"Hair Balm":     {{Content: "Defines my waves.", ReviewScore: 5, HairType: "wavy"}},
			"New Wash Rich": {{Content: "So soft.", ReviewScore: 4}},
			"Oil":           {{Content: "Not mentioned.", ReviewScore: 5}},
		}

		got := AppendReviewSection("I recommend New Wash Rich and Hair Balm.\n", mentions, reviews)

		want := "I recommend New Wash Rich and Hair Balm.\n\n" +
			"**What customers are saying:**\n\n" +
			"**New Wash Rich**\n" +
			"- \"So soft.\" (4/5)\n\n" +
			"**Hair Balm**\n" +
			"- \"Defines my waves.\" (5/5, wavy hair)"
		assert.Equal(t, want, got)
	})

	t.Run("section is excluded from later extraction", func(t *testing.T) {
		reviews := map[string][]domain.ReviewSnippet{
			"New Wash Rich": {{Content: "Better than Oil and Wax for me.", ReviewScore: 5}},
			"Hair Balm":     {{Content: "Great with Powder too.", ReviewScore: 5}},
		}
		text := AppendReviewSection("I recommend New Wash Rich and Hair Balm.", mentions, reviews)

		e := NewMentionExtractor(newTestCatalog(), MentionConfig{})
		assert.Equal(t, []string{"New Wash Rich", "Hair Balm"}, mentionNames(e.Extract(text)))
	})
}

func TestTruncateSnippet(t *testing.T) {
	t.Run("short content is kept with whitespace collapsed", func(t *testing.T) {
		assert.Equal(t, "soft and shiny", truncateSnippet("  soft \n and   shiny "))
	})

	t.Run("long content is cut at a word boundary", func(t *testing.T) {
		got := truncateSnippet(strings.Repeat("curls ", 60))

		assert.True(t, strings.HasSuffix(got, "curls..."))
		assert.LessOrEqual(t, len(got), maxSnippetLength+3)
	})

	t.Run("long content without spaces is hard cut", func(t *testing.T) {
		got := truncateSnippet(strings.Repeat("x", 300))

		assert.Equal(t, strings.Repeat("x", maxSnippetLength)+"...", got)
	})
}

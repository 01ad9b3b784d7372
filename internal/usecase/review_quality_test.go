package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsQualityReview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"empty", "", false},
		{"whitespace only", "    \n\t ", false},
		{"short generic praise", "Great!", false},
		{"too few distinct characters", "aaaaaaaaaaaaaaaaaaaa", false},
		{"repeated single word", "hair hair hair hair", false},
		{"low-information word in short review", "Nice stuff for hair", false},
		{"exclamation heavy", "Wow this works!!!!!!", false},
		{"low character variety", "hair hare rare hair hare rare hair", false},
		{"short review without hair vocabulary", "The bottle arrived on time quickly", false},
		{"short review with hair vocabulary", "My curls have never looked better", true},
		{"substantive review", "This product completely transformed my curly, frizzy hair into soft defined waves after just one wash.", true},
		{"long review with generic words", "Amazing stuff. I have fine straight hair and after two weeks of using it my scalp feels clean and my hair has more volume than ever.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQualityReview(tt.content))
		})
	}
}

func TestCalculateQualityScore(t *testing.T) {
	t.Run("length bonus and short penalties", func(t *testing.T) {
		tests := []struct {
			length int
			want   float64
		}{
			{151, 7.0},
			{101, 6.5},
			{51, 6.0},
			{31, 5.0},
			{20, 4.0},
		}

		for _, tt := range tests {
			got := CalculateQualityScore(strings.Repeat("z", tt.length), 5)
			assert.InDelta(t, tt.want, got, 0.001, "length %d", tt.length)
		}
	})

	t.Run("keyword bonuses", func(t *testing.T) {
		// +0.5 length, +0.3 soft, +0.4 curly, -0.5 under 50 chars
		got := CalculateQualityScore("Great product, my curly hair feels soft.", 5)
		assert.InDelta(t, 5.7, got, 0.001)
	})

	t.Run("generic word penalty", func(t *testing.T) {
		// +0.2 wash, -1 under 30 chars, -0.5 for three generic words
		got := CalculateQualityScore("good great nice hair wash", 4)
		assert.InDelta(t, 2.7, got, 0.001)
	})

	t.Run("starts from the star rating", func(t *testing.T) {
		low := CalculateQualityScore("This product completely transformed my curly, frizzy hair into soft defined waves after just one wash.", 3)
		high := CalculateQualityScore("This product completely transformed my curly, frizzy hair into soft defined waves after just one wash.", 5)
		assert.InDelta(t, 2.0, high-low, 0.001)
	})
}

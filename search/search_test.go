package search_test

import (
	"testing"

	"github.com/nasermirzaei89/blog/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{
			name:     "identical",
			a:        "python",
			b:        "Python",
			expected: 1,
		},
		{
			name:     "typo against two words",
			a:        "pythn",
			b:        "Python Tips",
			expected: 4.0 / 14.0,
		},
		{
			name:     "unrelated",
			a:        "pythn",
			b:        "Cooking Pasta",
			expected: 1.0 / 19.0,
		},
		{
			name:     "empty query",
			a:        "",
			b:        "Python Tips",
			expected: 0,
		},
		{
			name:     "punctuation only",
			a:        "!!!",
			b:        "Python Tips",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tt.expected, search.Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTrigramStrategy(t *testing.T) {
	t.Parallel()

	tips := search.Trigram.Score("pythn", search.Document{Title: "Python Tips"})
	tricks := search.Trigram.Score("pythn", search.Document{Title: "Python Tricks"})
	pasta := search.Trigram.Score("pythn", search.Document{Title: "Cooking Pasta"})

	assert.True(t, search.Trigram.Accepts(tips))
	assert.True(t, search.Trigram.Accepts(tricks))
	assert.False(t, search.Trigram.Accepts(pasta))
	assert.Greater(t, tips, tricks)

	assert.False(t, search.Trigram.Accepts(0.1), "threshold is exclusive")
}

func TestFullTextRank(t *testing.T) {
	t.Parallel()

	doc := search.Document{
		Title: "Go patterns",
		Body:  "A few words about concurrency.",
	}

	assert.InDelta(t, 1.0, search.FullTextRank("patterns", doc), 1e-9)
	assert.InDelta(t, 0.4, search.FullTextRank("concurrency", doc), 1e-9)
	assert.InDelta(t, 0.7, search.FullTextRank("go concurrency", doc), 1e-9)
	assert.InDelta(t, 0.0, search.FullTextRank("rust", doc), 1e-9)
	assert.InDelta(t, 0.0, search.FullTextRank("", doc), 1e-9)

	assert.True(t, search.FullText.Accepts(0.3), "threshold is inclusive")
	assert.False(t, search.FullText.Accepts(0.29))
}

func TestStrategyByName(t *testing.T) {
	t.Parallel()

	strategy, err := search.StrategyByName("")
	require.NoError(t, err)
	assert.Equal(t, search.StrategyTrigram, strategy.Name)

	strategy, err = search.StrategyByName("FullText")
	require.NoError(t, err)
	assert.Equal(t, search.StrategyFullText, strategy.Name)

	_, err = search.StrategyByName("vector")
	require.Error(t, err)

	unknownErr := search.UnknownStrategyError{}
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "vector", unknownErr.Name)
}

package fileparse

import (
	"testing"

	"github.com/fb2shelf/fb2shelf/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matcherRules(patterns []string, names ...string) *config.Rules {
	return config.NewRules(&config.Rules{
		MaleNames:        names,
		FilenamePatterns: patterns,
	})
}

var allPatterns = []string{
	"Author - Title",
	"Author - Title (Series)",
	"(Author) - Title",
	"Author. Title",
	"Title (Author)",
	"Title - (Author)",
	"Author, Author - Title",
	"Author, Author. Title",
}

func TestNewMatcher(t *testing.T) {
	t.Run("compiles supported templates", func(t *testing.T) {
		m, err := NewMatcher(matcherRules(allPatterns))
		require.NoError(t, err)
		assert.NotNil(t, m)
	})

	t.Run("rejects unsupported templates", func(t *testing.T) {
		_, err := NewMatcher(matcherRules([]string{"Series/Author/Title"}))
		assert.Error(t, err)
	})

	t.Run("no patterns is fine", func(t *testing.T) {
		m, err := NewMatcher(matcherRules(nil))
		require.NoError(t, err)
		assert.Empty(t, m.ExtractAuthor("Петров - Одиссея"))
	})
}

func TestExtractAuthor(t *testing.T) {
	m, err := NewMatcher(matcherRules(allPatterns))
	require.NoError(t, err)

	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{
			name:     "author dash title",
			filename: "Петров Иван - Одиссея",
			expected: "Петров Иван",
		},
		{
			name:     "trailing paren author",
			filename: "Achtung! Manager in der Luft! (Комбат Найтов)",
			expected: "Комбат Найтов",
		},
		{
			name:     "author dot title",
			filename: "Найтов. Достойны ли мы отцов",
			expected: "Найтов",
		},
		{
			name:     "paren author dash title",
			filename: "(Найтов) - Достойны ли мы отцов",
			expected: "Найтов",
		},
		{
			name:     "title dash paren author",
			filename: "Достойны ли мы отцов - (Найтов)",
			expected: "Найтов",
		},
		{
			name:     "keyword candidates rejected",
			filename: "Сборник фантастики - 33 рассказа",
			expected: "",
		},
		{
			name:     "numeric candidates rejected",
			filename: "1986 - Лучшее за год",
			expected: "",
		},
		{
			name:     "no separators at all",
			filename: "Одиссея",
			expected: "",
		},
		{
			name:     "short candidates rejected",
			filename: "Ян - Чингисхан",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.ExtractAuthor(tt.filename))
		})
	}
}

func TestExtractAuthorWithNameLists(t *testing.T) {
	// When given-name lists are configured, multi-word candidates must
	// contain a recognized name; series titles stop passing as people.
	m, err := NewMatcher(matcherRules(allPatterns, "Иван", "Павел"))
	require.NoError(t, err)

	assert.Equal(t, "Петров Иван", m.ExtractAuthor("Петров Иван - Одиссея"))
	assert.Empty(t, m.ExtractAuthor("Боевая фантастика - Лучшее за год"))
}

func TestExtractAuthorMultiple(t *testing.T) {
	m, err := NewMatcher(matcherRules(allPatterns))
	require.NoError(t, err)

	assert.Equal(t, "Петров, Орлов", m.ExtractAuthor("Петров, Орлов - Одиссея"))
}

package folderscan

import "strings"

// Pattern is the closed set of directory-name shapes the decision table can
// select. Exactly one pattern is chosen per name, in declaration order.
type Pattern int

const (
	PatternNone Pattern = iota
	// PatternSharedSurname: "Живовы Георгий и Геннадий": two sibling
	// authors sharing a (plural) surname joined with "и".
	PatternSharedSurname
	// PatternAuthorList: "Земляной Андрей, Орлов Борис": comma-separated
	// authors without parens.
	PatternAuthorList
	// PatternBareWords: exactly two bare words, assumed "Фамилия Имя".
	PatternBareWords
	// PatternParenAuthorList: "Series (Author, Author)": trailing parens
	// containing a comma.
	PatternParenAuthorList
	// PatternParenAuthor: "Series (Author)": the LAST paren group holds
	// the author.
	PatternParenAuthor
	// PatternLeadingParen: "(Series) Author": text after the parens is
	// the author.
	PatternLeadingParen
	// PatternDashAuthor: "Author - Folder Name": text before a spaced
	// dash, unless the tail is «quoted» (which signals a series).
	PatternDashAuthor
	// PatternSeriesFallback: loose fallback, text before the first paren.
	PatternSeriesFallback
)

func (p Pattern) String() string {
	switch p {
	case PatternSharedSurname:
		return "shared_surname"
	case PatternAuthorList:
		return "author_list"
	case PatternBareWords:
		return "bare_words"
	case PatternParenAuthorList:
		return "paren_author_list"
	case PatternParenAuthor:
		return "paren_author"
	case PatternLeadingParen:
		return "leading_paren"
	case PatternDashAuthor:
		return "dash_author"
	case PatternSeriesFallback:
		return "series_fallback"
	}
	return "none"
}

// categoryPrefixes short-circuit the whole parser: directories named after
// categories are never authors.
var categoryPrefixes = []string{
	"серия",
	"сборник",
	"коллекция",
	"антология",
	"цикл",
	"подборка",
	"архив",
	"разное",
	"другое",
	"unknown",
	"various",
}

// SelectPattern runs the fixed decision table over the structural analysis.
// First match wins.
func SelectPattern(s Structure) Pattern {
	words := strings.Fields(s.Name)

	if len(s.Parens) == 0 && strings.Contains(s.Name, " и ") {
		parts := strings.SplitN(s.Name, " и ", 2)
		if len(strings.Fields(parts[0])) >= 2 && len(strings.Fields(parts[1])) == 1 {
			return PatternSharedSurname
		}
	}

	if len(s.Parens) == 0 && s.HasComma {
		return PatternAuthorList
	}

	if len(s.Parens) == 0 && len(words) == 2 {
		return PatternBareWords
	}

	trailingParens := s.Positioning == PositionEnd || s.Positioning == PositionMultiple

	if trailingParens && s.HasCommaInParens && s.TextAfterLast == "" {
		return PatternParenAuthorList
	}

	if trailingParens && !s.HasCommaInParens && s.TextAfterLast == "" {
		return PatternParenAuthor
	}

	if s.Positioning == PositionStart && s.TextAfterLast != "" {
		return PatternLeadingParen
	}

	if s.HasSpacedDash {
		afterDash := strings.TrimSpace(strings.SplitN(s.Name, " - ", 2)[1])
		if !strings.ContainsAny(afterDash, "«»") {
			return PatternDashAuthor
		}
	}

	// Single bare words are too ambiguous to be authors.
	if len(words) == 1 {
		return PatternNone
	}
	return PatternSeriesFallback
}

// ExtractAuthor applies the selected pattern's slice rule. Multi-author
// results use "; " as the temporary separator for later passes to split.
func ExtractAuthor(s Structure, pattern Pattern) string {
	switch pattern {
	case PatternSharedSurname:
		parts := strings.SplitN(s.Name, " и ", 2)
		firstWords := strings.Fields(parts[0])
		surname := singularizeSurname(firstWords[0])
		first := strings.Join(firstWords[1:], " ")
		second := strings.TrimSpace(parts[1])
		return surname + " " + first + "; " + surname + " " + second

	case PatternAuthorList:
		return strings.TrimSpace(strings.ReplaceAll(s.Name, ", ", "; "))

	case PatternBareWords:
		return strings.TrimSpace(s.Name)

	case PatternParenAuthorList:
		return strings.ReplaceAll(strings.TrimSpace(s.Parens[0].Content), ", ", "; ")

	case PatternParenAuthor:
		return strings.TrimSpace(s.Parens[len(s.Parens)-1].Content)

	case PatternLeadingParen:
		return s.TextAfterLast

	case PatternDashAuthor:
		return strings.TrimSpace(strings.SplitN(s.Name, " - ", 2)[0])

	case PatternSeriesFallback:
		// Only text before a paren group is worth keeping; a plain phrase
		// is a series name, not an author.
		if len(s.Parens) > 0 {
			return s.TextBeforeFirst
		}
		return ""
	}
	return ""
}

// ParseAuthor is the whole three-stage parser: structural analysis, pattern
// selection, extraction. Returns empty when the name is a category label or
// matches no pattern.
func ParseAuthor(folderName string) string {
	name := strings.TrimSpace(folderName)
	if name == "" {
		return ""
	}

	lower := strings.ToLower(name)
	for _, prefix := range categoryPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	s := AnalyzeStructure(name)
	return ExtractAuthor(s, SelectPattern(s))
}

// singularizeSurname strips the plural ending from a shared family surname:
// "Живовы" → "Живов", "Сафины" → "Сафин".
func singularizeSurname(surname string) string {
	runes := []rune(surname)
	if len(runes) < 3 {
		return surname
	}
	switch runes[len(runes)-1] {
	case 'ы', 'и':
		return string(runes[:len(runes)-1])
	}
	return surname
}

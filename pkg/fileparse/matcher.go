package fileparse

import (
	"strings"
	"unicode"

	"github.com/fb2shelf/fb2shelf/pkg/config"
	"github.com/fb2shelf/fb2shelf/pkg/names"
	"github.com/pkg/errors"
)

// minScore is the threshold below which no pattern is considered a match.
const minScore = 0.3

// nonAuthorKeywords disqualify an extracted candidate when they appear as a
// whole word. Complete keywords only: substrings would collide with real
// surnames ("Романов" vs "романы").
var nonAuthorKeywords = map[string]struct{}{
	"трилогия":    {},
	"дилогия":     {},
	"тетралогия":  {},
	"пенталогия":  {},
	"сборник":     {},
	"сборка":      {},
	"сборки":      {},
	"авторский":   {},
	"авторская":   {},
	"авторское":   {},
	"цикл":        {},
	"цикла":       {},
	"циклов":      {},
	"серия":       {},
	"серии":       {},
	"компиляция":  {},
	"книга":       {},
	"книги":       {},
	"книг":        {},
	"издание":     {},
	"издания":     {},
	"переиздание": {},
}

// Matcher scores a filename against every compiled pattern and extracts the
// author candidate from the best one.
type Matcher struct {
	kinds []PatternKind
	rules *config.Rules
}

// NewMatcher compiles the configured pattern templates. Unsupported
// templates are a configuration error, reported rather than skipped.
func NewMatcher(rules *config.Rules) (*Matcher, error) {
	seen := map[PatternKind]struct{}{}
	kinds := make([]PatternKind, 0, len(rules.FilenamePatterns))

	for _, template := range rules.FilenamePatterns {
		kind, err := Compile(template)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if _, ok := seen[kind]; ok {
			continue
		}
		seen[kind] = struct{}{}
		kinds = append(kinds, kind)
	}

	return &Matcher{kinds: kinds, rules: rules}, nil
}

// ExtractAuthor returns the validated author candidate from a filename
// (extension already stripped), or empty when nothing matches.
func (m *Matcher) ExtractAuthor(filename string) string {
	if filename == "" || len(m.kinds) == 0 {
		return ""
	}

	s := AnalyzeFile(filename)

	best := PatternUnknown
	bestScore := 0.0
	for _, kind := range m.kinds {
		if score := Score(s, kind); score > bestScore {
			bestScore = score
			best = kind
		}
	}
	if best == PatternUnknown || bestScore <= minScore {
		return ""
	}

	candidate := Extract(s, best)
	if candidate == "" || len([]rune(candidate)) <= 2 {
		return ""
	}

	if strings.Contains(candidate, ", ") {
		validated := make([]string, 0, 2)
		for _, single := range strings.Split(candidate, ", ") {
			single = strings.TrimSpace(single)
			if single != "" && m.looksLikeAuthor(single) && names.IsValid(single, m.rules) {
				validated = append(validated, single)
			}
		}
		if len(validated) == 0 {
			return ""
		}
		return strings.Join(validated, ", ")
	}

	if !m.looksLikeAuthor(candidate) || !names.IsValid(candidate, m.rules) {
		return ""
	}
	return candidate
}

// looksLikeAuthor is the structural sanity check on an extracted candidate:
// it must start with a letter, not carry list punctuation, not contain a
// non-author keyword, and (for multi-word candidates, when name lists are
// configured) contain at least one known given name so that series titles
// like "Боевая фантастика" don't pass as people.
func (m *Matcher) looksLikeAuthor(text string) bool {
	runes := []rune(text)
	if len(runes) < 2 {
		return false
	}
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, ",") {
		return false
	}
	if !unicode.IsLetter(runes[0]) {
		return false
	}

	words := strings.Fields(config.FoldName(text))
	for _, word := range words {
		if _, ok := nonAuthorKeywords[word]; ok {
			return false
		}
	}

	if len(words) > 1 && m.rules.HasGivenNames() && !m.rules.ContainsGivenName(text) {
		return false
	}

	return true
}

package fileparse

import (
	"strings"

	"github.com/pkg/errors"
)

// PatternKind is the closed set of filename shapes the matcher supports.
// Config templates compile onto these variants, so an unsupported template
// is rejected at load time instead of silently never matching.
type PatternKind int

const (
	PatternUnknown PatternKind = iota
	// PatternAuthorDashTitle: "Author - Title", "Author - Title (Series)".
	PatternAuthorDashTitle
	// PatternParenAuthorDashTitle: "(Author) - Title".
	PatternParenAuthorDashTitle
	// PatternAuthorDotTitle: "Author. Title", "Author. Series. Title".
	PatternAuthorDotTitle
	// PatternTitleParenAuthor: "Title (Author)": last paren group wins.
	PatternTitleParenAuthor
	// PatternTitleDashParenAuthor: "Title - (Author)".
	PatternTitleDashParenAuthor
	// PatternAuthorsDashTitle: "Author, Author - Title (Series)".
	PatternAuthorsDashTitle
	// PatternAuthorsDotTitle: "Author, Author. Title (Series)".
	PatternAuthorsDotTitle
)

func (k PatternKind) String() string {
	switch k {
	case PatternAuthorDashTitle:
		return "author-dash-title"
	case PatternParenAuthorDashTitle:
		return "paren-author-dash-title"
	case PatternAuthorDotTitle:
		return "author-dot-title"
	case PatternTitleParenAuthor:
		return "title-paren-author"
	case PatternTitleDashParenAuthor:
		return "title-dash-paren-author"
	case PatternAuthorsDashTitle:
		return "authors-dash-title"
	case PatternAuthorsDotTitle:
		return "authors-dot-title"
	}
	return "unknown"
}

// Compile maps a config pattern template ("Author - Title (Series)" style
// mini-language) onto a PatternKind.
func Compile(template string) (PatternKind, error) {
	t := strings.ToLower(strings.TrimSpace(template))
	switch {
	case t == "":
		return PatternUnknown, errors.New("empty pattern template")
	case strings.HasPrefix(t, "(author)"):
		return PatternParenAuthorDashTitle, nil
	case strings.HasPrefix(t, "author, author"):
		if strings.Contains(t, " - ") {
			return PatternAuthorsDashTitle, nil
		}
		return PatternAuthorsDotTitle, nil
	case strings.HasPrefix(t, "author -"):
		return PatternAuthorDashTitle, nil
	case strings.HasPrefix(t, "author."):
		return PatternAuthorDotTitle, nil
	case strings.HasPrefix(t, "title - (author)"):
		return PatternTitleDashParenAuthor, nil
	case strings.HasPrefix(t, "title") && strings.Contains(t, "(author)"):
		return PatternTitleParenAuthor, nil
	}
	return PatternUnknown, errors.Errorf("unsupported pattern template: %q", template)
}

// Score rates how well a filename structure fits a pattern kind, 0.0–1.0.
// Each structural component the kind requires contributes equally.
func Score(s Structure, kind PatternKind) float64 {
	var met, total int
	check := func(ok bool) {
		total++
		if ok {
			met++
		}
	}

	switch kind {
	case PatternAuthorDashTitle:
		check(s.HasSpacedDash)
		check(!s.HasComma || s.HasCommaInParens)
		// The author slot is plain text; a paren opening the name or
		// following the dash belongs to the paren-author patterns.
		check(s.Positioning != PositionStart && s.Positioning != PositionWrap)
		check(!strings.Contains(s.Original, " - ("))
	case PatternParenAuthorDashTitle:
		check(s.Positioning == PositionStart || s.Positioning == PositionWrap)
		check(s.HasSpacedDash)
	case PatternAuthorDotTitle:
		check(s.HasDotSeparator)
		check(!s.HasSpacedDash)
		check(!s.HasComma || s.HasCommaInParens)
	case PatternTitleParenAuthor:
		check(s.Positioning == PositionEnd || s.Positioning == PositionMultiple)
		check(s.TextAfterLast == "")
		check(!s.HasCommaInParens)
	case PatternTitleDashParenAuthor:
		check(strings.Contains(s.Original, " - ("))
	case PatternAuthorsDashTitle:
		check(s.HasSpacedDash)
		check(s.HasComma && !s.HasCommaInParens)
		check(strings.Index(s.Original, ",") < strings.Index(s.Original, " - "))
	case PatternAuthorsDotTitle:
		check(s.HasDotSeparator)
		check(s.HasComma && !s.HasCommaInParens)
	default:
		return 0
	}

	check(len(s.Segments) > 0)

	if total == 0 {
		return 0
	}
	return float64(met) / float64(total)
}

// Extract applies the pattern kind's slice rule to the filename. Multiple
// authors are joined with ", ".
func Extract(s Structure, kind PatternKind) string {
	name := s.Original

	switch kind {
	case PatternAuthorDashTitle, PatternAuthorsDashTitle:
		if before, _, ok := strings.Cut(name, " - "); ok {
			return strings.TrimSpace(before)
		}

	case PatternParenAuthorDashTitle:
		if before, _, ok := strings.Cut(name, " - "); ok {
			return strings.Trim(strings.TrimSpace(before), "()")
		}

	case PatternAuthorDotTitle, PatternAuthorsDotTitle:
		if before, _, ok := strings.Cut(name, ". "); ok {
			return strings.TrimSpace(before)
		}

	case PatternTitleParenAuthor:
		if len(s.ParenContents) > 0 {
			return strings.TrimSpace(s.ParenContents[len(s.ParenContents)-1])
		}

	case PatternTitleDashParenAuthor:
		if _, after, ok := strings.Cut(name, " - ("); ok {
			if content, _, ok := strings.Cut(after, ")"); ok {
				return strings.TrimSpace(content)
			}
		}
	}
	return ""
}

// Package folderscan parses author candidates out of directory names and
// builds the directory→author cache consumed by the first pipeline pass.
package folderscan

import "strings"

// ParenSpan is one balanced parenthesized group inside a directory name.
type ParenSpan struct {
	Start   int
	End     int // exclusive, points past the closing paren
	Content string
}

// Positioning classifies where the parenthesized groups sit relative to the
// whole string.
type Positioning int

const (
	PositionNone Positioning = iota
	PositionStart
	PositionEnd
	PositionMiddle
	PositionWrap
	PositionMultiple
)

// Structure is the result of the structural analysis stage: everything the
// pattern decision table needs to know about a directory name.
type Structure struct {
	Name             string
	Parens           []ParenSpan
	Positioning      Positioning
	TextBeforeFirst  string
	TextAfterLast    string
	HasComma         bool
	HasCommaInParens bool
	HasSpacedDash    bool
}

// AnalyzeStructure locates parenthesized spans and the comma/dash signals
// in a directory name. Unclosed parens are treated as plain text.
func AnalyzeStructure(name string) Structure {
	name = strings.TrimSpace(name)
	runes := []rune(name)

	s := Structure{Name: name}

	for i := 0; i < len(runes); {
		if runes[i] != '(' {
			i++
			continue
		}
		j := i + 1
		for j < len(runes) && runes[j] != ')' {
			j++
		}
		if j == len(runes) {
			break
		}
		s.Parens = append(s.Parens, ParenSpan{
			Start:   i,
			End:     j + 1,
			Content: string(runes[i+1 : j]),
		})
		i = j + 1
	}

	if len(s.Parens) > 0 {
		first := s.Parens[0]
		last := s.Parens[len(s.Parens)-1]

		atStart := first.Start == 0
		atEnd := last.End == len(runes)

		switch {
		case len(s.Parens) == 1 && atStart:
			s.Positioning = PositionStart
		case len(s.Parens) == 1 && atEnd:
			s.Positioning = PositionEnd
		case len(s.Parens) == 1:
			s.Positioning = PositionMiddle
		case atStart && atEnd:
			s.Positioning = PositionWrap
		default:
			s.Positioning = PositionMultiple
		}

		s.TextBeforeFirst = strings.TrimSpace(string(runes[:first.Start]))
		s.TextAfterLast = strings.TrimSpace(string(runes[last.End:]))

		for _, span := range s.Parens {
			if strings.Contains(span.Content, ",") {
				s.HasCommaInParens = true
				break
			}
		}
	}

	s.HasComma = strings.Contains(name, ",")
	s.HasSpacedDash = strings.Contains(name, " - ")

	return s
}

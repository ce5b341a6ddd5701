// Package fileparse matches book filenames against a closed set of
// structural patterns and extracts author candidates from them.
package fileparse

import "strings"

// Positioning classifies paren placement within the filename.
type Positioning int

const (
	PositionNone Positioning = iota
	PositionStart
	PositionEnd
	PositionMiddle
	PositionWrap
	PositionMultiple
)

// Structure describes how a filename is organized: paren groups, segments,
// and delimiter signals.
type Structure struct {
	Original         string
	Segments         []string
	ParenContents    []string
	Positioning      Positioning
	TextBeforeFirst  string
	TextAfterLast    string
	HasComma         bool
	HasCommaInParens bool
	HasSpacedDash    bool
	HasDotSeparator  bool
}

type parenSpan struct {
	start, end int
	content    string
}

// AnalyzeFile performs the structural analysis of a filename (extension
// already stripped).
func AnalyzeFile(filename string) Structure {
	name := strings.TrimSpace(strings.TrimSuffix(filename, ".fb2"))
	runes := []rune(name)

	s := Structure{Original: name}

	var spans []parenSpan
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
		spans = append(spans, parenSpan{start: i, end: j + 1, content: string(runes[i+1 : j])})
		s.ParenContents = append(s.ParenContents, string(runes[i+1:j]))
		i = j + 1
	}

	if len(spans) > 0 {
		first, last := spans[0], spans[len(spans)-1]
		atStart := first.start == 0
		atEnd := last.end == len(runes)
		switch {
		case len(spans) == 1 && atStart:
			s.Positioning = PositionStart
		case len(spans) == 1 && atEnd:
			s.Positioning = PositionEnd
		case len(spans) == 1:
			s.Positioning = PositionMiddle
		case atStart && atEnd:
			s.Positioning = PositionWrap
		default:
			s.Positioning = PositionMultiple
		}
		s.TextBeforeFirst = strings.TrimSpace(string(runes[:first.start]))
		s.TextAfterLast = strings.TrimSpace(string(runes[last.end:]))
		for _, content := range s.ParenContents {
			if strings.Contains(content, ",") {
				s.HasCommaInParens = true
				break
			}
		}
	}

	s.HasComma = strings.Contains(name, ",")
	s.HasSpacedDash = strings.Contains(name, " - ")
	s.HasDotSeparator = strings.Contains(name, ". ")
	s.Segments = segment(runes, spans)

	return s
}

// segment splits the filename into logical text chunks on " - ", ". ",
// ", " and paren boundaries.
func segment(runes []rune, spans []parenSpan) []string {
	var segments []string
	var current strings.Builder

	flush := func() {
		if text := strings.TrimSpace(current.String()); text != "" {
			segments = append(segments, text)
		}
		current.Reset()
	}

	for i := 0; i < len(runes); {
		skipped := false
		for _, span := range spans {
			if i == span.start {
				flush()
				i = span.end
				skipped = true
				break
			}
		}
		if skipped {
			continue
		}

		if i+2 < len(runes) && runes[i] == ' ' && runes[i+1] == '-' && runes[i+2] == ' ' {
			flush()
			i += 3
			continue
		}
		if (runes[i] == '.' || runes[i] == ',') && i+1 < len(runes) && runes[i+1] == ' ' {
			flush()
			i += 2
			continue
		}

		current.WriteRune(runes[i])
		i++
	}
	flush()

	return segments
}

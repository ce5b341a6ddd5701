// Package fb2 extracts description-header metadata from FB2 files,
// tolerating the malformed XML, mixed encodings, and zip wrapping common in
// old libraries. Only the first <title-info> block is authoritative.
package fb2

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fb2shelf/fb2shelf/pkg/config"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

var (
	titleInfoRE = regexp.MustCompile(`(?s)<(?:fb:)?title-info>.*?</(?:fb:)?title-info>`)
	authorRE    = regexp.MustCompile(`(?s)<author>.*?</author>`)
	firstNameRE = regexp.MustCompile(`<first-name>(.*?)</first-name>`)
	lastNameRE  = regexp.MustCompile(`<last-name>(.*?)</last-name>`)
	bookTitleRE = regexp.MustCompile(`<book-title>(.*?)</book-title>`)
	sequenceRE  = regexp.MustCompile(`<sequence[^>]*\bname="([^"]*)"[^>]*/?>`)
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Metadata is the description-header content of one book file.
type Metadata struct {
	Title   string
	Authors []string
	Series  string
}

// AuthorsJoined returns all declared authors joined by "; ", the separator
// the pipeline uses for multi-author strings.
func (m *Metadata) AuthorsJoined() string {
	return strings.Join(m.Authors, "; ")
}

// FirstAuthor returns the first declared author, or empty.
func (m *Metadata) FirstAuthor() string {
	if len(m.Authors) == 0 {
		return ""
	}
	return m.Authors[0]
}

// ReadMetadata opens a book file (plain or zip-wrapped), decodes it through
// the encoding fallback chain, and scans the first title-info block. Any
// failure returns an error the caller should treat as "no metadata".
func ReadMetadata(path string, rules *config.Rules) (*Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if mimetype.Detect(raw).Is("application/zip") {
		raw, err = extractZipMember(raw)
		if err != nil {
			return nil, err
		}
	}

	content := decode(raw)
	return parse(content, rules), nil
}

// extractZipMember returns the bytes of the first .fb2 member, falling back
// to the first member of any name.
func extractZipMember(raw []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(reader.File) == 0 {
		return nil, errors.New("zip container has no members")
	}

	member := reader.File[0]
	for _, f := range reader.File {
		if strings.EqualFold(filepath.Ext(f.Name), ".fb2") {
			member = f
			break
		}
	}

	rc, err := member.Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// decode picks the encoding: utf-8 with BOM, plain utf-8, then cp1251.
// The cp1251 decoder substitutes undefined bytes instead of failing, so
// decode always returns something scannable.
func decode(raw []byte) string {
	if bytes.HasPrefix(raw, utf8BOM) {
		return string(bytes.TrimPrefix(raw, utf8BOM))
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, _ := charmap.Windows1251.NewDecoder().Bytes(raw)
	return string(decoded)
}

func parse(content string, rules *config.Rules) *Metadata {
	m := &Metadata{}

	titleInfo := titleInfoRE.FindString(content)
	if titleInfo == "" {
		return m
	}

	for _, authorBlock := range authorRE.FindAllString(titleInfo, -1) {
		// Only first-name + last-name; nicknames are junk more often than
		// not.
		first := submatch(firstNameRE, authorBlock)
		last := submatch(lastNameRE, authorBlock)
		name := strings.TrimSpace(first + " " + last)
		if name == "" || rules.MatchesBlacklist(name) {
			continue
		}
		m.Authors = append(m.Authors, name)
	}

	m.Title = strings.TrimSpace(submatch(bookTitleRE, titleInfo))
	m.Series = strings.TrimSpace(submatch(sequenceRE, titleInfo))

	return m
}

func submatch(re *regexp.Regexp, s string) string {
	match := re.FindStringSubmatch(s)
	if match == nil {
		return ""
	}
	return match[1]
}

package config

import (
	"io/fs"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// blacklistThreshold is the inclusion ratio above which a blacklist phrase
// disqualifies a candidate: the phrase must make up at least this share of
// the candidate string.
const blacklistThreshold = 0.6

const defaultFolderParseLimit = 3

// Rules is the immutable inference rule bundle. It is loaded once at
// pipeline start and passed by reference into every component; there is no
// global rule state anywhere else.
type Rules struct {
	MaleNames           []string          `json:"male_names"`
	FemaleNames         []string          `json:"female_names"`
	FilenameBlacklist   []string          `json:"filename_blacklist"`
	SurnameConversions  map[string]string `json:"author_surname_conversions"`
	CollectionKeywords  []string          `json:"collection_keywords"`
	ServiceWords        []string          `json:"service_words"`
	InitialsAndSuffixes []string          `json:"author_initials_and_suffixes"`
	FilenamePatterns    []string          `json:"author_series_patterns_in_files"`
	FolderParseLimit    int               `json:"folder_parse_limit"`

	nameSet        map[string]struct{}
	suffixSet      map[string]struct{}
	blacklist      []string
	conversionKeys []string
}

// LoadRules reads the JSON rule bundle from path. A missing file yields an
// empty rule set: every heuristic that depends on a list degrades to a
// no-op rather than failing.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewRules(&Rules{}), nil
		}
		return nil, errors.WithStack(err)
	}

	rules := &Rules{}
	if err := json.Unmarshal(data, rules); err != nil {
		return nil, errors.Wrapf(err, "failed to parse rules file: %s", path)
	}

	return NewRules(rules), nil
}

// NewRules finalizes a rule bundle: it builds the case-folded lookup sets
// and fixes the conversion iteration order so every run is deterministic.
func NewRules(rules *Rules) *Rules {
	if rules.FolderParseLimit <= 0 {
		rules.FolderParseLimit = defaultFolderParseLimit
	}

	rules.nameSet = make(map[string]struct{}, len(rules.MaleNames)+len(rules.FemaleNames))
	for _, name := range rules.MaleNames {
		if name != "" {
			rules.nameSet[FoldName(name)] = struct{}{}
		}
	}
	for _, name := range rules.FemaleNames {
		if name != "" {
			rules.nameSet[FoldName(name)] = struct{}{}
		}
	}

	rules.suffixSet = make(map[string]struct{}, len(rules.InitialsAndSuffixes))
	for _, suffix := range rules.InitialsAndSuffixes {
		if suffix != "" {
			rules.suffixSet[FoldName(suffix)] = struct{}{}
		}
	}

	rules.blacklist = make([]string, 0, len(rules.FilenameBlacklist))
	for _, phrase := range rules.FilenameBlacklist {
		if phrase != "" {
			rules.blacklist = append(rules.blacklist, FoldName(phrase))
		}
	}

	rules.conversionKeys = make([]string, 0, len(rules.SurnameConversions))
	for key := range rules.SurnameConversions {
		rules.conversionKeys = append(rules.conversionKeys, key)
	}
	sort.Strings(rules.conversionKeys)

	return rules
}

// FoldName lowercases a name fragment and folds ё to е so that lookups are
// insensitive to the two accepted spellings.
func FoldName(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "ё", "е")
}

// HasGivenNames reports whether any given-name lists are configured at
// all. Heuristics that require a recognized name are skipped when the
// lists are absent.
func (r *Rules) HasGivenNames() bool {
	return len(r.nameSet) > 0
}

// IsKnownGivenName reports whether the word is in the configured male or
// female given-name lists.
func (r *Rules) IsKnownGivenName(word string) bool {
	_, ok := r.nameSet[FoldName(word)]
	return ok
}

// ContainsGivenName reports whether any word of the text is a recognized
// given name. Used to validate folder-derived author candidates.
func (r *Rules) ContainsGivenName(text string) bool {
	for _, word := range strings.Fields(text) {
		if r.IsKnownGivenName(word) {
			return true
		}
	}
	return false
}

// IsNameSuffix reports whether the word is a configured initials suffix
// such as "мл" or "старший".
func (r *Rules) IsNameSuffix(word string) bool {
	_, ok := r.suffixSet[FoldName(word)]
	return ok
}

// MatchesBlacklist reports whether a blacklist phrase makes up at least 60%
// of the string. Such strings are folder or series labels, not authors.
func (r *Rules) MatchesBlacklist(s string) bool {
	if len(r.blacklist) == 0 || s == "" {
		return false
	}

	folded := FoldName(s)
	for _, phrase := range r.blacklist {
		if !strings.Contains(folded, phrase) {
			continue
		}
		// Ratio over runes, not bytes, so mixed Cyrillic/Latin strings
		// are weighed the same as pure Cyrillic ones.
		ratio := float64(utf8.RuneCountInString(phrase)) / float64(utf8.RuneCountInString(folded))
		if ratio >= blacklistThreshold {
			return true
		}
	}
	return false
}

// ApplyConversions rewrites known pseudonyms and surname aliases to their
// canonical form. Replacements run in sorted key order.
func (r *Rules) ApplyConversions(s string) string {
	if s == "" {
		return s
	}
	for _, key := range r.conversionKeys {
		if strings.Contains(s, key) {
			s = strings.ReplaceAll(s, key, r.SurnameConversions[key])
		}
	}
	return s
}

// HasCollectionKeyword reports whether the filename contains one of the
// configured anthology markers (e.g. "сборник").
func (r *Rules) HasCollectionKeyword(filename string) bool {
	folded := FoldName(filename)
	for _, keyword := range r.CollectionKeywords {
		if keyword != "" && strings.Contains(folded, FoldName(keyword)) {
			return true
		}
	}
	return false
}

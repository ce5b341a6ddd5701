// Package names normalizes Russian author names to the canonical
// "Фамилия Имя [Отчество]" form and decides whether a string plausibly
// denotes a person at all.
package names

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/fb2shelf/fb2shelf/pkg/config"
)

var (
	// "Живой А.Я." / "Живой А. Я.": initials after the surname. These are
	// already in canonical order and must not be reparsed.
	surnameInitialsRE = regexp.MustCompile(`^[А-Яа-я]+\s+[А-Яа-я]\.\s*([А-Яа-я]\.)?$`)

	parenGroupRE      = regexp.MustCompile(`\(([^)]+)\)`)
	consecutiveDotsRE = regexp.MustCompile(`\.{2,}`)
	punctuationRE     = regexp.MustCompile(`[,;:!?\-–—()\[\]{}«»"'` + "`" + `]`)
)

var patronymicSuffixes = []string{"ович", "евич", "овна", "евна"}

// surnameSuffixes are common Russian surname endings, longest first so the
// more specific ending wins.
var surnameSuffixes = []string{
	"ская", "ский", "ович", "евич", "овна", "евна",
	"ова", "ева", "ина", "ына", "цов", "иев",
	"ов", "ев", "ин", "ын", "ан", "ян", "ер", "ор",
	"ич", "иц", "ей", "ко", "ли", "ло", "ды", "ца",
}

const vowels = "aeiouAEIOUаеиоуыэюяАЕИОУЫЭЮЯ"

// Name is the parsed form of a raw author string. Zero value is invalid.
type Name struct {
	Raw        string
	Valid      bool
	Surname    string
	Given      string
	Patronymic string

	// verbatim marks exception formats ("Surname И.О.", pseudonym with a
	// parenthesized real name) that are kept as-is; Surname holds the whole
	// string in that case.
	verbatim bool
}

// Parse analyzes a raw author name against the configured rule bundle.
func Parse(raw string, rules *config.Rules) Name {
	n := Name{Raw: foldYo(strings.TrimSpace(raw))}
	n.Valid = validate(n.Raw, rules)
	if !n.Valid {
		return n
	}
	n.extractParts(rules)
	return n
}

// Normalize parses and returns the canonical form, falling back to the raw
// string when the input cannot be treated as a person name.
func Normalize(raw string, rules *config.Rules) string {
	n := Parse(raw, rules)
	if normalized := n.Normalized(rules); normalized != "" {
		return normalized
	}
	return n.Raw
}

// IsValid reports whether the string plausibly denotes a person.
func IsValid(raw string, rules *config.Rules) bool {
	return Parse(raw, rules).Valid
}

// Normalized returns "Surname Given [Patronymic]" space-joined, or empty
// when the name is invalid or the joined result still matches the
// blacklist.
func (n Name) Normalized(rules *config.Rules) string {
	if !n.Valid {
		return ""
	}

	parts := make([]string, 0, 3)
	for _, part := range []string{n.Surname, n.Given, n.Patronymic} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	result := foldYo(strings.Join(parts, " "))
	if result != "" && rules.MatchesBlacklist(result) {
		return ""
	}
	return result
}

// Completeness scores how much of the name is present: 0 invalid,
// 1 surname-only or verbatim initials, 2 surname+given, 3 full three-part.
func (n Name) Completeness() int {
	if !n.Valid {
		return 0
	}
	score := 0
	for _, part := range []string{n.Surname, n.Given, n.Patronymic} {
		if part != "" {
			score++
		}
	}
	return score
}

func validate(raw string, rules *config.Rules) bool {
	if len([]rune(raw)) < 2 {
		return false
	}
	if rules.MatchesBlacklist(raw) {
		return false
	}
	if strings.ContainsAny(raw, `/\`) {
		return false
	}
	if consecutiveDotsRE.MatchString(raw) {
		return false
	}

	clean := strings.TrimSpace(punctuationRE.ReplaceAllString(raw, " "))
	if clean == "" || isDigitsOnly(clean) {
		return false
	}

	words := strings.Fields(clean)
	if len(words) == 0 {
		return false
	}
	for _, word := range words {
		// Dots do not count toward word length, so "И. П." stays a pair
		// of bare initials rather than two real words.
		if len([]rune(strings.ReplaceAll(word, ".", ""))) > 1 {
			return true
		}
	}
	return false
}

func (n *Name) extractParts(rules *config.Rules) {
	// Exception: "Surname И.О." is kept verbatim.
	if surnameInitialsRE.MatchString(n.Raw) {
		n.Surname = n.Raw
		n.verbatim = true
		return
	}

	parenMatch := parenGroupRE.FindStringSubmatch(n.Raw)
	mainPart := strings.TrimSpace(parenGroupRE.ReplaceAllString(n.Raw, ""))

	// Exception: single-word pseudonym with the real name in parentheses,
	// e.g. "Гоблин (MeXXanik)". Kept verbatim.
	if parenMatch != nil && mainPart != "" && len(strings.Fields(mainPart)) == 1 {
		n.Surname = n.Raw
		n.verbatim = true
		return
	}

	allText := mainPart
	if parenMatch != nil {
		allText = strings.TrimSpace(allText + " " + strings.TrimSpace(parenMatch[1]))
	}

	words := make([]string, 0, 4)
	for _, word := range strings.Fields(allText) {
		if len([]rune(word)) > 1 {
			words = append(words, word)
		}
	}

	switch len(words) {
	case 0:
		n.Valid = false
		return
	case 1:
		n.Surname = words[0]
		return
	}

	if isPatronymic(words[len(words)-1]) {
		n.Patronymic = words[len(words)-1]
		words = words[:len(words)-1]
	}

	// Generational suffixes like "мл"/"старший" carry no name information.
	for len(words) > 0 && rules.IsNameSuffix(words[len(words)-1]) {
		words = words[:len(words)-1]
	}

	switch len(words) {
	case 0:
		return
	case 1:
		n.Surname = words[0]
	case 2:
		n.Surname, n.Given = orderTwoWords(words[0], words[1], rules)
	default:
		n.orderManyWords(words)
	}
}

// orderTwoWords decides which of two words is the surname: configured name
// lists first, then surname-suffix shape, then vowel density (surnames
// average fewer vowels) as a last resort.
func orderTwoWords(first, second string, rules *config.Rules) (surname, given string) {
	firstIsName := rules.IsKnownGivenName(first)
	secondIsName := rules.IsKnownGivenName(second)

	switch {
	case firstIsName && !secondIsName:
		return second, first
	case secondIsName && !firstIsName:
		return first, second
	}

	firstIsSurname := hasSurnameSuffix(first)
	secondIsSurname := hasSurnameSuffix(second)

	switch {
	case firstIsSurname && !secondIsSurname:
		return first, second
	case secondIsSurname && !firstIsSurname:
		return second, first
	}

	if vowelRatio(first) < vowelRatio(second) {
		return first, second
	}
	return second, first
}

func (n *Name) orderManyWords(words []string) {
	for i, word := range words {
		if !isPatronymic(word) {
			continue
		}
		switch {
		case i == 1 && len(words) >= 3:
			n.Given = words[0]
			n.Patronymic = word
			n.Surname = words[len(words)-1]
			return
		case i > 1:
			n.Given = strings.Join(words[:i], " ")
			n.Patronymic = word
			n.Surname = words[len(words)-1]
			return
		}
	}

	// "Имя И. Фамилия": a short dotted middle word is an initial belonging
	// to the given name.
	middle := words[1]
	if len([]rune(middle)) <= 3 && strings.HasSuffix(middle, ".") {
		n.Given = words[0] + " " + middle
		if len(words) > 2 {
			n.Surname = words[len(words)-1]
		}
		return
	}

	n.Given = words[0]
	n.Surname = words[len(words)-1]
	for _, word := range words[1 : len(words)-1] {
		if hasSurnameSuffix(word) {
			n.Surname = word
			break
		}
	}
}

func isPatronymic(word string) bool {
	folded := strings.ToLower(word)
	for _, suffix := range patronymicSuffixes {
		if strings.HasSuffix(folded, suffix) {
			return true
		}
	}
	return false
}

func hasSurnameSuffix(word string) bool {
	folded := strings.ToLower(word)
	runes := len([]rune(folded))
	if runes < 3 {
		return false
	}
	for _, suffix := range surnameSuffixes {
		// The stem must keep at least two runes, otherwise short given
		// names like "Лев" match the bare "ев" ending.
		if strings.HasSuffix(folded, suffix) && runes-len([]rune(suffix)) >= 2 {
			return true
		}
	}
	return false
}

func vowelRatio(word string) float64 {
	runes := []rune(word)
	if len(runes) == 0 {
		return 0
	}
	count := 0
	for _, r := range runes {
		if strings.ContainsRune(vowels, r) {
			count++
		}
	}
	return float64(count) / float64(len(runes))
}

func isDigitsOnly(s string) bool {
	seen := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if !unicode.IsDigit(r) {
			return false
		}
		seen = true
	}
	return seen
}

func foldYo(s string) string {
	s = strings.ReplaceAll(s, "ё", "е")
	return strings.ReplaceAll(s, "Ё", "Е")
}

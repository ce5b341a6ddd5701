package pipeline

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/fb2shelf/fb2shelf/pkg/config"
	"github.com/fb2shelf/fb2shelf/pkg/names"
)

// minCollectionAuthors is how many distinct metadata authors a file needs
// before a collection keyword in its name reclassifies it as an anthology.
const minCollectionAuthors = 3

// applyFilenames tries the configured filename patterns on every record the
// read pass left undetermined. Folder-derived authors are never replaced.
func (p *Pipeline) applyFilenames(records []*Record) {
	for _, r := range records {
		if r.AuthorSource != SourceUndetermined {
			continue
		}
		if candidate := p.matcher.ExtractAuthor(bookBaseName(r.FilePath)); candidate != "" {
			r.ProposedAuthor = candidate
			r.AuthorSource = SourceFilename
		}
	}
}

// applyMetadataFallback resolves the remaining records from their own
// metadata. Files declaring many unrelated authors together with a
// collection keyword in the name are anthologies and get the sentinel
// author instead.
func (p *Pipeline) applyMetadataFallback(records []*Record) {
	for _, r := range records {
		if r.ProposedAuthor != "" || r.MetadataAuthors == "" {
			continue
		}

		authors := splitAuthors(r.MetadataAuthors)
		if len(authors) >= minCollectionAuthors && p.rules.HasCollectionKeyword(bookBaseName(r.FilePath)) {
			r.ProposedAuthor = CollectionAuthor
			r.AuthorSource = SourceCollection
			continue
		}

		r.ProposedAuthor = r.MetadataAuthors
		r.AuthorSource = SourceMetadata
	}
}

// normalizeAuthors rewrites every proposed author to the canonical
// "Фамилия Имя [Отчество]" form. Multi-author strings are normalized
// per entry and re-joined with ", ". Single-word entries in a list are
// first matched back against the file's own metadata, which often carries
// the full form of the same person.
func (p *Pipeline) normalizeAuthors(records []*Record) {
	for _, r := range records {
		if r.ProposedAuthor == "" || r.IsCollection() {
			continue
		}

		entries := splitAuthors(r.ProposedAuthor)
		if len(entries) == 1 {
			r.ProposedAuthor = names.Normalize(r.ProposedAuthor, p.rules)
			continue
		}

		normalized := make([]string, 0, len(entries))
		for _, entry := range entries {
			if !strings.Contains(entry, " ") {
				if recovered := recoverFromMetadata(entry, r.MetadataAuthors); recovered != "" {
					entry = recovered
				}
			}
			normalized = append(normalized, names.Normalize(entry, p.rules))
		}
		r.ProposedAuthor = strings.Join(normalized, ", ")
	}
}

// recoverFromMetadata finds the metadata author containing the given
// single word (usually a bare surname) and returns the full form.
func recoverFromMetadata(word, metadataAuthors string) string {
	if metadataAuthors == "" {
		return ""
	}
	folded := config.FoldName(word)
	for _, author := range splitAuthors(metadataAuthors) {
		for _, part := range strings.Fields(config.FoldName(author)) {
			if part == folded {
				return author
			}
		}
	}
	return ""
}

// applyConsensus fills records that are still undetermined with the most
// frequent author among their directory's already-resolved records. Ties
// break to the lexicographically smaller author so runs are reproducible.
func (p *Pipeline) applyConsensus(records []*Record) {
	groups := map[string][]*Record{}
	for _, r := range records {
		dir := filepath.Dir(r.FilePath)
		groups[dir] = append(groups[dir], r)
	}

	for _, group := range groups {
		counts := map[string]int{}
		for _, r := range group {
			if r.AuthorProtected() && r.ProposedAuthor != "" && !r.IsCollection() {
				counts[r.ProposedAuthor]++
			}
		}
		if len(counts) == 0 {
			continue
		}

		var best string
		bestCount := 0
		for author, count := range counts {
			if count > bestCount || (count == bestCount && author < best) {
				best = author
				bestCount = count
			}
		}

		for _, r := range group {
			if r.AuthorSource == SourceUndetermined && r.ProposedAuthor == "" {
				r.ProposedAuthor = best
				r.AuthorSource = SourceConsensus
			}
		}
	}
}

// applyConversions rewrites known pseudonyms to their canonical surnames.
func (p *Pipeline) applyConversions(records []*Record) {
	for _, r := range records {
		if r.ProposedAuthor == "" || r.IsCollection() {
			continue
		}
		r.ProposedAuthor = p.rules.ApplyConversions(r.ProposedAuthor)
	}
}

var (
	initialSurnameRE = regexp.MustCompile(`^([А-ЯЁ])\.\s*([А-Яа-яЁё-]+)$`)
	surnameInitialRE = regexp.MustCompile(`^([А-Яа-яЁё-]+)\s+([А-ЯЁ])\.$`)
)

// expandAbbreviations replaces dotted-initial forms ("И. Петров",
// "Петров И.") with the full name of the same person found elsewhere in
// the scan. Candidates come from every full proposed author and every
// normalized metadata author; each surname's candidate list is sorted so
// the substitution is deterministic.
func (p *Pipeline) expandAbbreviations(records []*Record) {
	index := buildSurnameIndex(records, p.rules)
	if len(index) == 0 {
		return
	}

	for _, r := range records {
		if r.IsCollection() || !strings.Contains(r.ProposedAuthor, ".") {
			continue
		}

		entries := splitAuthors(r.ProposedAuthor)
		changed := false
		for i, entry := range entries {
			initial, surname, ok := parseAbbreviated(entry)
			if !ok {
				continue
			}
			if full := lookupFullName(index, initial, surname); full != "" {
				entries[i] = full
				changed = true
			}
		}
		if changed {
			r.ProposedAuthor = strings.Join(entries, ", ")
		}
	}
}

// buildSurnameIndex maps folded surnames to every full (multi-word,
// dot-free) name seen for that surname across the whole scan.
func buildSurnameIndex(records []*Record, rules *config.Rules) map[string][]string {
	seen := map[string]map[string]struct{}{}

	add := func(full string) {
		words := strings.Fields(full)
		if len(words) < 2 || strings.Contains(full, ".") {
			return
		}
		key := config.FoldName(words[0])
		if seen[key] == nil {
			seen[key] = map[string]struct{}{}
		}
		seen[key][full] = struct{}{}
	}

	for _, r := range records {
		if !r.IsCollection() {
			for _, entry := range splitAuthors(r.ProposedAuthor) {
				add(entry)
			}
		}
		for _, entry := range splitAuthors(r.MetadataAuthors) {
			add(names.Normalize(entry, rules))
		}
	}

	index := make(map[string][]string, len(seen))
	for key, fulls := range seen {
		list := make([]string, 0, len(fulls))
		for full := range fulls {
			list = append(list, full)
		}
		sort.Strings(list)
		index[key] = list
	}
	return index
}

// parseAbbreviated recognizes the two dotted-initial shapes and returns
// the initial letter and surname.
func parseAbbreviated(entry string) (initial, surname string, ok bool) {
	entry = strings.TrimSpace(entry)
	if m := initialSurnameRE.FindStringSubmatch(entry); m != nil {
		return m[1], m[2], true
	}
	if m := surnameInitialRE.FindStringSubmatch(entry); m != nil {
		return m[2], m[1], true
	}
	return "", "", false
}

// lookupFullName returns the first candidate for the surname whose given
// name starts with the initial.
func lookupFullName(index map[string][]string, initial, surname string) string {
	folded := config.FoldName(initial)
	for _, candidate := range index[config.FoldName(surname)] {
		words := strings.Fields(candidate)
		if len(words) < 2 {
			continue
		}
		if strings.HasPrefix(config.FoldName(words[1]), folded) {
			return candidate
		}
	}
	return ""
}

// splitAuthors splits a multi-author string on both accepted separators.
// Metadata joins with "; ", normalized output joins with ", ".
func splitAuthors(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, chunk := range strings.Split(s, "; ") {
		for _, entry := range strings.Split(chunk, ", ") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				out = append(out, entry)
			}
		}
	}
	return out
}

package folderscan

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fb2shelf/fb2shelf/pkg/config"
	"github.com/robinjoseph08/golib/logger"
)

// Confidence grades a cache entry. High-confidence directories directly
// contain book files; low-confidence entries only exist so that a parsed
// name can propagate to descendant directories.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Entry is a cached author candidate for one directory.
type Entry struct {
	Author     string
	Confidence Confidence
}

// Cache maps directory paths to parsed author candidates. It is built once
// per scan in the precache phase and read-only afterwards.
type Cache struct {
	workdir string
	entries map[string]Entry
}

// BuildCache walks the working directory once and caches an author
// candidate for every directory whose name parses as a person and contains
// at least one recognized given name. Unreadable subtrees are skipped.
func BuildCache(ctx context.Context, workdir string, rules *config.Rules) *Cache {
	log := logger.FromContext(ctx)

	cache := &Cache{
		workdir: filepath.Clean(workdir),
		entries: map[string]Entry{},
	}

	subdirs, err := listSubdirs(cache.workdir)
	if err != nil {
		log.Err(err).Warn("precache: can't read working directory")
		return cache
	}
	for _, dir := range subdirs {
		cache.scan(dir, 1, rules)
	}

	log.Info("precache built", logger.Data{"cached_folders": len(cache.entries)})
	return cache
}

func (c *Cache) scan(dir string, depth int, rules *config.Rules) {
	if depth > rules.FolderParseLimit {
		return
	}

	name := filepath.Base(dir)
	author := ParseAuthor(rules.ApplyConversions(name))

	if author != "" && rules.ContainsGivenName(author) {
		confidence := ConfidenceLow
		if containsBookFiles(dir) {
			confidence = ConfidenceHigh
		}
		c.entries[dir] = Entry{Author: author, Confidence: confidence}
	}

	subdirs, err := listSubdirs(dir)
	if err != nil {
		return
	}
	for _, sub := range subdirs {
		c.scan(sub, depth+1, rules)
	}
}

// Lookup returns the cached entry for an exact directory path.
func (c *Cache) Lookup(dir string) (Entry, bool) {
	entry, ok := c.entries[filepath.Clean(dir)]
	return entry, ok
}

// Resolve walks up from a file's directory through the cache, at most
// limit levels and never past the working directory, returning the first
// cached author. Low-confidence entries only serve descendant directories,
// never the directory they were parsed from.
func (c *Cache) Resolve(fileDir string, limit int) (string, bool) {
	dir := filepath.Clean(fileDir)
	for level := 0; level < limit; level++ {
		if dir == c.workdir {
			return "", false
		}
		if entry, ok := c.entries[dir]; ok && (entry.Confidence == ConfidenceHigh || level > 0) {
			return entry.Author, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
	return "", false
}

// Len reports how many directories have cached candidates.
func (c *Cache) Len() int {
	return len(c.entries)
}

func listSubdirs(dir string) ([]string, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	subdirs := make([]string, 0, len(dirents))
	for _, dirent := range dirents {
		if dirent.IsDir() && !strings.HasPrefix(dirent.Name(), ".") {
			subdirs = append(subdirs, filepath.Join(dir, dirent.Name()))
		}
	}
	return subdirs, nil
}

func containsBookFiles(dir string) bool {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, dirent := range dirents {
		if !dirent.IsDir() && IsBookFile(dirent.Name()) {
			return true
		}
	}
	return false
}

// IsBookFile reports whether the filename is a book in one of the supported
// containers. Discovery and the precache share this predicate.
func IsBookFile(name string) bool {
	folded := strings.ToLower(name)
	return strings.HasSuffix(folded, ".fb2") || strings.HasSuffix(folded, ".fb2.zip")
}

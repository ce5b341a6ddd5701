package pipeline

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fb2shelf/fb2shelf/pkg/config"
	"github.com/fb2shelf/fb2shelf/pkg/fb2"
	"github.com/fb2shelf/fb2shelf/pkg/fileparse"
	"github.com/fb2shelf/fb2shelf/pkg/folderscan"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// ErrNoBooks is returned when the working directory contains no book files
// at all. Callers treat it as a hard scan failure rather than an empty
// result.
var ErrNoBooks = errors.New("no book files found in working directory")

// ProgressFunc is called after each file is read during the read pass.
type ProgressFunc func(processed, total int)

// Pipeline runs the full resolution sequence over a working directory. It
// is stateless between runs; all tunables come from the rule bundle.
type Pipeline struct {
	rules   *config.Rules
	matcher *fileparse.Matcher
}

// New builds a pipeline, compiling the configured filename patterns.
func New(rules *config.Rules) (*Pipeline, error) {
	matcher, err := fileparse.NewMatcher(rules)
	if err != nil {
		return nil, err
	}
	return &Pipeline{rules: rules, matcher: matcher}, nil
}

// Run executes every pass in order and returns one record per book file,
// sorted by relative path. progress may be nil.
func (p *Pipeline) Run(ctx context.Context, workdir string, progress ProgressFunc) ([]*Record, error) {
	log := logger.FromContext(ctx)
	workdir = filepath.Clean(workdir)

	files, err := discoverBooks(workdir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.WithStack(ErrNoBooks)
	}

	log.Info("scan started", logger.Data{
		"working_directory": workdir,
		"files":             len(files),
	})

	cache := folderscan.BuildCache(ctx, workdir, p.rules)

	records, err := p.readFiles(ctx, workdir, files, cache, progress)
	if err != nil {
		return nil, err
	}

	p.applyFilenames(records)
	p.applyMetadataFallback(records)
	p.normalizeAuthors(records)
	p.applyConsensus(records)
	p.applyConversions(records)
	p.expandAbbreviations(records)

	log.Info("scan finished", logger.Data{
		"records": len(records),
		"sources": countSources(records),
	})

	return records, nil
}

// readFiles is the read pass: one record per file, with metadata extracted
// from the file itself and the author seeded from the folder cache when a
// parent directory resolved to a person.
func (p *Pipeline) readFiles(ctx context.Context, workdir string, files []string, cache *folderscan.Cache, progress ProgressFunc) ([]*Record, error) {
	log := logger.FromContext(ctx)
	records := make([]*Record, 0, len(files))

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		rel, err := filepath.Rel(workdir, path)
		if err != nil {
			rel = path
		}

		meta, err := fb2.ReadMetadata(path, p.rules)
		if err != nil {
			log.Err(err).Warn("failed to read book metadata", logger.Data{"file_path": rel})
			meta = &fb2.Metadata{}
		}

		record := &Record{
			FilePath:        rel,
			FileTitle:       meta.Title,
			MetadataAuthors: meta.AuthorsJoined(),
			MetadataSeries:  meta.Series,
		}
		if meta.Series != "" {
			record.ProposedSeries = meta.Series
			record.SeriesSource = SourceMetadata
		}
		if author, ok := cache.Resolve(filepath.Dir(path), p.rules.FolderParseLimit); ok {
			record.ProposedAuthor = author
			record.AuthorSource = SourceFolderDataset
		}

		records = append(records, record)
		if progress != nil {
			progress(i+1, len(files))
		}
	}

	return records, nil
}

// discoverBooks collects every .fb2 and .fb2.zip file under workdir,
// skipping dot-directories, in sorted order.
func discoverBooks(workdir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(workdir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != workdir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if folderscan.IsBookFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk working directory: %s", workdir)
	}

	sort.Strings(files)
	return files, nil
}

// bookBaseName strips the book extension from a file path's base, leaving
// the part the filename patterns operate on.
func bookBaseName(path string) string {
	base := filepath.Base(path)
	folded := strings.ToLower(base)
	switch {
	case strings.HasSuffix(folded, ".fb2.zip"):
		return base[:len(base)-len(".fb2.zip")]
	case strings.HasSuffix(folded, ".fb2"):
		return base[:len(base)-len(".fb2")]
	}
	return base
}

func countSources(records []*Record) map[string]int {
	counts := map[string]int{}
	for _, r := range records {
		key := r.AuthorSource
		if key == SourceUndetermined {
			key = "undetermined"
		}
		counts[key]++
	}
	return counts
}

// Package pipeline implements the multi-pass author/series resolution over
// a working directory of FB2 files. Each pass has a single responsibility
// and the passes run strictly in order: later passes assume the invariants
// established by earlier ones.
package pipeline

// Author source tags, ordered by trust. Once a record carries
// SourceFolderDataset it is never overwritten by any later pass; metadata
// and consensus sources are likewise protected from the filename and
// consensus passes.
const (
	SourceUndetermined  = ""
	SourceFolderDataset = "folder_dataset"
	SourceFilename      = "filename"
	SourceMetadata      = "metadata"
	SourceConsensus     = "consensus"
	SourceCollection    = "collection"
)

// CollectionAuthor is the sentinel proposed author for anthologies of
// unrelated authors. Records carrying it are exempt from normalization,
// conversion, and expansion.
const CollectionAuthor = "Сборник"

// Record is the per-file accumulator threaded through all passes.
type Record struct {
	// FilePath is relative to the working directory and immutable after
	// the read pass.
	FilePath string
	// FileTitle is informational, extracted once.
	FileTitle string
	// MetadataAuthors is the ground-truth author string from the file's
	// own header. Never mutated; later passes use it to validate and
	// expand candidates from other sources.
	MetadataAuthors string
	// ProposedAuthor is the evolving best guess.
	ProposedAuthor string
	// AuthorSource names the pass that produced the current proposal.
	AuthorSource string

	MetadataSeries string
	ProposedSeries string
	SeriesSource   string
}

// AuthorProtected reports whether the record's author may no longer be
// replaced by the filename or consensus passes.
func (r *Record) AuthorProtected() bool {
	switch r.AuthorSource {
	case SourceFolderDataset, SourceFilename, SourceMetadata, SourceConsensus, SourceCollection:
		return true
	}
	return false
}

// IsCollection reports whether the record was reclassified as an anthology.
func (r *Record) IsCollection() bool {
	return r.ProposedAuthor == CollectionAuthor
}

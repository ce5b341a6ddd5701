package models

import (
	"time"

	"github.com/uptrace/bun"
)

// BookRecord is the persisted result of the resolution pipeline for one
// book file. A scan replaces the whole table, so records never outlive the
// scan that produced them.
type BookRecord struct {
	bun.BaseModel `bun:"table:book_records,alias:br"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FilePath        string `json:"file_path"`
	FileTitle       string `json:"file_title"`
	MetadataAuthors string `json:"metadata_authors"`
	ProposedAuthor  string `json:"proposed_author"`
	AuthorSource    string `json:"author_source"`
	MetadataSeries  string `json:"metadata_series"`
	ProposedSeries  string `json:"proposed_series"`
	SeriesSource    string `json:"series_source"`
}

package catalog

import (
	"encoding/csv"
	"io"

	"github.com/fb2shelf/fb2shelf/pkg/models"
	"github.com/pkg/errors"
)

// csvHeader is the fixed export column order. Downstream review
// spreadsheets depend on it, so it never changes without a version bump.
var csvHeader = []string{
	"file_path",
	"metadata_authors",
	"proposed_author",
	"author_source",
	"metadata_series",
	"proposed_series",
	"series_source",
	"file_title",
}

// WriteCSV streams the records as a UTF-8 CSV with a header row.
func WriteCSV(w io.Writer, records []*models.BookRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return errors.WithStack(err)
	}

	for _, r := range records {
		row := []string{
			r.FilePath,
			r.MetadataAuthors,
			r.ProposedAuthor,
			r.AuthorSource,
			r.MetadataSeries,
			r.ProposedSeries,
			r.SeriesSource,
			r.FileTitle,
		}
		if err := cw.Write(row); err != nil {
			return errors.WithStack(err)
		}
	}

	cw.Flush()
	return errors.WithStack(cw.Error())
}

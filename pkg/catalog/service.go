// Package catalog stores and serves the results of the latest scan.
package catalog

import (
	"context"
	"time"

	"github.com/fb2shelf/fb2shelf/pkg/models"
	"github.com/fb2shelf/fb2shelf/pkg/pipeline"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type ListRecordsOptions struct {
	Limit        *int
	Offset       *int
	AuthorSource *string
	// Search matches a substring of the file path, the proposed author, or
	// the metadata authors.
	Search *string

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// ReplaceRecords swaps the whole catalog for the records of a new scan in
// one transaction, so readers never observe a half-written scan.
func (svc *Service) ReplaceRecords(ctx context.Context, records []*models.BookRecord) error {
	now := time.Now()
	for _, record := range records {
		record.ID = 0
		record.CreatedAt = now
		record.UpdatedAt = now
	}

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.BookRecord)(nil)).Where("1=1").Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		if len(records) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&records).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		return nil
	})
	return errors.WithStack(err)
}

func (svc *Service) ListRecords(ctx context.Context, opts ListRecordsOptions) ([]*models.BookRecord, error) {
	records, _, err := svc.listRecordsWithTotal(ctx, opts)
	return records, errors.WithStack(err)
}

func (svc *Service) ListRecordsWithTotal(ctx context.Context, opts ListRecordsOptions) ([]*models.BookRecord, int, error) {
	opts.includeTotal = true
	return svc.listRecordsWithTotal(ctx, opts)
}

func (svc *Service) listRecordsWithTotal(ctx context.Context, opts ListRecordsOptions) ([]*models.BookRecord, int, error) {
	records := []*models.BookRecord{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&records).
		Order("br.file_path ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.AuthorSource != nil {
		q = q.Where("br.author_source = ?", *opts.AuthorSource)
	}
	if opts.Search != nil {
		pattern := "%" + *opts.Search + "%"
		q = q.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("br.file_path LIKE ?", pattern).
				WhereOr("br.proposed_author LIKE ?", pattern).
				WhereOr("br.metadata_authors LIKE ?", pattern)
		})
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return records, total, nil
}

// RecordsFromScan converts pipeline output into catalog rows.
func RecordsFromScan(scanned []*pipeline.Record) []*models.BookRecord {
	records := make([]*models.BookRecord, 0, len(scanned))
	for _, r := range scanned {
		records = append(records, &models.BookRecord{
			FilePath:        r.FilePath,
			FileTitle:       r.FileTitle,
			MetadataAuthors: r.MetadataAuthors,
			ProposedAuthor:  r.ProposedAuthor,
			AuthorSource:    r.AuthorSource,
			MetadataSeries:  r.MetadataSeries,
			ProposedSeries:  r.ProposedSeries,
			SeriesSource:    r.SeriesSource,
		})
	}
	return records
}

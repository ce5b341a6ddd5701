package catalog

import (
	"context"
	"database/sql"
	"testing"

	"github.com/fb2shelf/fb2shelf/pkg/migrations"
	"github.com/fb2shelf/fb2shelf/pkg/models"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestReplaceRecords(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first := []*models.BookRecord{
		{FilePath: "а/1.fb2", ProposedAuthor: "Петров Иван", AuthorSource: "metadata"},
		{FilePath: "а/2.fb2", ProposedAuthor: "Сидоров Павел", AuthorSource: "filename"},
	}
	require.NoError(t, svc.ReplaceRecords(ctx, first))

	records, err := svc.ListRecords(ctx, ListRecordsOptions{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.NotZero(t, records[0].ID)
	assert.False(t, records[0].CreatedAt.IsZero())

	// A second scan replaces the previous one entirely.
	second := []*models.BookRecord{
		{FilePath: "б/1.fb2", ProposedAuthor: "Иванов Сергей", AuthorSource: "consensus"},
	}
	require.NoError(t, svc.ReplaceRecords(ctx, second))

	records, err = svc.ListRecords(ctx, ListRecordsOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "б/1.fb2", records[0].FilePath)

	// An empty scan result clears the catalog.
	require.NoError(t, svc.ReplaceRecords(ctx, nil))

	records, err = svc.ListRecords(ctx, ListRecordsOptions{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListRecordsWithTotal(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	seed := []*models.BookRecord{
		{FilePath: "в/3.fb2", ProposedAuthor: "Сидоров Павел", AuthorSource: "filename"},
		{FilePath: "а/1.fb2", ProposedAuthor: "Петров Иван", AuthorSource: "metadata"},
		{FilePath: "б/2.fb2", ProposedAuthor: "Петров Иван", AuthorSource: "metadata"},
	}
	require.NoError(t, svc.ReplaceRecords(ctx, seed))

	t.Run("orders by file path", func(t *testing.T) {
		records, total, err := svc.ListRecordsWithTotal(ctx, ListRecordsOptions{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, records, 3)
		assert.Equal(t, "а/1.fb2", records[0].FilePath)
		assert.Equal(t, "б/2.fb2", records[1].FilePath)
		assert.Equal(t, "в/3.fb2", records[2].FilePath)
	})

	t.Run("paginates", func(t *testing.T) {
		records, total, err := svc.ListRecordsWithTotal(ctx, ListRecordsOptions{
			Limit:  pointerutil.Int(1),
			Offset: pointerutil.Int(1),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, records, 1)
		assert.Equal(t, "б/2.fb2", records[0].FilePath)
	})

	t.Run("searches paths and authors", func(t *testing.T) {
		records, total, err := svc.ListRecordsWithTotal(ctx, ListRecordsOptions{
			Search: pointerutil.String("Сидоров"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, records, 1)
		assert.Equal(t, "в/3.fb2", records[0].FilePath)
	})

	t.Run("filters by author source", func(t *testing.T) {
		records, total, err := svc.ListRecordsWithTotal(ctx, ListRecordsOptions{
			AuthorSource: pointerutil.String("metadata"),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, records, 2)
		for _, r := range records {
			assert.Equal(t, "metadata", r.AuthorSource)
		}
	})
}

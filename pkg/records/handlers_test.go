package records

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fb2shelf/fb2shelf/pkg/binder"
	"github.com/fb2shelf/fb2shelf/pkg/catalog"
	"github.com/fb2shelf/fb2shelf/pkg/errcodes"
	"github.com/fb2shelf/fb2shelf/pkg/migrations"
	"github.com/fb2shelf/fb2shelf/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
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

func newRecordsTestContext(t *testing.T, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func seedCatalog(t *testing.T, svc *catalog.Service) {
	t.Helper()
	require.NoError(t, svc.ReplaceRecords(context.Background(), []*models.BookRecord{
		{FilePath: "а/1.fb2", ProposedAuthor: "Петров Иван", AuthorSource: "metadata"},
		{FilePath: "б/2.fb2", ProposedAuthor: "Сидоров Павел", AuthorSource: "filename"},
		{FilePath: "в/3.fb2", ProposedAuthor: "Петров Иван", AuthorSource: "metadata"},
	}))
}

type listResponse struct {
	Records []*models.BookRecord `json:"records"`
	Total   int                  `json:"total"`
}

func TestHandlerList(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{catalogService: catalog.NewService(db)}
	seedCatalog(t, h.catalogService)

	t.Run("lists everything by default", func(tt *testing.T) {
		c, rr := newRecordsTestContext(tt, "/records")
		require.NoError(tt, h.list(c))
		assert.Equal(tt, http.StatusOK, rr.Code)

		resp := listResponse{}
		require.NoError(tt, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(tt, 3, resp.Total)
		require.Len(tt, resp.Records, 3)
		assert.Equal(tt, "а/1.fb2", resp.Records[0].FilePath)
	})

	t.Run("filters and paginates", func(tt *testing.T) {
		c, rr := newRecordsTestContext(tt, "/records?author_source=metadata&limit=1&offset=1")
		require.NoError(tt, h.list(c))

		resp := listResponse{}
		require.NoError(tt, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(tt, 2, resp.Total)
		require.Len(tt, resp.Records, 1)
		assert.Equal(tt, "в/3.fb2", resp.Records[0].FilePath)
	})

	t.Run("searches by author", func(tt *testing.T) {
		c, rr := newRecordsTestContext(tt, "/records?search=%D0%A1%D0%B8%D0%B4%D0%BE%D1%80%D0%BE%D0%B2")
		require.NoError(tt, h.list(c))

		resp := listResponse{}
		require.NoError(tt, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(tt, 1, resp.Total)
		require.Len(tt, resp.Records, 1)
		assert.Equal(tt, "б/2.fb2", resp.Records[0].FilePath)
	})

	t.Run("rejects an unknown author source", func(tt *testing.T) {
		c, _ := newRecordsTestContext(tt, "/records?author_source=guesswork")
		err := h.list(c)
		require.Error(tt, err)

		var codeErr *errcodes.Error
		require.ErrorAs(tt, err, &codeErr)
		assert.Equal(tt, "validation_error", codeErr.Code)
	})
}

func TestHandlerExport(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{catalogService: catalog.NewService(db)}
	seedCatalog(t, h.catalogService)

	c, rr := newRecordsTestContext(t, "/records/export")
	require.NoError(t, h.export(c))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rr.Header().Get(echo.HeaderContentDisposition), "fb2shelf.csv")

	body := rr.Body.String()
	assert.Contains(t, body, "file_path,metadata_authors,proposed_author,author_source")
	assert.Contains(t, body, "а/1.fb2")
	assert.Contains(t, body, "Петров Иван")
}

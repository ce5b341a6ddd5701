package scans

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/fb2shelf/fb2shelf/pkg/binder"
	"github.com/fb2shelf/fb2shelf/pkg/errcodes"
	"github.com/fb2shelf/fb2shelf/pkg/jobs"
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

func newScansTestContext(t *testing.T, method, path, payload string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	var req *http.Request
	if payload == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func TestHandlerCreate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{jobService: jobs.NewService(db)}

	c, rr := newScansTestContext(t, http.MethodPost, "/scans", `{"working_directory":"/srv/library"}`)
	require.NoError(t, h.create(c))
	assert.Equal(t, http.StatusOK, rr.Code)

	job := models.Job{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &job))
	assert.NotZero(t, job.ID)
	assert.Equal(t, models.JobTypeScan, job.Type)
	assert.Equal(t, models.JobStatusPending, job.Status)

	// A second scan while one is pending is refused.
	c, _ = newScansTestContext(t, http.MethodPost, "/scans", `{}`)
	err := h.create(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "conflict", codeErr.Code)
}

func TestHandlerRetrieve(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := jobs.NewService(db)
	h := &handler{jobService: svc}

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusCompleted,
		Progress:   100,
		DataParsed: &models.JobScanData{},
	}
	require.NoError(t, svc.CreateJob(context.Background(), job))

	t.Run("returns the job", func(tt *testing.T) {
		c, rr := newScansTestContext(tt, http.MethodGet, "/scans/"+strconv.Itoa(job.ID), "")
		c.SetPath("/scans/:id")
		c.SetParamNames("id")
		c.SetParamValues(strconv.Itoa(job.ID))

		require.NoError(tt, h.retrieve(c))
		assert.Equal(tt, http.StatusOK, rr.Code)

		got := models.Job{}
		require.NoError(tt, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(tt, job.ID, got.ID)
		assert.Equal(tt, models.JobStatusCompleted, got.Status)
		assert.Equal(tt, 100, got.Progress)
	})

	t.Run("not found for a bad id", func(tt *testing.T) {
		c, _ := newScansTestContext(tt, http.MethodGet, "/scans/abc", "")
		c.SetPath("/scans/:id")
		c.SetParamNames("id")
		c.SetParamValues("abc")

		err := h.retrieve(c)
		assert.ErrorIs(tt, err, errcodes.NotFound("Scan"))
	})
}

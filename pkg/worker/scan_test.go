package worker

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fb2shelf/fb2shelf/pkg/catalog"
	"github.com/fb2shelf/fb2shelf/pkg/config"
	"github.com/fb2shelf/fb2shelf/pkg/jobs"
	"github.com/fb2shelf/fb2shelf/pkg/migrations"
	"github.com/fb2shelf/fb2shelf/pkg/models"
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

func newTestWorker(t *testing.T, db *bun.DB) (*Worker, *config.Config) {
	t.Helper()

	cfg := config.NewForTest()
	cfg.RulesFilePath = writeRules(t)
	return New(cfg, db), cfg
}

func writeRules(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rules.json")
	rules := `{
		"male_names": ["Иван", "Павел"],
		"collection_keywords": ["сборник"],
		"author_series_patterns_in_files": ["Author - Title"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(rules), 0600))
	return path
}

func writeBook(t *testing.T, workdir, rel, content string) {
	t.Helper()
	path := filepath.Join(workdir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func bookWithAuthor(first, last, title string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<FictionBook>
 <description>
  <title-info>
   <author><first-name>%s</first-name><last-name>%s</last-name></author>
   <book-title>%s</book-title>
  </title-info>
 </description>
</FictionBook>`, first, last, title)
}

func TestProcessScanJob(t *testing.T) {
	db := newTestDB(t)
	w, _ := newTestWorker(t, db)
	ctx := context.Background()

	workdir := t.TempDir()
	writeBook(t, workdir, "Петров Иван/Одиссея.fb2", bookWithAuthor("Иван", "Петров", "Одиссея"))
	writeBook(t, workdir, "Сидоров Павел - Звезда.fb2", bookWithAuthor("Павел", "Сидоров", "Звезда"))

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusInProgress,
		DataParsed: &models.JobScanData{WorkingDirectory: workdir},
	}
	require.NoError(t, w.jobService.CreateJob(ctx, job))

	require.NoError(t, w.ProcessScanJob(ctx, job))

	records, err := w.catalogService.ListRecords(ctx, catalog.ListRecordsOptions{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, filepath.Join("Петров Иван", "Одиссея.fb2"), records[0].FilePath)
	assert.Equal(t, "Петров Иван", records[0].ProposedAuthor)
	assert.Equal(t, "folder_dataset", records[0].AuthorSource)

	assert.Equal(t, "Сидоров Павел - Звезда.fb2", records[1].FilePath)
	assert.Equal(t, "Сидоров Павел", records[1].ProposedAuthor)
	assert.Equal(t, "filename", records[1].AuthorSource)
}

func TestProcessScanJobReplacesPreviousScan(t *testing.T) {
	db := newTestDB(t)
	w, _ := newTestWorker(t, db)
	ctx := context.Background()

	require.NoError(t, w.catalogService.ReplaceRecords(ctx, []*models.BookRecord{
		{FilePath: "устарело.fb2", ProposedAuthor: "Кто-то", AuthorSource: "metadata"},
	}))

	workdir := t.TempDir()
	writeBook(t, workdir, "одиссея.fb2", bookWithAuthor("Иван", "Петров", "Одиссея"))

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusInProgress,
		DataParsed: &models.JobScanData{WorkingDirectory: workdir},
	}
	require.NoError(t, w.jobService.CreateJob(ctx, job))
	require.NoError(t, w.ProcessScanJob(ctx, job))

	records, err := w.catalogService.ListRecords(ctx, catalog.ListRecordsOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "одиссея.fb2", records[0].FilePath)
}

func TestProcessScanJobNoWorkdir(t *testing.T) {
	db := newTestDB(t)
	w, cfg := newTestWorker(t, db)
	cfg.WorkingDirectory = ""

	job := &models.Job{
		Type:       models.JobTypeScan,
		DataParsed: &models.JobScanData{},
	}

	err := w.ProcessScanJob(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no working directory")
}

func TestProcessScanJobBadPayload(t *testing.T) {
	db := newTestDB(t)
	w, _ := newTestWorker(t, db)

	job := &models.Job{Type: models.JobTypeScan}

	err := w.ProcessScanJob(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected data payload")
}

func TestProcessScanJobUpdatesProgress(t *testing.T) {
	db := newTestDB(t)
	w, _ := newTestWorker(t, db)
	ctx := context.Background()

	workdir := t.TempDir()
	for i := 0; i < 20; i++ {
		writeBook(t, workdir, fmt.Sprintf("книга-%02d.fb2", i), bookWithAuthor("Иван", "Петров", "Одиссея"))
	}

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusInProgress,
		DataParsed: &models.JobScanData{WorkingDirectory: workdir},
	}
	require.NoError(t, w.jobService.CreateJob(ctx, job))
	require.NoError(t, w.ProcessScanJob(ctx, job))

	got, err := w.jobService.RetrieveJob(ctx, jobs.RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.Progress, 90)
}

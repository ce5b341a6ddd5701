package worker

import (
	"context"
	"testing"
	"time"

	"github.com/fb2shelf/fb2shelf/pkg/jobs"
	"github.com/fb2shelf/fb2shelf/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func retrieveStatus(t *testing.T, svc *jobs.Service, id int) string {
	t.Helper()
	job, err := svc.RetrieveJob(context.Background(), jobs.RetrieveJobOptions{ID: &id})
	require.NoError(t, err)
	return job.Status
}

func TestWorkerCompletesPendingJob(t *testing.T) {
	db := newTestDB(t)
	w, cfg := newTestWorker(t, db)
	cfg.WorkerPollInterval = 20 * time.Millisecond

	workdir := t.TempDir()
	writeBook(t, workdir, "одиссея.fb2", bookWithAuthor("Иван", "Петров", "Одиссея"))

	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{WorkingDirectory: workdir},
	}
	require.NoError(t, w.jobService.CreateJob(context.Background(), job))

	w.Start()
	defer w.Shutdown()

	assert.Eventually(t, func() bool {
		return retrieveStatus(t, w.jobService, job.ID) == models.JobStatusCompleted
	}, 5*time.Second, 20*time.Millisecond)

	got, err := w.jobService.RetrieveJob(context.Background(), jobs.RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
	require.NotNil(t, got.ProcessID)
	assert.Equal(t, processID, *got.ProcessID)
}

func TestWorkerMarksFailedJob(t *testing.T) {
	db := newTestDB(t)
	w, cfg := newTestWorker(t, db)
	cfg.WorkerPollInterval = 20 * time.Millisecond
	cfg.WorkingDirectory = ""

	// No working directory anywhere: the scan cannot start.
	job := &models.Job{
		Type:       models.JobTypeScan,
		Status:     models.JobStatusPending,
		DataParsed: &models.JobScanData{},
	}
	require.NoError(t, w.jobService.CreateJob(context.Background(), job))

	w.Start()
	defer w.Shutdown()

	assert.Eventually(t, func() bool {
		return retrieveStatus(t, w.jobService, job.ID) == models.JobStatusFailed
	}, 5*time.Second, 20*time.Millisecond)

	got, err := w.jobService.RetrieveJob(context.Background(), jobs.RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	require.NotNil(t, got.Error)
	assert.Contains(t, *got.Error, "no working directory")
}

package worker

import (
	"context"

	"github.com/fb2shelf/fb2shelf/pkg/catalog"
	"github.com/fb2shelf/fb2shelf/pkg/config"
	"github.com/fb2shelf/fb2shelf/pkg/jobs"
	"github.com/fb2shelf/fb2shelf/pkg/models"
	"github.com/fb2shelf/fb2shelf/pkg/pipeline"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// ProcessScanJob runs the resolution pipeline over the library and replaces
// the catalog with the result. Progress is reported against the read pass,
// which dominates the run time; the in-memory passes after it are fast.
func (w *Worker) ProcessScanJob(ctx context.Context, job *models.Job) error {
	log := logger.FromContext(ctx)

	data, ok := job.DataParsed.(*models.JobScanData)
	if !ok {
		return errors.New("scan job has unexpected data payload")
	}

	workdir := w.config.WorkingDirectory
	if data.WorkingDirectory != "" {
		workdir = data.WorkingDirectory
	}
	if workdir == "" {
		return errors.New("no working directory configured")
	}

	rules, err := config.LoadRules(w.config.RulesFilePath)
	if err != nil {
		return errors.WithStack(err)
	}

	p, err := pipeline.New(rules)
	if err != nil {
		return errors.WithStack(err)
	}

	lastReported := 0
	progress := func(processed, total int) {
		// Scale reads to 0-95 and update in 5-point steps to keep the
		// write volume down on large libraries.
		pct := processed * 95 / total
		if pct < lastReported+5 {
			return
		}
		lastReported = pct
		job.Progress = pct
		if err := w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
			Columns: []string{"progress"},
		}); err != nil {
			log.Err(err).Warn("update job progress error")
		}
	}

	scanned, err := p.Run(ctx, workdir, progress)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := w.catalogService.ReplaceRecords(ctx, catalog.RecordsFromScan(scanned)); err != nil {
		return errors.WithStack(err)
	}

	log.Info("scan job finished", logger.Data{"records": len(scanned)})
	return nil
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"mailsift/progress"
	"mailsift/utils"
	"mailsift/verifier"
)

// JobRunner executes one verification job end to end: input discovery,
// extraction, the batch run and the CSV sinks. Per-address failures are
// captured as verdicts; only missing input (or cancellation) is fatal and
// surfaces as the job's terminal error status.
type JobRunner struct {
	Batch    *verifier.Batch
	Progress progress.Store
	Logger   logrus.FieldLogger
}

func NewJobRunner(batch *verifier.Batch, store progress.Store, logger logrus.FieldLogger) *JobRunner {
	return &JobRunner{
		Batch:    batch,
		Progress: store,
		Logger:   logger,
	}
}

// Run drives a job to a terminal status. It is meant to be launched on its
// own goroutine by the upload handler, or called synchronously by the CLI.
func (r *JobRunner) Run(ctx context.Context, jobID, inputPath, outputDir string, deep bool) {
	log := r.Logger.WithField("job_id", jobID)

	if err := r.run(ctx, jobID, inputPath, outputDir, deep); err != nil {
		log.WithError(err).Error("verification job failed")
		if sentry.CurrentHub().Client() != nil {
			sentry.CaptureException(err)
		}
		if ferr := r.Progress.Fail(ctx, jobID, userMessage(err)); ferr != nil {
			log.WithError(ferr).Warn("failed to record job failure")
		}
		return
	}

	if err := r.Progress.Finish(ctx, jobID); err != nil {
		log.WithError(err).Warn("failed to record job completion")
	}
	log.Info("verification job completed")
}

func (r *JobRunner) run(ctx context.Context, jobID, inputPath, outputDir string, deep bool) error {
	files, err := utils.DiscoverInput(inputPath)
	if err != nil {
		return err
	}

	perFile := make(map[string][]string, len(files))
	var all []string
	for _, f := range files {
		addrs := verifier.ExtractAddresses(f.Text)
		perFile[f.Path] = addrs
		all = append(all, addrs...)
	}
	if len(all) == 0 {
		return fmt.Errorf("%w: no email addresses found in %s", utils.ErrInputMissing, inputPath)
	}

	tracker := &storeProgress{ctx: ctx, store: r.Progress, jobID: jobID, log: r.Logger}
	results, err := r.Batch.Run(ctx, all, deep, tracker)
	if err != nil {
		return err
	}

	byEmail := make(map[string]verifier.Result, len(results))
	for _, res := range results {
		byEmail[res.Email] = res
	}

	if err := utils.WriteResultsCSV(filepath.Join(outputDir, "verified_results.csv"), results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	for _, f := range files {
		base := filepath.Base(f.Path)
		fileResults := make([]verifier.Result, 0, len(perFile[f.Path]))
		for _, addr := range perFile[f.Path] {
			if res, ok := byEmail[addr]; ok {
				fileResults = append(fileResults, res)
			}
		}
		out := filepath.Join(outputDir, base+".emails.csv")
		if err := utils.WritePerFileCSV(out, base, fileResults); err != nil {
			return fmt.Errorf("failed to write per-file results: %w", err)
		}
	}
	return nil
}

// userMessage keeps raw internal fault detail out of the progress contract.
func userMessage(err error) string {
	switch {
	case errors.Is(err, utils.ErrInputMissing):
		return err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "verification was cancelled before completing"
	default:
		return "verification failed unexpectedly"
	}
}

// storeProgress adapts the job progress store to the batch progress hooks.
type storeProgress struct {
	ctx   context.Context
	store progress.Store
	jobID string
	log   logrus.FieldLogger
}

func (p *storeProgress) SetTotal(n int) {
	if err := p.store.SetTotal(p.ctx, p.jobID, n); err != nil {
		p.log.WithError(err).WithField("job_id", p.jobID).Warn("failed to set job total")
	}
}

func (p *storeProgress) Increment() {
	if err := p.store.Increment(p.ctx, p.jobID); err != nil {
		p.log.WithError(err).WithField("job_id", p.jobID).Warn("failed to increment job progress")
	}
}

package workers

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/outreach/internal/models"
)

const (
	DefaultClearDelay      = 1000 * time.Millisecond
	DefaultClearMaxBatches = 50
	DefaultClearBatchSize  = 100
)

// BatchDeleter deletes one batch. services.EntryService satisfies it, and so
// does HTTPBatchDeleter for callers outside the server process.
type BatchDeleter interface {
	DeleteBatch(ctx context.Context, batchSize int) (*models.BatchDeleteResult, error)
}

type ClearProgress struct {
	Batch          int  `json:"batch"`
	DeletedCount   int  `json:"deletedCount"`
	TotalDeleted   int  `json:"totalDeleted"`
	HasMoreEntries bool `json:"hasMoreEntries"`
}

type ClearResult struct {
	Batches        int  `json:"batches"`
	Deleted        int  `json:"deleted"`
	HasMoreEntries bool `json:"hasMoreEntries"`
	// Partial is set whenever the loop stopped with entries left: at the batch
	// ceiling, or when Stalled.
	Partial bool `json:"partial"`
	// Stalled means a batch deleted nothing while entries were still reported.
	Stalled bool `json:"stalled,omitempty"`
}

// ClearAllRunner repeats DeleteBatch with a fixed pause between calls until
// the collection reports empty or MaxBatches is reached.
type ClearAllRunner struct {
	Deleter    BatchDeleter
	BatchSize  int
	Delay      time.Duration
	MaxBatches int

	// OnBatch is called after every successful batch.
	OnBatch func(ClearProgress)

	Logger *logrus.Logger
}

func (r *ClearAllRunner) Run(ctx context.Context) (ClearResult, error) {
	var res ClearResult

	if r.Deleter == nil {
		return res, errors.New("ClearAllRunner missing dependency: Deleter must be set")
	}
	if r.BatchSize <= 0 {
		r.BatchSize = DefaultClearBatchSize
	}
	if r.Delay <= 0 {
		r.Delay = DefaultClearDelay
	}
	if r.MaxBatches <= 0 {
		r.MaxBatches = DefaultClearMaxBatches
	}
	if r.Logger == nil {
		r.Logger = logrus.New()
	}

	for res.Batches < r.MaxBatches {
		if res.Batches > 0 {
			if err := sleep(ctx, r.Delay); err != nil {
				return res, err
			}
		}

		out, err := r.Deleter.DeleteBatch(ctx, r.BatchSize)
		if err != nil {
			r.Logger.WithError(err).WithFields(logrus.Fields{
				"batch":   res.Batches + 1,
				"deleted": res.Deleted,
			}).Error("clear all stopped on batch failure")
			return res, err
		}

		res.Batches++
		res.Deleted += out.DeletedCount
		res.HasMoreEntries = out.HasMoreEntries

		if r.OnBatch != nil {
			r.OnBatch(ClearProgress{
				Batch:          res.Batches,
				DeletedCount:   out.DeletedCount,
				TotalDeleted:   res.Deleted,
				HasMoreEntries: out.HasMoreEntries,
			})
		}

		if !out.HasMoreEntries {
			break
		}
		// the existence check and the sample disagree; stop instead of spinning
		if out.DeletedCount == 0 {
			res.Stalled = true
			break
		}
	}

	res.Partial = res.HasMoreEntries && (res.Stalled || res.Batches >= r.MaxBatches)

	entry := r.Logger.WithFields(logrus.Fields{
		"batches":          res.Batches,
		"deleted":          res.Deleted,
		"has_more_entries": res.HasMoreEntries,
	})
	switch {
	case res.Stalled:
		entry.Warn("clear all stalled: a batch deleted nothing, entries remain")
	case res.Partial:
		entry.Warn("clear all hit the batch ceiling, entries remain")
	default:
		entry.Info("clear all finished")
	}
	return res, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

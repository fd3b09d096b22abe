package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/outreach/internal/metrics"
	"github.com/yoockh/outreach/internal/models"
	mongorepo "github.com/yoockh/outreach/internal/repositories/mongo"
	"github.com/yoockh/outreach/internal/utils"
)

const (
	SampleCeiling    = 1000
	MinBatchSize     = 1
	MaxBatchSize     = 200
	DefaultBatchSize = 100
	ReviewLimit      = 1000
	MaxSelectedIDs   = 100
)

// EntryService backs the admin maintenance pages. DeleteBatch removes one
// batch with a single store call; DeleteSelected deletes ids one by one and
// keeps going past individual failures.
type EntryService interface {
	EstimateCollectionSize(ctx context.Context) (*models.CollectionEstimate, error)
	DeleteBatch(ctx context.Context, batchSize int) (*models.BatchDeleteResult, error)
	ListEntries(ctx context.Context) ([]models.Entry, models.FilterStats, error)
	DeleteSelected(ctx context.Context, ids []string) (*models.SelectiveDeleteResult, error)
	ListLinkedInPosts(ctx context.Context) ([]models.Entry, error)
}

type entryService struct {
	entries mongorepo.EntryRepository
	posts   mongorepo.EntryRepository
	log     *logrus.Logger
}

func NewEntryService(entries, posts mongorepo.EntryRepository, l *logrus.Logger) EntryService {
	return &entryService{entries: entries, posts: posts, log: l}
}

func (s *entryService) EstimateCollectionSize(ctx context.Context) (*models.CollectionEstimate, error) {
	const op = "EntryService.EstimateCollectionSize"

	n, err := s.entries.CountUpTo(ctx, SampleCeiling)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count entries", err)
	}

	return &models.CollectionEstimate{
		EstimatedCount: models.SizeEstimate{Count: int(n), Saturated: n >= SampleCeiling},
		HasEntries:     n > 0,
		SampleSize:     int(n),
	}, nil
}

// ClampBatchSize bounds a requested batch size to [MinBatchSize, MaxBatchSize].
func ClampBatchSize(n int) int { return utils.Clamp(n, MinBatchSize, MaxBatchSize) }

// DeleteBatch deletes up to batchSize entries and then checks for one more
// document. The check is not an exact count: a concurrent insert right after
// the delete reports more entries, and a concurrent delete of the last
// remaining document reports none. Both only cost the caller one extra or
// one missing loop iteration.
func (s *entryService) DeleteBatch(ctx context.Context, batchSize int) (*models.BatchDeleteResult, error) {
	const op = "EntryService.DeleteBatch"

	size := ClampBatchSize(batchSize)

	ids, err := s.entries.SampleIDs(ctx, int64(size))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to fetch entries to delete", err)
	}

	deleted, err := s.entries.DeleteIDs(ctx, ids)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to delete batch", err)
	}
	metrics.EntriesDeleted.WithLabelValues("batch").Add(float64(deleted))

	hasMore, err := s.entries.Any(ctx)
	if err != nil {
		// a full batch is the best remaining hint
		hasMore = len(ids) == size
		s.log.WithError(err).WithField("batch_size", size).Warn("has-more check failed, falling back to batch fill")
	}

	return &models.BatchDeleteResult{
		DeletedCount:   int(deleted),
		HasMoreEntries: hasMore,
		BatchSize:      size,
	}, nil
}

func (s *entryService) ListEntries(ctx context.Context) ([]models.Entry, models.FilterStats, error) {
	const op = "EntryService.ListEntries"

	rows, err := s.entries.ListRecent(ctx, ReviewLimit)
	if err != nil {
		return nil, models.FilterStats{}, utils.E(utils.CodeInternal, op, "failed to list entries", err)
	}
	normalizeEntries(rows)
	return rows, CalculateStats(rows), nil
}

func (s *entryService) DeleteSelected(ctx context.Context, ids []string) (*models.SelectiveDeleteResult, error) {
	const op = "EntryService.DeleteSelected"

	if len(ids) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "entryIds must be a non-empty array", nil)
	}
	if len(ids) > MaxSelectedIDs {
		return nil, utils.E(utils.CodeInvalidArgument, op, fmt.Sprintf("cannot delete more than %d entries at once", MaxSelectedIDs), nil)
	}

	res := &models.SelectiveDeleteResult{RequestedCount: len(ids)}
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			res.Errors = append(res.Errors, "empty entry id")
			continue
		}

		ok, err := s.entries.DeleteByID(ctx, id)
		switch {
		case err != nil:
			res.Errors = append(res.Errors, fmt.Sprintf("failed to delete %s: %v", id, err))
		case !ok:
			res.Errors = append(res.Errors, fmt.Sprintf("failed to delete %s: entry not found", id))
		default:
			res.DeletedCount++
		}
	}
	metrics.EntriesDeleted.WithLabelValues("selected").Add(float64(res.DeletedCount))

	if len(res.Errors) > 0 {
		s.log.WithFields(logrus.Fields{
			"requested": res.RequestedCount,
			"deleted":   res.DeletedCount,
			"failed":    len(res.Errors),
		}).Warn("selective delete finished with errors")
	}
	return res, nil
}

func (s *entryService) ListLinkedInPosts(ctx context.Context) ([]models.Entry, error) {
	const op = "EntryService.ListLinkedInPosts"

	rows, err := s.posts.ListRecent(ctx, ReviewLimit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list linkedin posts", err)
	}
	normalizeEntries(rows)
	return rows, nil
}

func normalizeEntries(rows []models.Entry) {
	for i := range rows {
		rows[i].PublishedDisplay = NormalizeTimestamp(rows[i].Published)
	}
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/outreach/internal/cache"
	"github.com/yoockh/outreach/internal/models"
	pgrepo "github.com/yoockh/outreach/internal/repositories/postgres"
	"github.com/yoockh/outreach/internal/utils"
)

const (
	SubscriptionCacheTTL  = 5 * time.Minute
	DefaultDurationMonths = 1
	MaxDurationMonths     = 24
)

type SubscriptionService interface {
	GetStatus(ctx context.Context, userID string) (*models.SubscriptionStatus, error)
	Activate(ctx context.Context, userID, plan string, months int) (*models.SubscriptionStatus, error)
	Cancel(ctx context.Context, userID string) (*models.SubscriptionStatus, error)
}

type subscriptionService struct {
	subs  pgrepo.SubscriptionRepository
	cache cache.Cache
	log   *logrus.Logger
	now   func() time.Time
}

func NewSubscriptionService(subs pgrepo.SubscriptionRepository, c cache.Cache, l *logrus.Logger) SubscriptionService {
	if c == nil {
		c = cache.Noop{}
	}
	return &subscriptionService{subs: subs, cache: c, log: l, now: time.Now}
}

// cachedSubscription stores the record rather than the computed status so
// that isPaid is always evaluated against the current time.
type cachedSubscription struct {
	Found  bool                       `json:"found"`
	Record *models.SubscriptionRecord `json:"record,omitempty"`
}

func (s *subscriptionService) GetStatus(ctx context.Context, userID string) (*models.SubscriptionStatus, error) {
	const op = "SubscriptionService.GetStatus"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load subscription", err)
	}
	return s.status(rec), nil
}

func (s *subscriptionService) Activate(ctx context.Context, userID, plan string, months int) (*models.SubscriptionStatus, error) {
	const op = "SubscriptionService.Activate"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if plan == "" {
		plan = models.PlanPro
	}
	if plan != models.PlanPro {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown plan", nil)
	}
	if months == 0 {
		months = DefaultDurationMonths
	}
	if months < 1 || months > MaxDurationMonths {
		return nil, utils.E(utils.CodeInvalidArgument, op, "durationMonths must be between 1 and 24", nil)
	}

	cur, err := s.subs.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to load subscription", err)
	}

	now := s.now().UTC()
	start := now
	// a paid subscription is extended from its current expiry
	if cur.IsPaid(now) {
		start = cur.ExpiresAt
	}

	rec := &models.SubscriptionRecord{
		UserID:    userID,
		Plan:      plan,
		Status:    models.SubscriptionActive,
		ExpiresAt: start.AddDate(0, months, 0),
		UpdatedAt: now,
	}
	if err := s.subs.Upsert(ctx, rec); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save subscription", err)
	}
	s.invalidate(ctx, userID)

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"plan":       plan,
		"months":     months,
		"expires_at": rec.ExpiresAt,
	}).Info("subscription activated")
	return s.status(rec), nil
}

func (s *subscriptionService) Cancel(ctx context.Context, userID string) (*models.SubscriptionStatus, error) {
	const op = "SubscriptionService.Cancel"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	rec, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "no subscription to cancel", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load subscription", err)
	}

	rec.Status = models.SubscriptionCanceled
	rec.UpdatedAt = s.now().UTC()
	if err := s.subs.Upsert(ctx, rec); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save subscription", err)
	}
	s.invalidate(ctx, userID)
	return s.status(rec), nil
}

func (s *subscriptionService) load(ctx context.Context, userID string) (*models.SubscriptionRecord, error) {
	key := cache.SubscriptionKey(userID)

	var cached cachedSubscription
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("subscription cache read failed")
	}
	if hit {
		return cached.Record, nil
	}

	rec, err := s.subs.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}
	if errors.Is(err, utils.ErrNotFound) {
		rec = nil
	}

	if err := s.cache.SetJSON(ctx, key, cachedSubscription{Found: rec != nil, Record: rec}, SubscriptionCacheTTL); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("subscription cache write failed")
	}
	return rec, nil
}

func (s *subscriptionService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Del(ctx, cache.SubscriptionKey(userID)); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("subscription cache invalidation failed")
	}
}

func (s *subscriptionService) status(rec *models.SubscriptionRecord) *models.SubscriptionStatus {
	if rec == nil {
		return &models.SubscriptionStatus{IsPaid: false, Plan: models.PlanFree}
	}
	exp := rec.ExpiresAt
	return &models.SubscriptionStatus{
		IsPaid:    rec.IsPaid(s.now()),
		Plan:      rec.Plan,
		Status:    rec.Status,
		ExpiresAt: &exp,
	}
}

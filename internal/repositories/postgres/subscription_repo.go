package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/outreach/internal/models"
	"github.com/yoockh/outreach/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.SubscriptionRecord, error)
	Upsert(ctx context.Context, s *models.SubscriptionRecord) error
}

type subscriptionRepo struct {
	db *gorm.DB
}

func NewSubscriptionRepo(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) GetByUserID(ctx context.Context, userID string) (*models.SubscriptionRecord, error) {
	var s models.SubscriptionRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subscriptionRepo) Upsert(ctx context.Context, s *models.SubscriptionRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan", "status", "expires_at", "updated_at"}),
		}).
		Create(s).Error
}

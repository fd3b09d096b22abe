package models

import "time"

const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
	SubscriptionCanceled = "canceled"

	PlanFree = "free"
	PlanPro  = "pro"
)

type SubscriptionRecord struct {
	UserID    string    `gorm:"column:user_id;type:text;primaryKey" json:"userId"`
	Plan      string    `gorm:"column:plan;type:text" json:"plan"`
	Status    string    `gorm:"column:status;type:text" json:"status"`
	ExpiresAt time.Time `gorm:"column:expires_at;type:timestamptz" json:"expiresAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updatedAt"`
}

func (SubscriptionRecord) TableName() string { return "subscriptions" }

// IsPaid is the single paid-access predicate: an active or trialing status
// with an expiry still in the future.
func (s *SubscriptionRecord) IsPaid(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.Status != SubscriptionActive && s.Status != SubscriptionTrialing {
		return false
	}
	return s.ExpiresAt.After(now)
}

type SubscriptionStatus struct {
	IsPaid    bool       `json:"isPaid"`
	Plan      string     `json:"plan"`
	Status    string     `json:"status,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

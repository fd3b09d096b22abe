package cache

import (
	"context"
	"time"
)

// Cache is a JSON read-through cache. Implementations treat corrupt entries
// as misses.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Noop is used when no Redis is configured: every lookup misses.
type Noop struct{}

func (Noop) GetJSON(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Del(context.Context, ...string) error                      { return nil }

func LinkPreviewKey(url string) string { return "link-preview:" + url }

func SubscriptionKey(userID string) string { return "subscription:" + userID }

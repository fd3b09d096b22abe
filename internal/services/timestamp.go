package services

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	displayDateLayout = "Jan 2, 2006"
	unknownDate       = "Unknown"
)

// NormalizeTimestamp renders a stored timestamp for display. Native date
// values become "Jan 2, 2006" (UTC), plain strings pass through unchanged,
// and anything missing or unrecognized becomes "Unknown".
func NormalizeTimestamp(v any) string {
	switch t := v.(type) {
	case nil:
		return unknownDate
	case string:
		if t == "" {
			return unknownDate
		}
		return t
	case primitive.DateTime:
		return t.Time().UTC().Format(displayDateLayout)
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC().Format(displayDateLayout)
	case time.Time:
		if t.IsZero() {
			return unknownDate
		}
		return t.UTC().Format(displayDateLayout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return unknownDate
		}
		return t.UTC().Format(displayDateLayout)
	default:
		return unknownDate
	}
}

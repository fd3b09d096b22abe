package utils

import (
	"encoding/base64"
	"strings"
)

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// DecodeBase64Payload decodes standard base64, tolerating a data-URL prefix
// ("data:application/pdf;base64,...") and surrounding whitespace.
func DecodeBase64Payload(s string) ([]byte, error) {
	raw := strings.TrimSpace(s)
	if strings.HasPrefix(raw, "data:") {
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(raw)
}

package services

import (
	"strings"

	"github.com/yoockh/outreach/internal/models"
)

var placeholderValues = map[string]struct{}{
	"":        {},
	"n/a":     {},
	"na":      {},
	"unknown": {},
}

// IsPlaceholder reports whether s is empty or a known filler value such as
// "N/A", ignoring case and surrounding whitespace.
func IsPlaceholder(s string) bool {
	_, ok := placeholderValues[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// CalculateStats computes every data-quality counter in one pass.
func CalculateStats(entries []models.Entry) models.FilterStats {
	st := models.FilterStats{Total: len(entries)}
	for _, e := range entries {
		if isBlank(e.Email) {
			st.WithoutEmail++
		}
		if isBlank(e.LinkedInURL) {
			st.WithoutLinkedIn++
		}
		if isBlank(e.CompanyURL) {
			st.WithoutCompanyURL++
		}
		if IsPlaceholder(e.Name) {
			st.InvalidNames++
		}
		if IsPlaceholder(e.Company) {
			st.InvalidCompanies++
		}
		if IsPlaceholder(e.Role) {
			st.InvalidRoles++
		}
	}
	return st
}

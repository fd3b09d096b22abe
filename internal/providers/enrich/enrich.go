package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/outreach/internal/metrics"
	"github.com/yoockh/outreach/internal/models"
	"github.com/yoockh/outreach/internal/utils"
)

const (
	CompanyPageLimit    = 2000
	LinkedInSearchLimit = 1500

	defaultSearchURL = "https://www.google.com/search?q="
	maxBodyBytes     = 1 << 20
)

// Enricher gathers optional context for a target. It never fails: a fetch
// that errors leaves its field empty.
type Enricher interface {
	Enrich(ctx context.Context, target models.JobData) models.Enrichment
}

// ProxyEnricher fetches pages through a text-rendering proxy that takes the
// target URL appended to its base URL (r.jina.ai style).
type ProxyEnricher struct {
	HTTP      *http.Client
	BaseURL   string
	SearchURL string
	Timeout   time.Duration
	Logger    *logrus.Logger
}

func NewProxyEnricher(baseURL string, timeout time.Duration, l *logrus.Logger) *ProxyEnricher {
	return &ProxyEnricher{
		HTTP:      &http.Client{},
		BaseURL:   baseURL,
		SearchURL: defaultSearchURL,
		Timeout:   timeout,
		Logger:    l,
	}
}

func (e *ProxyEnricher) Enrich(ctx context.Context, target models.JobData) models.Enrichment {
	var out models.Enrichment

	if u := strings.TrimSpace(target.CompanyURL); u != "" {
		text, err := e.fetch(ctx, normalizeURL(u))
		if err != nil {
			e.skip("company_page", u, err)
		} else {
			out.CompanyPage = utils.Truncate(text, CompanyPageLimit)
		}
	}

	if strings.TrimSpace(target.LinkedInURL) != "" {
		query := strings.TrimSpace(strings.TrimSpace(target.Name) + " " + strings.TrimSpace(target.Company))
		if query != "" {
			searchURL := e.searchURL() + url.QueryEscape(query)
			text, err := e.fetch(ctx, searchURL)
			if err != nil {
				e.skip("linkedin_search", searchURL, err)
			} else {
				out.LinkedInSearch = utils.Truncate(text, LinkedInSearchLimit)
			}
		}
	}

	return out
}

func (e *ProxyEnricher) fetch(ctx context.Context, target string) (string, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.BaseURL+target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := e.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("proxy returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func (e *ProxyEnricher) skip(source, target string, err error) {
	metrics.EnrichmentFailures.WithLabelValues(source).Inc()
	if e.Logger != nil {
		e.Logger.WithError(err).WithFields(logrus.Fields{
			"source": source,
			"target": target,
		}).Warn("enrichment fetch failed, continuing without it")
	}
}

func (e *ProxyEnricher) client() *http.Client {
	if e.HTTP != nil {
		return e.HTTP
	}
	return http.DefaultClient
}

func (e *ProxyEnricher) searchURL() string {
	if e.SearchURL != "" {
		return e.SearchURL
	}
	return defaultSearchURL
}

func normalizeURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}

package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/outreach/internal/cache"
	"github.com/yoockh/outreach/internal/metrics"
)

const (
	PreviewScanBytes    = 1_000_000
	previewUserAgent    = "Mozilla/5.0 (compatible; OutreachLinkPreview/1.0)"
	previewHTTPTimeout  = 10 * time.Second
	previewMaxRedirects = 5
)

var errPreviewRedirectBlocked = errors.New("link preview redirect left linkedin.com")

// three attribute orders seen in the wild
var ogImagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<meta[^>]+property=["']og:image["'][^>]*?content=["']([^"']+)["']`),
	regexp.MustCompile(`(?is)<meta[^>]+content=["']([^"']+)["'][^>]*?property=["']og:image["']`),
	regexp.MustCompile(`(?is)<meta[^>]+name=["']og:image["'][^>]*?content=["']([^"']+)["']`),
}

// LinkPreviewService resolves the og:image of a LinkedIn page. It never
// returns an error: every failure resolves to nil.
type LinkPreviewService interface {
	ResolvePreviewImage(ctx context.Context, rawURL string) *string
}

type linkPreviewService struct {
	http  *http.Client
	cache cache.Cache
	ttl   time.Duration
	log   *logrus.Logger
}

func NewLinkPreviewService(client *http.Client, c cache.Cache, ttl time.Duration, l *logrus.Logger) LinkPreviewService {
	if client == nil {
		client = &http.Client{Timeout: previewHTTPTimeout}
	}
	// copy so the caller's client keeps its own redirect policy
	guarded := *client
	guarded.CheckRedirect = checkPreviewRedirect
	if c == nil {
		c = cache.Noop{}
	}
	return &linkPreviewService{http: &guarded, cache: c, ttl: ttl, log: l}
}

type previewCacheEntry struct {
	Image *string `json:"image"`
}

func (s *linkPreviewService) ResolvePreviewImage(ctx context.Context, rawURL string) *string {
	u, ok := AllowedPreviewURL(rawURL)
	if !ok {
		metrics.LinkPreviewLookups.WithLabelValues("blocked").Inc()
		return nil
	}
	key := cache.LinkPreviewKey(u.String())

	var cached previewCacheEntry
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		s.log.WithError(err).Warn("link preview cache read failed")
	} else if hit {
		metrics.LinkPreviewLookups.WithLabelValues("cache_hit").Inc()
		return cached.Image
	}

	image, err := s.fetch(ctx, u.String())
	if err != nil {
		metrics.LinkPreviewLookups.WithLabelValues("error").Inc()
		s.log.WithError(err).WithField("url", u.String()).Warn("link preview fetch failed")
		// fetch errors are not cached so a transient outage does not stick
		return nil
	}
	if image == nil {
		metrics.LinkPreviewLookups.WithLabelValues("no_image").Inc()
	} else {
		metrics.LinkPreviewLookups.WithLabelValues("found").Inc()
	}

	if s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, key, previewCacheEntry{Image: image}, s.ttl); err != nil {
			s.log.WithError(err).Warn("link preview cache write failed")
		}
	}
	return image
}

func (s *linkPreviewService) fetch(ctx context.Context, target string) (*string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", previewUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("preview target returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, PreviewScanBytes))
	if err != nil {
		return nil, err
	}
	return ExtractOGImage(string(body)), nil
}

// checkPreviewRedirect applies the LinkedIn host rule to every hop, not just
// the first URL.
func checkPreviewRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= previewMaxRedirects {
		return fmt.Errorf("stopped after %d redirects", len(via))
	}
	if _, ok := AllowedPreviewURL(req.URL.String()); !ok {
		return fmt.Errorf("%w: %s", errPreviewRedirectBlocked, req.URL.Host)
	}
	return nil
}

// AllowedPreviewURL parses raw and accepts only http(s) URLs on linkedin.com
// or one of its subdomains.
func AllowedPreviewURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
		return nil, false
	}
	return u, true
}

// ExtractOGImage returns the first og:image content value in page, trying
// each attribute order in turn, or nil.
func ExtractOGImage(page string) *string {
	for _, re := range ogImagePatterns {
		if m := re.FindStringSubmatch(page); m != nil {
			img := html.UnescapeString(strings.TrimSpace(m[1]))
			if img != "" {
				return &img
			}
		}
	}
	return nil
}

// Package linkpreview extracts title, description and image from press
// coverage pages linked in news posts.
package linkpreview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	"github.com/dlomaxw/shinebebright-sub001/internal/logging"
	"github.com/dlomaxw/shinebebright-sub001/internal/ratelimit"
	"github.com/rs/zerolog"
)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; ShineBeBrightPreview/1.0; +https://shinebebright.com)"
	maxBodyBytes     = 2 << 20
)

var (
	ErrInvalidURL  = errors.New("url must be absolute http or https")
	ErrBreakerOpen = errors.New("link preview temporarily disabled after repeated failures")
)

// Preview is the metadata of one page
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
	Headless    bool   `json:"headless"`
}

// StatusError is returned for non-200 responses
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

// Fetcher downloads pages over HTTP, falling back to a headless browser for
// pages that render their metadata with JavaScript
type Fetcher struct {
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
	userAgent  string

	headless   bool
	chromePath string
	renderHTML func(ctx context.Context, pageURL string) (string, error)

	pacer   *ratelimit.Pacer
	breaker *CircuitBreaker
	logger  zerolog.Logger
}

func NewFetcher(cfg config.LinkPreviewConfig) *Fetcher {
	logger := logging.Component("linkpreview")
	timeout := cfg.GetTimeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	f := &Fetcher{
		client:     &http.Client{Timeout: timeout},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.GetRetryDelay(),
		timeout:    timeout,
		userAgent:  userAgent,
		headless:   cfg.HeadlessEnabled,
		chromePath: cfg.ChromePath,
		pacer:      ratelimit.NewPacer(cfg.MaxInFlight, cfg.GetRequestDelay(), cfg.GetRequestDelay()/2),
		breaker:    NewCircuitBreaker(5, 10*time.Minute, logger),
		logger:     logger,
	}
	f.renderHTML = f.fetchHTMLWithHeadlessBrowser
	return f
}

// BreakerStatus exposes the circuit breaker state for the admin stats
func (f *Fetcher) BreakerStatus() Status {
	return f.breaker.GetStatus()
}

// Fetch returns the preview of rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Preview, error) {
	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") || pageURL.Host == "" {
		return nil, ErrInvalidURL
	}

	if !f.breaker.CanProceed() {
		return nil, ErrBreakerOpen
	}

	if err := f.pacer.Acquire(ctx); err != nil {
		return nil, err
	}
	defer f.pacer.Release()

	body, err := f.fetchWithRetry(ctx, pageURL.String())
	if err != nil {
		return nil, err
	}

	preview, err := ParseHTML(pageURL, body)
	if err != nil {
		return nil, err
	}

	if preview.Title == "" && f.headless {
		f.logger.Debug().Str("url", pageURL.String()).Msg("no title in static html, trying headless browser")
		rendered, err := f.renderHTML(ctx, pageURL.String())
		if err != nil {
			f.logger.Warn().Err(err).Str("url", pageURL.String()).Msg("headless fetch failed")
			return preview, nil
		}
		if headless, err := ParseHTML(pageURL, rendered); err == nil && headless.Title != "" {
			headless.Headless = true
			return headless, nil
		}
	}
	return preview, nil
}

// fetchWithRetry performs the GET with exponential backoff. 4xx responses
// other than 429 are not retried.
func (f *Fetcher) fetchWithRetry(ctx context.Context, pageURL string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * f.retryDelay
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
			f.logger.Debug().Int("attempt", attempt).Dur("backoff", backoff).Str("url", pageURL).Msg("retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		body, status, err := f.get(ctx, pageURL)
		if err == nil {
			f.breaker.RecordSuccess()
			return body, nil
		}
		lastErr = err
		f.breaker.RecordFailure(status)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
			break
		}
	}

	return "", fmt.Errorf("fetch %s: %w", pageURL, lastErr)
}

func (f *Fetcher) get(ctx context.Context, pageURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, &StatusError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", resp.StatusCode, err
	}
	return string(data), resp.StatusCode, nil
}

// fetchHTMLWithHeadlessBrowser renders the page in headless Chrome
func (f *Fetcher) fetchHTMLWithHeadlessBrowser(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.userAgent),
	)
	if f.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(f.chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, 2*f.timeout)
	defer timeoutCancel()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(`body`, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("headless browser failed: %w", err)
	}
	return htmlContent, nil
}

// ParseHTML reads Open Graph tags, falling back to <title> and the meta
// description. Relative image URLs are resolved against pageURL.
func ParseHTML(pageURL *url.URL, body string) (*Preview, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	meta := func(attr, name string) string {
		content, _ := doc.Find(fmt.Sprintf(`meta[%s=%q]`, attr, name)).First().Attr("content")
		return strings.TrimSpace(content)
	}
	firstOf := func(values ...string) string {
		for _, v := range values {
			if v != "" {
				return v
			}
		}
		return ""
	}

	preview := &Preview{
		URL:         pageURL.String(),
		Title:       firstOf(meta("property", "og:title"), meta("name", "twitter:title"), strings.TrimSpace(doc.Find("title").First().Text())),
		Description: firstOf(meta("property", "og:description"), meta("name", "description"), meta("name", "twitter:description")),
		SiteName:    firstOf(meta("property", "og:site_name"), pageURL.Hostname()),
	}

	if image := firstOf(meta("property", "og:image"), meta("name", "twitter:image")); image != "" {
		if ref, err := url.Parse(image); err == nil {
			preview.Image = pageURL.ResolveReference(ref).String()
		}
	}
	if canonical := meta("property", "og:url"); canonical != "" {
		if ref, err := url.Parse(canonical); err == nil && ref.IsAbs() {
			preview.URL = ref.String()
		}
	}

	return preview, nil
}

package linkpreview

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ogPage = `<html><head>
<title>Fallback title</title>
<meta property="og:title" content="Shine Be Bright launches drone tours">
<meta property="og:description" content="Kampala studio brings aerial views to listings.">
<meta property="og:image" content="/media/cover.jpg">
<meta property="og:site_name" content="Daily Monitor">
</head><body></body></html>`

func testConfig() config.LinkPreviewConfig {
	return config.LinkPreviewConfig{TimeoutSeconds: 5, MaxRetries: 2, MaxInFlight: 2}
}

func TestParseHTML(t *testing.T) {
	page, _ := url.Parse("https://news.example.com/2025/drone")

	t.Run("open graph", func(t *testing.T) {
		p, err := ParseHTML(page, ogPage)
		require.NoError(t, err)
		assert.Equal(t, "Shine Be Bright launches drone tours", p.Title)
		assert.Equal(t, "Kampala studio brings aerial views to listings.", p.Description)
		assert.Equal(t, "https://news.example.com/media/cover.jpg", p.Image)
		assert.Equal(t, "Daily Monitor", p.SiteName)
	})

	t.Run("plain html", func(t *testing.T) {
		p, err := ParseHTML(page, `<html><head><title> Plain </title><meta name="description" content="desc"></head></html>`)
		require.NoError(t, err)
		assert.Equal(t, "Plain", p.Title)
		assert.Equal(t, "desc", p.Description)
		assert.Equal(t, "news.example.com", p.SiteName)
		assert.Empty(t, p.Image)
	})
}

func TestFetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/ok":
			fmt.Fprint(w, ogPage)
		case "/flaky":
			if hits.Load() == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, ogPage)
		case "/js":
			fmt.Fprint(w, `<html><body><div id="app"></div></body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Run("ok", func(t *testing.T) {
		f := NewFetcher(testConfig())
		p, err := f.Fetch(context.Background(), srv.URL+"/ok")
		require.NoError(t, err)
		assert.Equal(t, "Shine Be Bright launches drone tours", p.Title)
		assert.Equal(t, srv.URL+"/media/cover.jpg", p.Image)
	})

	t.Run("retries server errors", func(t *testing.T) {
		hits.Store(0)
		f := NewFetcher(testConfig())
		p, err := f.Fetch(context.Background(), srv.URL+"/flaky")
		require.NoError(t, err)
		assert.NotEmpty(t, p.Title)
		assert.EqualValues(t, 2, hits.Load())
	})

	t.Run("404 is not retried", func(t *testing.T) {
		hits.Store(0)
		f := NewFetcher(testConfig())
		_, err := f.Fetch(context.Background(), srv.URL+"/missing")
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.EqualValues(t, 1, hits.Load())
	})

	t.Run("headless fallback", func(t *testing.T) {
		cfg := testConfig()
		cfg.HeadlessEnabled = true
		f := NewFetcher(cfg)
		f.renderHTML = func(ctx context.Context, pageURL string) (string, error) {
			return `<html><head><title>Rendered</title></head></html>`, nil
		}
		p, err := f.Fetch(context.Background(), srv.URL+"/js")
		require.NoError(t, err)
		assert.Equal(t, "Rendered", p.Title)
		assert.True(t, p.Headless)
	})

	t.Run("invalid url", func(t *testing.T) {
		f := NewFetcher(testConfig())
		for _, raw := range []string{"", "ftp://example.com", "/relative", "javascript:alert(1)"} {
			_, err := f.Fetch(context.Background(), raw)
			assert.ErrorIs(t, err, ErrInvalidURL, raw)
		}
	})
}

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(3, time.Minute, zerolog.Nop())
	cb.now = func() time.Time { return now }

	cb.RecordFailure(0)
	cb.RecordFailure(500)
	assert.True(t, cb.CanProceed())
	cb.RecordFailure(0)
	assert.False(t, cb.CanProceed(), "threshold reached")
	assert.True(t, cb.GetStatus().Open)

	now = now.Add(2 * time.Minute)
	assert.True(t, cb.CanProceed(), "reset after timeout")
	assert.Equal(t, Status{}, cb.GetStatus())

	cb.RecordFailure(http.StatusTooManyRequests)
	cb.RecordFailure(http.StatusTooManyRequests)
	assert.False(t, cb.CanProceed(), "two blocked responses open at once")
}

func TestFetchRefusedWhileOpen(t *testing.T) {
	f := NewFetcher(testConfig())
	for i := 0; i < 5; i++ {
		f.breaker.RecordFailure(0)
	}
	_, err := f.Fetch(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, ErrBreakerOpen)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dlomaxw/shinebebright-sub001/internal/auth"
	"github.com/dlomaxw/shinebebright-sub001/internal/catalog"
	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	"github.com/dlomaxw/shinebebright-sub001/internal/database"
	"github.com/dlomaxw/shinebebright-sub001/internal/database/dbtest"
	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/dlomaxw/shinebebright-sub001/internal/notify"
	"github.com/dlomaxw/shinebebright-sub001/internal/ratelimit"
	"github.com/dlomaxw/shinebebright-sub001/internal/registry"
	"github.com/dlomaxw/shinebebright-sub001/internal/search"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	mu         sync.Mutex
	properties map[string]search.PropertyDocument
	news       map[string]search.NewsDocument
	rebuilds   int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		properties: map[string]search.PropertyDocument{},
		news:       map[string]search.NewsDocument{},
	}
}

func (f *fakeIndex) SearchProperties(params search.FilterParams) (*search.PropertyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res := &search.PropertyResult{}
	for _, d := range f.properties {
		if strings.Contains(strings.ToLower(d.Title), strings.ToLower(params.Query)) {
			res.Hits = append(res.Hits, d)
		}
	}
	res.TotalHits = int64(len(res.Hits))
	return res, nil
}

func (f *fakeIndex) SearchNews(query string, limit int64) (*search.NewsResult, error) {
	return &search.NewsResult{}, nil
}

func (f *fakeIndex) IndexProperties(docs []search.PropertyDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range docs {
		f.properties[d.ID] = d
	}
	return nil
}

func (f *fakeIndex) DeleteProperty(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.properties, id)
	return nil
}

func (f *fakeIndex) IndexNews(docs []search.NewsDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range docs {
		f.news[d.ID] = d
	}
	return nil
}

func (f *fakeIndex) DeleteNews(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.news, id)
	return nil
}

func (f *fakeIndex) Rebuild(properties []search.PropertyDocument, news []search.NewsDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rebuilds++
	f.properties = map[string]search.PropertyDocument{}
	for _, d := range properties {
		f.properties[d.ID] = d
	}
	f.news = map[string]search.NewsDocument{}
	for _, d := range news {
		f.news[d.ID] = d
	}
	return nil
}

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	db     *database.GormDB
	index  *fakeIndex
	cookie *http.Cookie
}

type envSetup struct {
	routes         Routes
	deps           AdminDeps
	trustedProxies []string
}

type envOption func(*envSetup)

func withoutSearch() envOption {
	return func(s *envSetup) {
		s.routes.Public.search = nil
		s.deps.Index = nil
	}
}

func withLimit(perMinute int) envOption {
	return func(s *envSetup) {
		s.routes.Limit = ratelimit.NewKeyedLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: perMinute}).Middleware()
	}
}

func withTrustedProxies(proxies ...string) envOption {
	return func(s *envSetup) {
		s.trustedProxies = proxies
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := dbtest.New(t)
	index := newFakeIndex()
	cat := catalog.NewService(gdb, registry.Default())

	adminCfg := config.DefaultConfig().Admin
	adminCfg.SessionSecret = "handler-test-secret"

	setup := &envSetup{
		routes: Routes{
			Public: NewPublicHandler(gdb, cat, index),
			Leads:  NewLeadsHandler(gdb, notify.NewOutbox([]string{"sales@shinebebright.com"})),
			Auth:   NewAuthHandler(),
			Gate:   auth.NewManager(adminCfg, nil),
		},
		deps: AdminDeps{
			DB:      gdb,
			Catalog: cat,
			Index:   index,
			Leads:   config.DefaultConfig().Leads,
		},
	}
	for _, opt := range opts {
		opt(setup)
	}
	setup.routes.Admin = NewAdminHandler(setup.deps)

	r, err := NewEngine(setup.trustedProxies)
	require.NoError(t, err)
	Register(r, setup.routes)
	return &testEnv{t: t, router: r, db: gdb, index: index}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.doFrom("", nil, method, path, body)
}

// doFrom sends the request from remoteAddr with extra headers
func (e *testEnv) doFrom(remoteAddr string, header http.Header, method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login() {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/admin/login", gin.H{"passcode": "202512"})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionKey {
			e.cookie = c
			return
		}
	}
	e.t.Fatal("login set no session cookie")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndPlaceholder(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/placeholder/9999/300", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `width="4000"`)
}

func TestPublicProperties(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.CreateProperty(&models.Property{Title: "VAAL Kololo Gardens", Developer: "VAAL"}))
	require.NoError(t, env.db.CreateProperty(&models.Property{Title: "Unlisted Plot"}))

	w := env.do(http.MethodGet, "/api/properties?developer=VAAL", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["total"])
	props := body["properties"].([]any)
	require.Len(t, props, 1)
	first := props[0].(map[string]any)
	assert.Equal(t, catalog.SourceRegistry, first["media_source"])
	assert.Equal(t, "/images/properties/vaal/vaal-kololo-aerial.jpg", first["image_urls"].([]any)[0])

	id := first["id"].(string)
	w = env.do(http.MethodGet, "/api/properties/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode(t, w)
	assert.Equal(t, "vaal", detail["developer_folder"])
	assert.Equal(t, detail["gallery"], detail["image_urls"])

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/properties/missing", nil).Code)
}

func TestContactForm(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/contact", gin.H{"name": "A", "email": "nope"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "message")

	w = env.do(http.MethodPost, "/api/contact", gin.H{
		"name":    "Sarah Namubiru",
		"email":   "Sarah@Example.com",
		"message": "I would like a viewing of the Kololo units.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var inquiry models.ContactInquiry
	require.NoError(t, env.db.DB().First(&inquiry).Error)
	assert.Equal(t, "sarah@example.com", inquiry.Email)

	var queued int64
	require.NoError(t, env.db.DB().Model(&models.Notification{}).Count(&queued).Error)
	assert.EqualValues(t, 1, queued)
}

func TestNewsletterIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	body := gin.H{"email": "fan@example.com"}

	assert.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/newsletter", body).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/newsletter", body).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/newsletter/unsubscribe", body).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/api/newsletter/unsubscribe", gin.H{"email": "other@example.com"}).Code)
}

func TestFormsAreRateLimited(t *testing.T) {
	env := newTestEnv(t, withLimit(2))
	body := gin.H{"email": "fan@example.com"}

	assert.NotEqual(t, http.StatusTooManyRequests, env.do(http.MethodPost, "/api/newsletter", body).Code)
	assert.NotEqual(t, http.StatusTooManyRequests, env.do(http.MethodPost, "/api/newsletter", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(http.MethodPost, "/api/newsletter", body).Code)

	// reads are not limited
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/team", nil).Code)
}

func TestForwardedForIsIgnoredFromUntrustedPeers(t *testing.T) {
	env := newTestEnv(t, withLimit(2))
	body := gin.H{"email": "fan@example.com"}

	var codes []int
	for i := 0; i < 6; i++ {
		header := http.Header{"X-Forwarded-For": {fmt.Sprintf("198.51.100.%d", i+1)}}
		codes = append(codes, env.doFrom("203.0.113.7:40000", header, http.MethodPost, "/api/newsletter", body).Code)
	}
	assert.NotContains(t, codes[:2], http.StatusTooManyRequests)
	for _, code := range codes[2:] {
		assert.Equal(t, http.StatusTooManyRequests, code, "codes: %v", codes)
	}
}

func TestForwardedForIsHonouredFromTrustedProxy(t *testing.T) {
	env := newTestEnv(t, withLimit(2), withTrustedProxies("203.0.113.7"))
	body := gin.H{"email": "fan@example.com"}

	for i := 0; i < 4; i++ {
		header := http.Header{"X-Forwarded-For": {fmt.Sprintf("198.51.100.%d", i+1)}}
		w := env.doFrom("203.0.113.7:40000", header, http.MethodPost, "/api/newsletter", body)
		assert.NotEqual(t, http.StatusTooManyRequests, w.Code, "client %d", i+1)
	}
}

func TestUnmappedErrorsAreNotExposed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/properties", nil)

	respondError(c, errors.New(`pq: relation "properties" does not exist`))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), decode(t, w)["error"])
}

func TestAdminSession(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, false, decode(t, env.do(http.MethodGet, "/api/admin/session", nil))["authenticated"])
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/admin/stats", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/admin/login", gin.H{"passcode": "000000"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/admin/login", gin.H{}).Code)

	env.login()
	assert.Equal(t, true, decode(t, env.do(http.MethodGet, "/api/admin/session", nil))["authenticated"])

	w := env.do(http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w), "properties")

	w = env.do(http.MethodPost, "/api/admin/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env.cookie = nil
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/admin/stats", nil).Code)

	// logout without a session still succeeds
	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/admin/logout", nil).Code)
}

func TestAdminPropertyLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	w := env.do(http.MethodPost, "/api/admin/properties", gin.H{"title": "Test Villa", "price": 100000, "currency": "UGX"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["id"].(string)
	assert.Contains(t, env.index.properties, id)

	w = env.do(http.MethodPut, "/api/admin/properties/"+id, gin.H{"title": "Test Villa", "price": 120000, "currency": "UGX", "status": "reserved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/api/admin/properties/"+id+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types []string
	for _, c := range decode(t, w)["changes"].([]any) {
		types = append(types, c.(map[string]any)["change_type"].(string))
	}
	assert.Contains(t, types, models.ChangeTypeNew)
	assert.Contains(t, types, models.ChangeTypePrice)
	assert.Contains(t, types, models.ChangeTypeStatus)

	// titles are unique
	w = env.do(http.MethodPost, "/api/admin/properties", gin.H{"title": "Test Villa"})
	assert.NotEqual(t, http.StatusCreated, w.Code)

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/api/admin/properties/"+id, nil).Code)
	assert.NotContains(t, env.index.properties, id)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/api/admin/properties/"+id, nil).Code)
}

func TestAdminPostsAndNews(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	w := env.do(http.MethodPost, "/api/admin/posts", gin.H{"title": "Draft Notes", "content": "not yet"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Empty(t, env.index.news)

	w = env.do(http.MethodPost, "/api/admin/posts", gin.H{
		"title":   "Launch Day",
		"content": "# Launch\n\nWe opened the **Kololo** show house.",
		"status":  "published",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, env.index.news, 1)

	w = env.do(http.MethodGet, "/api/news", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = env.do(http.MethodGet, "/api/news/launch-day", nil)
	require.Equal(t, http.StatusOK, w.Code)
	html := decode(t, w)["html"].(string)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<strong>Kololo</strong>")

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/news/draft-notes", nil).Code)
}

func TestAdminLeadStatus(t *testing.T) {
	env := newTestEnv(t)
	booking := &models.DemoBooking{Name: "Kato", Email: "kato@example.com", Service: models.ServiceDrone}
	require.NoError(t, env.db.CreateLead(booking, nil))
	env.login()

	w := env.do(http.MethodPut, "/api/admin/bookings/"+booking.ID+"/status", gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "confirmed", decode(t, w)["status"])

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPut, "/api/admin/bookings/"+booking.ID+"/status", gin.H{"status": "lost"}).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPut, "/api/admin/inquiries/missing/status", gin.H{"status": "archived"}).Code)

	w = env.do(http.MethodGet, "/api/admin/bookings?status=confirmed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])
}

func TestAdminRegistry(t *testing.T) {
	env := newTestEnv(t)
	env.login()

	w := env.do(http.MethodGet, "/api/admin/media/registry/validate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["valid"])

	require.NoError(t, env.db.CreateProperty(&models.Property{Title: "VAAL Kololo Gardens"}))
	w = env.do(http.MethodPost, "/api/admin/media/registry/bind", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	unmatched := decode(t, w)["unmatched"].([]any)
	assert.Contains(t, unmatched, "VAAL Nakasero Heights")
	assert.NotContains(t, unmatched, "VAAL Kololo Gardens")

	bindings, err := env.db.ListBindings()
	require.NoError(t, err)
	assert.Empty(t, bindings)
}

func TestAdminOptionalServices(t *testing.T) {
	env := newTestEnv(t, withoutSearch())
	env.login()

	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/api/search?q=villa", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodPost, "/api/admin/search/reindex", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodPost, "/api/admin/media/thumbnails", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodPost, "/api/admin/news/preview", gin.H{"url": "https://example.com"}).Code)
}

func TestSearchAndReindex(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.CreateProperty(&models.Property{Title: "Kensington Muyenga Villas"}))
	env.login()

	w := env.do(http.MethodPost, "/api/admin/search/reindex", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode(t, w)["properties"])
	assert.Equal(t, 1, env.index.rebuilds)

	w = env.do(http.MethodGet, "/api/search?q=muyenga", nil)
	require.Equal(t, http.StatusOK, w.Code)
	props := decode(t, w)["properties"].(map[string]any)
	assert.EqualValues(t, 1, props["total_hits"])
}

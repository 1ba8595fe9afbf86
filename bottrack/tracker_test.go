package bottrack

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/remodelpress/metrics"
)

type captureReporter struct {
	mu     sync.Mutex
	events []Event
}

func (r *captureReporter) Report(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func newTrackedEcho(tr *Tracker) *echo.Echo {
	e := echo.New()
	e.Use(tr.Middleware)
	e.GET("/blog/posts/:slug", func(c echo.Context) error {
		c.Set(TitleKey, "Kitchen Island Ideas")
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound)
	})
	e.GET("/public/app.css", func(c echo.Context) error { return c.String(http.StatusOK, "") })
	return e
}

func TestTrackerReportsCrawlerPageViews(t *testing.T) {
	rep := &captureReporter{}
	tr := NewTracker("https://example.com/", rep, nil)
	tr.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	e := newTrackedEcho(tr)

	req := httptest.NewRequest(http.MethodGet, "/blog/posts/kitchen-island?ref=x", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; GPTBot/1.1)")
	req.Header.Set("Referer", "https://chat.openai.com/")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Len(t, rep.events, 1)
	ev := rep.events[0]
	assert.Equal(t, "https://example.com/blog/posts/kitchen-island?ref=x", ev.URL)
	assert.Equal(t, "https://example.com", ev.SiteURL)
	assert.Equal(t, "Kitchen Island Ideas", ev.Title)
	assert.Equal(t, "https://chat.openai.com/", ev.Referrer)
	assert.Equal(t, "2024-06-01T12:00:00Z", ev.Timestamp)
	assert.Equal(t, "GPTBot", ev.BotType)
	assert.Equal(t, CategoryAI, ev.Category)
	assert.Equal(t, MethodUserAgent, ev.DetectionMethod)
	_, err := uuid.Parse(ev.SessionID)
	assert.NoError(t, err)
}

func TestTrackerReusesSessionCookie(t *testing.T) {
	rep := &captureReporter{}
	e := newTrackedEcho(NewTracker("https://example.com", rep, nil))

	first := httptest.NewRequest(http.MethodGet, "/blog/posts/a", nil)
	first.Header.Set("User-Agent", "Googlebot/2.1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, first)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, SessionCookie, ck.Name)
	assert.Equal(t, "/", ck.Path)
	assert.True(t, ck.HttpOnly)
	assert.False(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	_, err := uuid.Parse(ck.Value)
	require.NoError(t, err)

	second := httptest.NewRequest(http.MethodGet, "/blog/posts/b", nil)
	second.Header.Set("User-Agent", "Googlebot/2.1")
	second.AddCookie(ck)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, second)
	assert.Empty(t, rec.Result().Cookies())

	require.Len(t, rep.events, 2)
	assert.Equal(t, ck.Value, rep.events[0].SessionID)
	assert.Equal(t, ck.Value, rep.events[1].SessionID)
}

func TestTrackerSessionCookie(t *testing.T) {
	cases := []struct {
		name    string
		opts    []TrackerOption
		ua      string
		cookie  string
		wantSet bool
		secure  bool
	}{
		{name: "bot without cookie", ua: "GPTBot/1.1", wantSet: true},
		{name: "secure site", opts: []TrackerOption{WithSecureCookie(true)}, ua: "GPTBot/1.1", wantSet: true, secure: true},
		{name: "invalid cookie replaced", ua: "GPTBot/1.1", cookie: "not-a-uuid", wantSet: true},
		{name: "human visitor", ua: "Mozilla/5.0 (Windows NT 10.0) Chrome/124.0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rep := &captureReporter{}
			e := newTrackedEcho(NewTracker("https://example.com", rep, nil, tc.opts...))

			req := httptest.NewRequest(http.MethodGet, "/blog/posts/a", nil)
			req.Header.Set("User-Agent", tc.ua)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tc.cookie})
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			cookies := rec.Result().Cookies()
			if !tc.wantSet {
				assert.Empty(t, cookies)
				assert.Empty(t, rep.events)
				return
			}
			require.Len(t, cookies, 1)
			assert.Equal(t, tc.secure, cookies[0].Secure)
			assert.NotEqual(t, tc.cookie, cookies[0].Value)
			require.Len(t, rep.events, 1)
			assert.Equal(t, cookies[0].Value, rep.events[0].SessionID)
		})
	}
}

func TestTrackerIgnores(t *testing.T) {
	rep := &captureReporter{}
	e := newTrackedEcho(NewTracker("https://example.com", rep, nil))

	cases := []struct {
		path string
		ua   string
	}{
		{"/blog/posts/a", "Mozilla/5.0 (Windows NT 10.0) Chrome/124.0"},
		{"/missing", "GPTBot/1.1"},
		{"/public/app.css", "GPTBot/1.1"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.Header.Set("User-Agent", tc.ua)
		e.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Empty(t, rep.events)
}

func TestHTTPReporterPostsJSON(t *testing.T) {
	received := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		received <- body
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rec := metrics.NewPrometheusRecorder(nil)
	rep := NewHTTPReporter(srv.URL, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)), rec)
	rep.Report(Event{SessionID: "s", URL: "https://example.com/", BotType: "GPTBot", Confidence: 0.95, DetectionMethod: MethodUserAgent, Category: CategoryAI})
	rep.Wait()

	body := <-received
	for _, key := range []string{"sessionId", "url", "referrer", "title", "timestamp", "siteUrl", "botType", "confidence", "detectionMethod", "category", "userAgent"} {
		assert.Contains(t, body, key)
	}
	assert.Equal(t, "GPTBot", body["botType"])
	assert.Equal(t, 0.95, body["confidence"])
}

func TestHTTPReporterTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	rep := NewHTTPReporter(srv.URL, 50*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	start := time.Now()
	rep.Report(Event{BotType: "GPTBot"})
	rep.Wait()
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHTTPReporterDropsWhenSaturated(t *testing.T) {
	var hits atomic.Int32
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-block
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rep := NewHTTPReporter(srv.URL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	for i := 0; i < maxInFlight+10; i++ {
		rep.Report(Event{BotType: "GPTBot"})
	}
	assert.Len(t, rep.slots, maxInFlight)

	close(block)
	rep.Wait()
	assert.Equal(t, int32(maxInFlight), hits.Load())
	assert.Empty(t, rep.slots)

	// Slots free up once deliveries finish.
	rep.Report(Event{BotType: "GPTBot"})
	rep.Wait()
	assert.Equal(t, int32(maxInFlight+1), hits.Load())
}

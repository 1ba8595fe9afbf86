package bottrack

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eringen/remodelpress/metrics"
)

// TitleKey is the echo context key handlers use to publish the page title.
const TitleKey = "page_title"

// SessionCookie carries the tracking session id between crawler requests.
const SessionCookie = "bt_session"

// sessionMaxAge keeps a crawler's session id for a day.
const sessionMaxAge = 24 * 60 * 60

// Tracker turns crawler page views into Events.
type Tracker struct {
	siteURL      string
	reporter     Reporter
	recorder     metrics.Recorder
	secureCookie bool
	now          func() time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithSecureCookie marks the session cookie Secure, for sites served over HTTPS.
func WithSecureCookie(secure bool) TrackerOption {
	return func(t *Tracker) { t.secureCookie = secure }
}

// NewTracker returns a Tracker for the site at siteURL. A nil reporter only
// counts detections.
func NewTracker(siteURL string, reporter Reporter, recorder metrics.Recorder, opts ...TrackerOption) *Tracker {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	t := &Tracker{
		siteURL:  strings.TrimRight(siteURL, "/"),
		reporter: reporter,
		recorder: recorder,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Middleware reports successful GET page views made by crawlers once the
// page handler has run. The session cookie is set before the handler writes
// the response. Static assets and operational endpoints are ignored.
func (t *Tracker) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if req.Method != http.MethodGet || skipPath(req.URL.Path) {
			return next(c)
		}
		det, ok := Detect(req.UserAgent())
		if !ok {
			return next(c)
		}
		sid := t.session(c)

		err := next(c)

		t.recorder.IncBotDetected(det.Category, det.BotType)
		if t.reporter != nil && err == nil && c.Response().Status < http.StatusBadRequest {
			t.reporter.Report(t.event(c, det, sid))
		}
		return err
	}
}

func (t *Tracker) event(c echo.Context, det Detection, sid string) Event {
	req := c.Request()
	title, _ := c.Get(TitleKey).(string)
	return Event{
		SessionID:       sid,
		URL:             t.siteURL + req.URL.RequestURI(),
		Referrer:        req.Referer(),
		Title:           title,
		Timestamp:       t.now().UTC().Format(time.RFC3339),
		SiteURL:         t.siteURL,
		BotType:         det.BotType,
		Confidence:      det.Confidence,
		DetectionMethod: det.Method,
		Category:        det.Category,
		UserAgent:       req.UserAgent(),
	}
}

// session returns the id from the session cookie, minting and setting a new
// one when the cookie is missing or invalid.
func (t *Tracker) session(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(ck.Value); err == nil {
			return ck.Value
		}
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   t.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func skipPath(path string) bool {
	switch {
	case strings.HasPrefix(path, "/public/"),
		path == "/metrics", path == "/healthz",
		path == "/robots.txt", path == "/sitemap.xml", path == "/feed.xml",
		path == "/favicon.ico", path == "/favicon.svg":
		return true
	}
	return false
}

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounters(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncStoreError("fetch_by_slug")
	pr.IncStoreError("fetch_by_slug")
	pr.IncNotFound("/tips/:slug")
	pr.IncBotDetected("ai", "GPTBot")
	pr.IncBotReport(true)
	pr.IncBotReport(false)
	pr.IncSignup(SignupOK)
	pr.SetSitemapURLs(42)
	pr.ObserveRequest("/blog", 200, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.storeErrors.WithLabelValues("fetch_by_slug")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.notFound.WithLabelValues("/tips/:slug")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.botsDetected.WithLabelValues("ai", "GPTBot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.botReports.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.signups.WithLabelValues(SignupOK)))
	assert.Equal(t, 42.0, testutil.ToFloat64(pr.sitemapURLs))
	assert.Equal(t, 1, testutil.CollectAndCount(pr.requestDuration))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestPrometheusHandler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncSignup(SignupRejected)

	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), `remodelpress_newsletter_signups_total{outcome="rejected"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncSignup(SignupOK)
	r.ObserveRequest("/", 200, time.Millisecond)
}

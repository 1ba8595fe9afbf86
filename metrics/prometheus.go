package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "remodelpress"

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	reg *prom.Registry

	requestDuration *prom.HistogramVec
	storeErrors     *prom.CounterVec
	notFound        *prom.CounterVec
	botsDetected    *prom.CounterVec
	botReports      *prom.CounterVec
	signups         *prom.CounterVec
	sitemapURLs     prom.Gauge
}

// NewPrometheusRecorder registers the site collectors on reg, or on a fresh
// registry with Go runtime and process collectors when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	p := &PrometheusRecorder{
		reg: reg,
		requestDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Page request latency by route and status",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "status"}),
		storeErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failed content store reads by operation",
		}, []string{"op"}),
		notFound: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "not_found_total",
			Help:      "Post lookups that matched nothing, by route",
		}, []string{"route"}),
		botsDetected: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "bots_detected_total",
			Help:      "Crawler page views by category and bot",
		}, []string{"category", "bot"}),
		botReports: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "bot_reports_total",
			Help:      "Bot events delivered to the tracking endpoint",
		}, []string{"result"}),
		signups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "newsletter_signups_total",
			Help:      "Newsletter signups by outcome",
		}, []string{"outcome"}),
		sitemapURLs: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "sitemap_urls",
			Help:      "Entries in the last generated sitemap",
		}),
	}
	reg.MustRegister(p.requestDuration, p.storeErrors, p.notFound, p.botsDetected, p.botReports, p.signups, p.sitemapURLs)
	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (p *PrometheusRecorder) ObserveRequest(route string, status int, d time.Duration) {
	p.requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStoreError(op string) {
	p.storeErrors.WithLabelValues(op).Inc()
}

func (p *PrometheusRecorder) IncNotFound(route string) {
	p.notFound.WithLabelValues(route).Inc()
}

func (p *PrometheusRecorder) IncBotDetected(category, bot string) {
	p.botsDetected.WithLabelValues(category, bot).Inc()
}

func (p *PrometheusRecorder) IncBotReport(success bool) {
	res := "failed"
	if success {
		res = "success"
	}
	p.botReports.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) IncSignup(outcome string) {
	p.signups.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetSitemapURLs(n int) {
	p.sitemapURLs.Set(float64(n))
}

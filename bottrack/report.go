package bottrack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/eringen/remodelpress/metrics"
)

// Event is the JSON body sent to the tracking endpoint for one crawler page
// view.
type Event struct {
	SessionID       string  `json:"sessionId"`
	URL             string  `json:"url"`
	Referrer        string  `json:"referrer"`
	Title           string  `json:"title"`
	Timestamp       string  `json:"timestamp"`
	SiteURL         string  `json:"siteUrl"`
	BotType         string  `json:"botType"`
	Confidence      float64 `json:"confidence"`
	DetectionMethod string  `json:"detectionMethod"`
	Category        string  `json:"category"`
	UserAgent       string  `json:"userAgent"`
}

// Reporter delivers events. Report must not block the caller.
type Reporter interface {
	Report(ev Event)
}

// maxInFlight caps concurrent deliveries per reporter.
const maxInFlight = 16

// HTTPReporter posts events as JSON from background goroutines, one attempt
// each, bounded by a timeout. At most maxInFlight deliveries run at once;
// events reported while all slots are busy are dropped.
type HTTPReporter struct {
	url      string
	client   *http.Client
	timeout  time.Duration
	logger   *slog.Logger
	recorder metrics.Recorder
	slots    chan struct{}
	wg       sync.WaitGroup
}

// NewHTTPReporter returns a reporter for endpoint. A nil recorder discards
// delivery counts.
func NewHTTPReporter(endpoint string, timeout time.Duration, logger *slog.Logger, recorder metrics.Recorder) *HTTPReporter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &HTTPReporter{
		url:      endpoint,
		client:   &http.Client{},
		timeout:  timeout,
		logger:   logger,
		recorder: recorder,
		slots:    make(chan struct{}, maxInFlight),
	}
}

// Report sends ev in the background, or drops it when too many deliveries
// are already in flight.
func (r *HTTPReporter) Report(ev Event) {
	select {
	case r.slots <- struct{}{}:
	default:
		r.recorder.IncBotReport(false)
		r.logger.Warn("bot event dropped", "bot", ev.BotType, "url", ev.URL, "in_flight", cap(r.slots))
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() { <-r.slots }()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		err := r.send(ctx, ev)
		r.recorder.IncBotReport(err == nil)
		if err != nil {
			r.logger.Warn("bot event delivery failed", "bot", ev.BotType, "url", ev.URL, "error", err)
		}
	}()
}

// Wait blocks until in-flight deliveries finish.
func (r *HTTPReporter) Wait() {
	r.wg.Wait()
}

func (r *HTTPReporter) send(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("bottrack: endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Package metrics records site activity. The web layer depends on Recorder;
// Prometheus backs it in production and NoopRecorder in tests.
package metrics

import "time"

// Outcome labels for newsletter signups.
const (
	SignupOK       = "ok"
	SignupInvalid  = "invalid"
	SignupRejected = "rejected"
	SignupFailed   = "failed"
	SignupLimited  = "limited"
)

// Recorder is the set of measurements the site emits.
type Recorder interface {
	ObserveRequest(route string, status int, d time.Duration)
	IncStoreError(op string)
	IncNotFound(route string)
	IncBotDetected(category, bot string)
	IncBotReport(success bool)
	IncSignup(outcome string)
	SetSitemapURLs(n int)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveRequest(string, int, time.Duration) {}
func (NoopRecorder) IncStoreError(string)                      {}
func (NoopRecorder) IncNotFound(string)                        {}
func (NoopRecorder) IncBotDetected(string, string)             {}
func (NoopRecorder) IncBotReport(bool)                         {}
func (NoopRecorder) IncSignup(string)                          {}
func (NoopRecorder) SetSitemapURLs(int)                        {}

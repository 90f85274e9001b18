package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voicehire/internal/session"
)

// Metrics aggregates interview session counters for operators. Sessions are
// long-lived, so the active gauge plus the terminal counters together
// describe the fleet at a glance.
type Metrics struct {
	registry *prometheus.Registry

	sessionsStarted   prometheus.Counter
	sessionsCompleted prometheus.Counter
	sessionsFailed    prometheus.Counter
	activeSessions    prometheus.Gauge

	captureRestarts    prometheus.Counter
	playbackFallbacks  prometheus.Counter
	manualEntries      prometheus.Counter
	transcriptEntries  *prometheus.CounterVec
	transcriptFailures prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		sessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicehire_sessions_started_total",
			Help: "Interview sessions started.",
		}),
		sessionsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicehire_sessions_completed_total",
			Help: "Interview sessions that reached completion.",
		}),
		sessionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicehire_sessions_failed_total",
			Help: "Interview sessions that ended in failure.",
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voicehire_active_sessions",
			Help: "Interview sessions currently running.",
		}),
		captureRestarts: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicehire_capture_restarts_total",
			Help: "Automatic speech capture restarts.",
		}),
		playbackFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicehire_playback_fallbacks_total",
			Help: "Questions advanced by the playback fallback timer.",
		}),
		manualEntries: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicehire_manual_entries_total",
			Help: "Questions that degraded to manual text entry.",
		}),
		transcriptEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voicehire_transcript_entries_total",
			Help: "Transcript entries recorded, by speaker.",
		}, []string{"speaker"}),
		transcriptFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicehire_transcript_append_failures_total",
			Help: "Transcript entries that could not be persisted.",
		}),
	}
}

// Handler serves the scrape endpoint for this process's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionStarted() {
	m.sessionsStarted.Inc()
	m.activeSessions.Inc()
}

func (m *Metrics) SessionEnded() {
	m.activeSessions.Dec()
}

func (m *Metrics) TranscriptAppendFailed() {
	m.transcriptFailures.Inc()
}

// Listen wraps a session listener so every session reports through the
// shared counters. next may be nil.
func (m *Metrics) Listen(next session.Listener) session.Listener {
	if next == nil {
		next = session.NoopListener{}
	}
	return &sessionListener{metrics: m, next: next}
}

type sessionListener struct {
	metrics *Metrics
	next    session.Listener
}

func (l *sessionListener) OnPhase(s session.State, questionIndex int) {
	switch s {
	case session.StateCompleted:
		l.metrics.sessionsCompleted.Inc()
	case session.StateFailed:
		l.metrics.sessionsFailed.Inc()
	}
	l.next.OnPhase(s, questionIndex)
}

func (l *sessionListener) OnTranscript(e session.Entry) {
	l.metrics.transcriptEntries.WithLabelValues(string(e.Speaker)).Inc()
	l.next.OnTranscript(e)
}

func (l *sessionListener) OnPartial(questionIndex int, text string) {
	l.next.OnPartial(questionIndex, text)
}

func (l *sessionListener) OnCaptureRestart(questionIndex, attempt int) {
	l.metrics.captureRestarts.Inc()
	l.next.OnCaptureRestart(questionIndex, attempt)
}

func (l *sessionListener) OnPlaybackFallback(questionIndex int) {
	l.metrics.playbackFallbacks.Inc()
	l.next.OnPlaybackFallback(questionIndex)
}

func (l *sessionListener) OnManualRequired(questionIndex int) {
	l.metrics.manualEntries.Inc()
	l.next.OnManualRequired(questionIndex)
}

func (l *sessionListener) OnWarning(message string) {
	l.next.OnWarning(message)
}

// Package metrics provides Prometheus metrics for the bidding mission service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  *prometheus.Registry

	// Scoring engine
	scoringPasses  prometheus.Counter
	invalidPrices  prometheus.Counter
	scoringLatency prometheus.Histogram

	// Sync bus
	busPublished     *prometheus.CounterVec
	busDelivered     prometheus.Counter
	busDropped       prometheus.Counter
	busSubscriptions prometheus.Gauge

	// Team notes
	noteFlushes      prometheus.Counter
	noteRemovals     prometheus.Counter
	debounceRestarts prometheus.Counter
	noteStoreReads   prometheus.Counter
	noteStoreWrites  prometheus.Counter
	noteStoreErrors  prometheus.Counter
	teamsTracked     prometheus.Gauge

	// Feedback collaborator
	feedbackRequests prometheus.Counter
	feedbackFailures prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the metrics namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(sub string) Option {
	return func(m *Manager) {
		if sub != "" {
			m.subsystem = sub
		}
	}
}

// WithHistogramBuckets overrides the default latency buckets (milliseconds).
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// NewManager creates a Manager and registers all collectors on a fresh registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "saudi",
		subsystem: "mission",
		buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initialize()
	return m
}

func (m *Manager) initialize() {
	factory := promauto.With(m.registry)

	m.scoringPasses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "scoring_passes_total",
		Help: "Number of completed ranking passes.",
	})
	m.invalidPrices = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "scoring_invalid_prices_total",
		Help: "Number of ranking requests declined due to an invalid price.",
	})
	m.scoringLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "scoring_latency_ms",
		Help:    "Ranking pass latency in milliseconds.",
		Buckets: m.buckets,
	})

	m.busPublished = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "bus_messages_published_total",
		Help: "Messages published on the sync bus, by message type.",
	}, []string{"type"})
	m.busDelivered = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "bus_messages_delivered_total",
		Help: "Messages delivered to bus subscribers.",
	})
	m.busDropped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "bus_messages_dropped_total",
		Help: "Messages dropped because a subscriber inbox was full or closed.",
	})
	m.busSubscriptions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "bus_subscriptions",
		Help: "Currently active bus subscriptions.",
	})

	m.noteFlushes = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "notes_flushes_total",
		Help: "Debounced note flushes (persist + broadcast).",
	})
	m.noteRemovals = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "notes_removals_total",
		Help: "Immediate note removals (persist + broadcast without debounce).",
	})
	m.debounceRestarts = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "notes_debounce_restarts_total",
		Help: "Times an edit restarted a pending debounce timer.",
	})
	m.noteStoreReads = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "note_store_reads_total",
		Help: "Reads from the note store.",
	})
	m.noteStoreWrites = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "note_store_writes_total",
		Help: "Writes to the note store.",
	})
	m.noteStoreErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "note_store_errors_total",
		Help: "Note store operations that returned an error.",
	})
	m.teamsTracked = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "teams_tracked",
		Help: "Teams with persisted notes.",
	})

	m.feedbackRequests = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "feedback_requests_total",
		Help: "Requests sent to the feedback collaborator.",
	})
	m.feedbackFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "feedback_failures_total",
		Help: "Feedback requests that fell back to the canned message.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: m.buckets,
	}, []string{"endpoint", "method"})
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

var defaultManager = NewManager()

// Default returns the package-level Manager.
func Default() *Manager { return defaultManager }

// Package-level helpers recording on the default Manager.

func RecordScoringPass()                { defaultManager.scoringPasses.Inc() }
func RecordInvalidPrice()               { defaultManager.invalidPrices.Inc() }
func RecordScoringLatency(ms float64)   { defaultManager.scoringLatency.Observe(ms) }
func RecordBusPublished(msgType string) { defaultManager.busPublished.WithLabelValues(msgType).Inc() }
func RecordBusDelivered()               { defaultManager.busDelivered.Inc() }
func RecordBusDropped()                 { defaultManager.busDropped.Inc() }
func UpdateBusSubscriptions(n int)      { defaultManager.busSubscriptions.Set(float64(n)) }
func RecordNoteFlush()                  { defaultManager.noteFlushes.Inc() }
func RecordNoteRemoval()                { defaultManager.noteRemovals.Inc() }
func RecordDebounceRestart()            { defaultManager.debounceRestarts.Inc() }
func RecordNoteStoreRead()              { defaultManager.noteStoreReads.Inc() }
func RecordNoteStoreWrite()             { defaultManager.noteStoreWrites.Inc() }
func RecordNoteStoreError()             { defaultManager.noteStoreErrors.Inc() }
func UpdateTeamsTracked(n int)          { defaultManager.teamsTracked.Set(float64(n)) }
func RecordFeedbackRequest()            { defaultManager.feedbackRequests.Inc() }
func RecordFeedbackFailure()            { defaultManager.feedbackFailures.Inc() }

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	defaultManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records how long an HTTP request took.
func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	defaultManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}

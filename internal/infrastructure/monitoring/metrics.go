package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "formfill"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Suggestion metrics
	SuggestionsTotal *prometheus.CounterVec

	// Filling metrics
	FillsTotal      *prometheus.CounterVec
	FillDuration    *prometheus.HistogramVec
	FieldsFilled    *prometheus.CounterVec
	FieldsSkipped   *prometheus.CounterVec
	StaleFormAborts prometheus.Counter
	BlockedByPolicy prometheus.Counter

	// Refill metrics
	RefillsTotal    *prometheus.CounterVec
	ClearedByScript prometheus.Counter

	// Undo metrics
	UndosTotal *prometheus.CounterVec

	// Field log metrics
	FieldLogEvents *prometheus.CounterVec

	// Form cache
	FormsCached prometheus.Gauge

	startTime time.Time
	snapshot  Snapshot
	mu        sync.RWMutex
}

// Snapshot holds running totals for the JSON health endpoint
type Snapshot struct {
	Suggestions int64   `json:"suggestions"`
	Fills       int64   `json:"fills"`
	Undos       int64   `json:"undos"`
	Refills     int64   `json:"refills"`
	StaleAborts int64   `json:"stale_aborts"`
	UptimeSecs  float64 `json:"uptime_seconds"`
}

// NewMetrics creates the collectors and registers them with reg. A nil
// registerer leaves them unregistered, which tests rely on.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),

		SuggestionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "suggestions_total",
				Help:      "Suggestion requests by product and outcome",
			},
			[]string{"product", "outcome"},
		),

		FillsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fills_total",
				Help:      "Fill operations by product, action and status",
			},
			[]string{"product", "action", "status"},
		),
		FillDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fill_duration_seconds",
				Help:      "Time spent computing a fill",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
			[]string{"product"},
		),
		FieldsFilled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fields_filled_total",
				Help:      "Fields written by committed fills",
			},
			[]string{"product"},
		),
		FieldsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fields_skipped_total",
				Help:      "Section fields left untouched, by skip reason",
			},
			[]string{"reason"},
		),
		StaleFormAborts: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_form_aborts_total",
				Help:      "Fills aborted because the live form drifted from the cached one",
			},
		),
		BlockedByPolicy: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fields_blocked_by_frame_policy_total",
				Help:      "Intended writes the driver refused under the iframe policy",
			},
		),

		RefillsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refills_total",
				Help:      "Refill decisions by trigger reason and outcome",
			},
			[]string{"reason", "outcome"},
		),
		ClearedByScript: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "autofilled_values_cleared_by_script_total",
				Help:      "Fill operations whose values were cleared by page script inside the refill window",
			},
		),

		UndosTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "undos_total",
				Help:      "Undo operations by product",
			},
			[]string{"product"},
		),

		FieldLogEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "field_log_events_total",
				Help:      "Field log events flushed at submission or teardown, by kind",
			},
			[]string{"kind"},
		),

		FormsCached: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "forms_cached",
				Help:      "Number of forms currently cached by the manager",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSuggestions records the outcome of a suggestion request
func (m *Metrics) RecordSuggestions(product, outcome string) {
	m.SuggestionsTotal.WithLabelValues(product, outcome).Inc()
	m.mu.Lock()
	m.snapshot.Suggestions++
	m.mu.Unlock()
}

// RecordFill records a fill outcome and the number of fields it wrote
func (m *Metrics) RecordFill(product, action, status string, filled int) {
	m.FillsTotal.WithLabelValues(product, action, status).Inc()
	if filled > 0 && action == "fill" {
		m.FieldsFilled.WithLabelValues(product).Add(float64(filled))
	}
	m.mu.Lock()
	m.snapshot.Fills++
	m.mu.Unlock()
}

// RecordSkipped records one skipped field
func (m *Metrics) RecordSkipped(reason string) {
	m.FieldsSkipped.WithLabelValues(reason).Inc()
}

// IncStaleFormAborts counts a fill aborted on stale structure
func (m *Metrics) IncStaleFormAborts() {
	m.StaleFormAborts.Inc()
	m.mu.Lock()
	m.snapshot.StaleAborts++
	m.mu.Unlock()
}

// AddBlockedByPolicy counts writes the driver withheld
func (m *Metrics) AddBlockedByPolicy(n int) {
	if n > 0 {
		m.BlockedByPolicy.Add(float64(n))
	}
}

// RecordRefill records a refill decision
func (m *Metrics) RecordRefill(reason, outcome string) {
	m.RefillsTotal.WithLabelValues(reason, outcome).Inc()
	if outcome == "attempted" {
		m.mu.Lock()
		m.snapshot.Refills++
		m.mu.Unlock()
	}
}

// IncClearedByScript counts one fill operation whose values a script cleared
func (m *Metrics) IncClearedByScript() {
	m.ClearedByScript.Inc()
}

// RecordUndo records an undo for a product
func (m *Metrics) RecordUndo(product string) {
	m.UndosTotal.WithLabelValues(product).Inc()
	m.mu.Lock()
	m.snapshot.Undos++
	m.mu.Unlock()
}

// RecordFieldLogEvents adds flushed event counts by kind
func (m *Metrics) RecordFieldLogEvents(counts map[string]int) {
	for kind, n := range counts {
		m.FieldLogEvents.WithLabelValues(kind).Add(float64(n))
	}
}

// SetFormsCached sets the number of cached forms
func (m *Metrics) SetFormsCached(count int) {
	m.FormsCached.Set(float64(count))
}

// GetSnapshot returns the running totals
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.snapshot
	s.UptimeSecs = time.Since(m.startTime).Seconds()
	return s
}

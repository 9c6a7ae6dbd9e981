package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the loan intake engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	CatalogFallbacks        *prometheus.CounterVec
	DependentFetchFailures  *prometheus.CounterVec
	StaleResponsesDiscarded *prometheus.CounterVec
	IdentityLookups         *prometheus.CounterVec
	IdentityLookupDuration  prometheus.Histogram
	FilesRejected           *prometheus.CounterVec
	SubmissionsBlocked      prometheus.Counter
	Submissions             *prometheus.CounterVec
	RequestDuration         *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers all metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration panics.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CatalogFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loanintake_catalog_fallbacks_total",
			Help: "Reference catalogs served from built-in defaults after a provider failure",
		}, []string{"catalog"}),
		DependentFetchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loanintake_dependent_fetch_failures_total",
			Help: "Gewog or PEP sub-category fetches that failed and yielded an empty list",
		}, []string{"kind"}),
		StaleResponsesDiscarded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loanintake_stale_responses_discarded_total",
			Help: "Async responses discarded because their trigger was superseded",
		}, []string{"kind"}),
		IdentityLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loanintake_identity_lookups_total",
			Help: "Identity verification lookups by outcome",
		}, []string{"outcome"}),
		IdentityLookupDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanintake_identity_lookup_duration_seconds",
			Help:    "Latency of identity verification lookups",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FilesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loanintake_files_rejected_total",
			Help: "Uploads rejected by the client-side file gate",
		}, []string{"reason"}),
		SubmissionsBlocked: f.NewCounter(prometheus.CounterOpts{
			Name: "loanintake_submissions_blocked_total",
			Help: "Submissions blocked by validation failures",
		}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "loanintake_submissions_total",
			Help: "Submissions sent to the backend by outcome",
		}, []string{"outcome"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loanintake_http_request_duration_seconds",
			Help:    "Latency of engine API requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method"}),
	}
}

func (m *Metrics) IncrementCatalogFallback(catalog string) {
	if m == nil {
		return
	}
	m.CatalogFallbacks.WithLabelValues(catalog).Inc()
}

func (m *Metrics) IncrementDependentFetchFailure(kind string) {
	if m == nil {
		return
	}
	m.DependentFetchFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementStaleDiscarded(kind string) {
	if m == nil {
		return
	}
	m.StaleResponsesDiscarded.WithLabelValues(kind).Inc()
}

// ObserveIdentityLookup records a lookup outcome and its latency.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveIdentityLookup(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.IdentityLookups.WithLabelValues(outcome).Inc()
	m.IdentityLookupDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementFileRejected(reason string) {
	if m == nil {
		return
	}
	m.FilesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementSubmissionBlocked() {
	if m == nil {
		return
	}
	m.SubmissionsBlocked.Inc()
}

func (m *Metrics) IncrementSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

// ObserveRequest records the duration of an API request.
func (m *Metrics) ObserveRequest(method string, start time.Time) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transition outcomes
const (
	OutcomeOK    = "ok"
	OutcomeGuard = "guard"
	OutcomeError = "error"
)

// Metrics holds the Prometheus collectors of the service.
// All methods are safe on a nil receiver so tests can pass nil.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	Transitions         *prometheus.CounterVec
	SequencesIssued     *prometheus.CounterVec
	InvoicesGenerated   prometheus.Counter
}

// New creates and registers the collectors on reg; nil means the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visa_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "visa_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visa_workflow_transitions_total",
			Help: "Workflow actions by entity, action and outcome",
		}, []string{"entity", "action", "outcome"}),
		SequencesIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "visa_sequences_issued_total",
			Help: "Display names drawn per sequence namespace",
		}, []string{"namespace"}),
		InvoicesGenerated: f.NewCounter(prometheus.CounterOpts{
			Name: "visa_invoices_generated_total",
			Help: "Invoices synthesized from payments",
		}),
	}
}

// ObserveHTTP records one finished request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Transition records a workflow action result
func (m *Metrics) Transition(entity, action, outcome string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(entity, action, outcome).Inc()
}

// SequenceIssued counts one drawn display name
func (m *Metrics) SequenceIssued(namespace string) {
	if m == nil {
		return
	}
	m.SequencesIssued.WithLabelValues(namespace).Inc()
}

// InvoiceGenerated counts one synthesized invoice
func (m *Metrics) InvoiceGenerated() {
	if m == nil {
		return
	}
	m.InvoicesGenerated.Inc()
}

// Package metrics registers the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services and middleware report outcomes to.
type Recorder interface {
	RecordSignup(result string)
	RecordLogin(result string)
	RecordSessionEvent(op, result string)
	RecordGuardDecision(decision string)
	RecordRequest(method string, status int, latency time.Duration)
}

type Collector struct {
	signups         *prometheus.CounterVec
	logins          *prometheus.CounterVec
	sessionEvents   *prometheus.CounterVec
	guardDecisions  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authportal_signups_total",
			Help: "Signup attempts by result.",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authportal_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authportal_session_events_total",
			Help: "Session tracking operations by operation and result.",
		}, []string{"op", "result"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authportal_guard_decisions_total",
			Help: "Route guard decisions.",
		}, []string{"decision"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authportal_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	reg.MustRegister(
		c.signups,
		c.logins,
		c.sessionEvents,
		c.guardDecisions,
		c.requestDuration,
	)

	return c
}

func (c *Collector) RecordSignup(result string) {
	c.signups.WithLabelValues(result).Inc()
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordSessionEvent(op, result string) {
	c.sessionEvents.WithLabelValues(op, result).Inc()
}

func (c *Collector) RecordGuardDecision(decision string) {
	c.guardDecisions.WithLabelValues(decision).Inc()
}

func (c *Collector) RecordRequest(method string, status int, latency time.Duration) {
	c.requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(latency.Seconds())
}

// Handler serves the Prometheus scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordSignup(string) {}
func (Nop) RecordLogin(string) {}
func (Nop) RecordSessionEvent(string, string) {}
func (Nop) RecordGuardDecision(string) {}
func (Nop) RecordRequest(string, int, time.Duration) {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)

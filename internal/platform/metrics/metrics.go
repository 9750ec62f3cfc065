package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the overlay server.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     prometheus.Counter
	errorsTotal       prometheus.Counter
	watchEventsTotal  *prometheus.CounterVec
	reloadsTotal      prometheus.Counter
	publishesTotal    prometheus.Counter
	suppressedTotal   prometheus.Counter
	sessionsTotal     prometheus.Counter
	activeSessions    prometheus.Gauge
	hubSubscribers    prometheus.Gauge
	hubVersion        prometheus.Gauge
	hubDroppedUpdates prometheus.Gauge
}

// New creates and registers the metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "overlay_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "overlay_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
		watchEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "overlay_watch_events_total",
			Help: "Filesystem events for team files, by category",
		}, []string{"category"}),
		reloadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "overlay_reloads_total",
			Help: "Team directory rereads after a settle delay",
		}),
		publishesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "overlay_publishes_total",
			Help: "Roster sets published to the hub",
		}),
		suppressedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "overlay_reloads_suppressed_total",
			Help: "Rereads skipped because no team file content changed",
		}),
		sessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "overlay_ws_sessions_total",
			Help: "Websocket sessions opened",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "overlay_ws_sessions_active",
			Help: "Websocket sessions currently open",
		}),
		hubSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "overlay_hub_subscribers",
			Help: "Subscribers attached to the hub",
		}),
		hubVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "overlay_hub_version",
			Help: "Number of values published since start",
		}),
		hubDroppedUpdates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "overlay_hub_dropped_updates",
			Help: "Queued values discarded for lagging subscribers since start",
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.watchEventsTotal,
		m.reloadsTotal,
		m.publishesTotal,
		m.suppressedTotal,
		m.sessionsTotal,
		m.activeSessions,
		m.hubSubscribers,
		m.hubVersion,
		m.hubDroppedUpdates,
	)
	return m
}

func (m *Metrics) IncRequests() { m.requestsTotal.Inc() }

func (m *Metrics) IncErrors() { m.errorsTotal.Inc() }

// IncWatchEvents counts one team file event of the given category.
func (m *Metrics) IncWatchEvents(category string) {
	m.watchEventsTotal.WithLabelValues(category).Inc()
}

func (m *Metrics) IncReloads() { m.reloadsTotal.Inc() }

func (m *Metrics) IncPublishes() { m.publishesTotal.Inc() }

func (m *Metrics) IncSuppressed() { m.suppressedTotal.Inc() }

// SessionOpened and SessionClosed track websocket sessions.
func (m *Metrics) SessionOpened() {
	m.sessionsTotal.Inc()
	m.activeSessions.Inc()
}

func (m *Metrics) SessionClosed() { m.activeSessions.Dec() }

// SetHub records the hub's view; called before each scrape.
func (m *Metrics) SetHub(version, subscribers, dropped int) {
	m.hubVersion.Set(float64(version))
	m.hubSubscribers.Set(float64(subscribers))
	m.hubDroppedUpdates.Set(float64(dropped))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}

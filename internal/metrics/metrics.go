// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Total API requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	apiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "API request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	activeRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "api_active_requests",
		Help: "Requests currently being served.",
	})

	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections",
		Help: "Currently connected websocket clients.",
	})

	wsMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Chat messages relayed over websocket.",
	})
)

// RecordAPIRequest records one finished request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	apiRequests.WithLabelValues(method, route, status).Inc()
	apiDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge.
func TrackActiveRequest(start bool) {
	if start {
		activeRequests.Inc()
	} else {
		activeRequests.Dec()
	}
}

// TrackWSConnection moves the websocket client gauge.
func TrackWSConnection(connected bool) {
	if connected {
		wsConnections.Inc()
	} else {
		wsConnections.Dec()
	}
}

// RecordWSMessage counts one relayed chat message.
func RecordWSMessage() {
	wsMessages.Inc()
}

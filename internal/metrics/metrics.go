// Package metrics exposes Prometheus collectors for HTTP traffic and the
// transport domain.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rideconnect_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rideconnect_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SignupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rideconnect_signups_total",
			Help: "Self-registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	AssignmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rideconnect_bus_assignments_total",
			Help: "Students assigned to buses",
		},
	)

	AnnouncementsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rideconnect_announcements_total",
			Help: "Announcements posted",
		},
	)

	WhitelistAdds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rideconnect_whitelist_adds_total",
			Help: "Whitelist additions by source",
		},
		[]string{"source"},
	)

	WebsocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rideconnect_websocket_clients",
			Help: "Connected announcement stream clients",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		SignupsTotal,
		AssignmentsTotal,
		AnnouncementsTotal,
		WhitelistAdds,
		WebsocketClients,
	)
}

// RecordRequest records one finished HTTP request.
func RecordRequest(method, path, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, path, status).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

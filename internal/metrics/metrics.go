// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_ops_session_transitions_total",
			Help: "Cleaning session transitions by target status.",
		},
		[]string{"status"},
	)

	PushDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_ops_push_deliveries_total",
			Help: "Push deliveries attempted by the fan-out, by result.",
		},
		[]string{"result"},
	)

	MaintenanceReminders = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hotel_ops_maintenance_reminders_total",
			Help: "Maintenance reminders emitted by the sweep.",
		},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_ops_http_requests_total",
			Help: "HTTP requests by route, method and status class.",
		},
		[]string{"route", "method", "code"},
	)
)

func init() {
	prometheus.MustRegister(SessionTransitions, PushDeliveries, MaintenanceReminders, HTTPRequests)
}

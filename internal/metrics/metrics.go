package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	availabilityQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "studiobook",
			Name:      "availability_queries_total",
			Help:      "Availability slot queries served.",
		},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "studiobook",
			Name:      "bookings_created_total",
			Help:      "Appointments committed to the ledger.",
		},
	)

	bookingsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studiobook",
			Name:      "bookings_rejected_total",
			Help:      "Booking requests rejected by validation, by error code.",
		},
		[]string{"code"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studiobook",
			Name:      "notifications_total",
			Help:      "Confirmation emails dispatched, by outcome.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(availabilityQueries, bookingsCreated, bookingsRejected, notifications)
	})
}

func IncAvailabilityQuery() {
	availabilityQueries.Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncBookingRejected(code string) {
	bookingsRejected.WithLabelValues(code).Inc()
}

func IncNotification(status string) {
	notifications.WithLabelValues(status).Inc()
}

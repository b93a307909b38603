package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "movers",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "movers",
			Name:      "booking_transitions_total",
			Help:      "Booking state transitions by resulting status.",
		},
		[]string{"status"},
	)

	quotesComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "movers",
			Name:      "quotes_computed_total",
			Help:      "Quotes computed by pricing strategy.",
		},
		[]string{"strategy"},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "movers",
			Name:      "notifications_total",
			Help:      "Notification deliveries by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingTransitions, quotesComputed, notificationsSent)
	})
}

func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

func IncQuoteComputed(strategy string) {
	quotesComputed.WithLabelValues(strategy).Inc()
}

func IncNotification(outcome string) {
	notificationsSent.WithLabelValues(outcome).Inc()
}

package notifications

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "incidenttracker"

var (
	notificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "queue_length",
			Help:      "Number of notifications waiting for delivery",
		},
	)

	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Total notifications processed by outcome",
		},
		[]string{"message_type", "status"},
	)

	notificationSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "send_duration_seconds",
			Help:      "Time to deliver a notification, retries included",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Delivery outcomes.
const (
	statusSuccess = "success"
	statusRetry   = "retry"
	statusFailed  = "failed"
	statusDropped = "dropped"
)

func recordNotificationSent(messageType MessageType, status string) {
	notificationsSent.WithLabelValues(string(messageType), status).Inc()
}

func recordNotificationDuration(d time.Duration) {
	notificationSendDuration.Observe(d.Seconds())
}

func recordQueueLength(n int) {
	notificationQueueLength.Set(float64(n))
}

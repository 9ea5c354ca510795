package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// emails pulled through the extraction pipeline
	EmailsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cakewatch_emails_processed_total",
			Help: "Total number of transaction emails processed",
		},
		[]string{"status"}, // status: success, failed
	)

	// outbound alerts per channel
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cakewatch_notifications_sent_total",
			Help: "Total number of transaction alerts dispatched",
		},
		[]string{"channel", "status"},
	)

	// check-transaction API outcomes
	CheckRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cakewatch_check_requests_total",
			Help: "Total number of transaction check requests",
		},
		[]string{"result"}, // result: found, not_found, bad_request
	)

	// current ledger occupancy
	LedgerSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cakewatch_ledger_size",
			Help: "Number of transactions currently retained in the ledger",
		},
	)

	// full mail check cycle duration (seconds)
	MailCheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cakewatch_mail_check_duration_seconds",
			Help:    "Duration of one mail check cycle in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
	)

	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cakewatch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// RecordEmailProcessed increments the pipeline counter.
func RecordEmailProcessed(status string) {
	EmailsProcessed.WithLabelValues(status).Inc()
}

// RecordNotification increments the alert counter for one channel.
func RecordNotification(channel, status string) {
	NotificationsSent.WithLabelValues(channel, status).Inc()
}

// RecordCheckRequest increments the check API counter.
func RecordCheckRequest(result string) {
	CheckRequests.WithLabelValues(result).Inc()
}

// SetLedgerSize records the current ledger length.
func SetLedgerSize(n int) {
	LedgerSize.Set(float64(n))
}

// ObserveMailCheck records the duration of one mail check cycle.
func ObserveMailCheck(d time.Duration) {
	MailCheckDuration.Observe(d.Seconds())
}

// RecordHTTPRequestDuration records one HTTP request.
func RecordHTTPRequestDuration(method, path, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dabwish_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dabwish_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dabwish_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Event bus metrics
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dabwish_events_published_total",
			Help: "Events published to Kafka",
		},
		[]string{"topic", "status"}, // status: success|error
	)

	EventsConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dabwish_events_consumed_total",
			Help: "Events read from Kafka",
		},
		[]string{"topic", "status"}, // status: success|decode_error|handler_error
	)

	ConsumerLag = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dabwish_consumer_lag_messages",
			Help: "Messages behind the partition head as of the last fetch",
		},
		[]string{"topic"},
	)

	CommitFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dabwish_consumer_commit_failures_total",
			Help: "Offset commits that failed; the messages will be redelivered",
		},
		[]string{"topic"},
	)

	// Verification metrics
	VerificationCodesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dabwish_verification_codes_issued_total",
			Help: "Telegram verification codes issued",
		},
	)

	VerificationConfirmations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dabwish_verification_confirmations_total",
			Help: "Verification confirmation attempts by outcome",
		},
		[]string{"result"}, // result: success|invalid|expired|error
	)

	VerificationCodesPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dabwish_verification_codes_purged_total",
			Help: "Expired verification codes removed by cleanup",
		},
	)

	PendingVerifications = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dabwish_pending_verifications",
			Help: "Verification codes waiting for the user to open a chat",
		},
	)

	PendingVerificationsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dabwish_pending_verifications_expired_total",
			Help: "Pending verification entries dropped after their TTL",
		},
	)

	// Telegram metrics
	TelegramMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dabwish_telegram_messages_total",
			Help: "Messages sent through the Telegram bot",
		},
		[]string{"kind", "status"}, // kind: verification|welcome|wish_notification
	)

	// Search metrics
	SearchSyncFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dabwish_search_sync_failures_total",
			Help: "Best-effort search index operations that failed",
		},
		[]string{"operation"}, // operation: upsert|delete|reindex
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dabwish_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"method", "route", "code"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dabwish_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

var initOnce sync.Once

// Init registers all metrics with Prometheus. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			WorkerExecutions,
			WorkerDuration,
			WorkerLastRun,
			EventsPublished,
			EventsConsumed,
			ConsumerLag,
			CommitFailures,
			VerificationCodesIssued,
			VerificationConfirmations,
			VerificationCodesPurged,
			PendingVerifications,
			PendingVerificationsExpired,
			TelegramMessages,
			SearchSyncFailures,
			HTTPRequests,
			HTTPDuration,
		)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	WorkerExecutions.WithLabelValues(worker, status(err)).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordPublish records one publish attempt
func RecordPublish(topic string, err error) {
	EventsPublished.WithLabelValues(topic, status(err)).Inc()
}

// RecordTelegramSend records one outbound bot message
func RecordTelegramSend(kind string, err error) {
	TelegramMessages.WithLabelValues(kind, status(err)).Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		handlerTotal,
		handlerDuration,
		messagesSentTotal,
		rateLimitedTotal,
		httpRetriesTotal,
	)
}

var (
	handlerTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamegate_handler_total",
			Help: "Handled updates by handler and outcome.",
		},
		[]string{"handler", "outcome"}, // outcome: ok|error|denied
	)

	handlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamegate_handler_duration_seconds",
			Help:    "Handler latency in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"handler"},
	)

	messagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamegate_messages_sent_total",
			Help: "Outgoing messages by whether they carried a keyboard.",
		},
		[]string{"keyboard"},
	)

	rateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gamegate_rate_limited_total",
			Help: "Updates dropped by the per-user rate limiter.",
		},
	)

	httpRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamegate_telegram_http_retries_total",
			Help: "Retried Bot API requests by error kind.",
		},
		[]string{"kind"},
	)
)

func ObserveHandler(handler, outcome string, took time.Duration) {
	handlerTotal.WithLabelValues(norm(handler), norm(outcome)).Inc()
	handlerDuration.WithLabelValues(norm(handler)).Observe(took.Seconds())
}

func IncMessageSent(withKeyboard bool) {
	if withKeyboard {
		messagesSentTotal.WithLabelValues("yes").Inc()
		return
	}
	messagesSentTotal.WithLabelValues("no").Inc()
}

func IncRateLimited() {
	rateLimitedTotal.Inc()
}

func IncHTTPRetry(kind string) {
	httpRetriesTotal.WithLabelValues(norm(kind)).Inc()
}

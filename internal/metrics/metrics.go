package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocumentsComposed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentapp_documents_composed_total",
		Help: "Application documents composed, by outcome",
	}, []string{"outcome"})

	ComposeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rentapp_compose_duration_seconds",
		Help:    "Time spent laying out and rendering one application",
		Buckets: prometheus.DefBuckets,
	})

	DocumentPages = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rentapp_document_pages",
		Help:    "Pages per composed application",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
	})

	SignatureFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentapp_signature_fallbacks_total",
		Help: "Signatures that could not be decoded and were replaced by a notice",
	})

	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentapp_webhook_deliveries_total",
		Help: "Webhook posts, by payload kind and outcome",
	}, []string{"kind", "outcome"})

	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rentapp_webhook_duration_seconds",
		Help:    "Webhook round trip latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	BoardQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentapp_board_queries_total",
		Help: "Project board queries, by query and outcome",
	}, []string{"query", "outcome"})

	BoardCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentapp_board_cache_lookups_total",
		Help: "Vacant unit cache lookups, by result",
	}, []string{"result"})

	FilesEncrypted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentapp_files_encrypted_total",
		Help: "Files sealed or rejected before encryption",
	}, []string{"outcome"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentapp_http_requests_total",
		Help: "HTTP requests handled, by route and status",
	}, []string{"route", "status"})
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

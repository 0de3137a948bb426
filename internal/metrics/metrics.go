package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EndpointResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "endpoint_responses_total",
		Help: "The total number of endpoint responses",
	}, []string{"endpoint", "status_code"})

	EndpointDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "endpoint_duration_seconds",
		Help:    "Endpoint latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// Onboarding metrics
	OnboardSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onboard_submissions_total",
		Help: "Total number of onboarding form submissions by mode and outcome",
	}, []string{"mode", "outcome"})

	OnboardInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "onboard_submissions_in_flight",
		Help: "Number of onboarding submissions currently running",
	})

	OnboardDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "onboard_submission_duration_seconds",
		Help:    "Duration of onboarding submissions in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
	}, []string{"mode"})

	// Chain metrics
	Transactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transactions_total",
		Help: "Total number of contract transactions by method and status",
	}, []string{"method", "status"})

	NameResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ens_resolutions_total",
		Help: "Total number of ENS name resolutions by result",
	}, []string{"result"})

	// Mini-app metrics
	MiniAppEmbedded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "miniapp_embedded",
		Help: "1 when the process runs inside a mini-app host, 0 otherwise",
	})
)

const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"

	TxStatusSent     = "sent"
	TxStatusMined    = "mined"
	TxStatusReverted = "reverted"
	TxStatusFailed   = "failed"

	ResolutionResolved = "resolved"
	ResolutionNotFound = "not_found"
	ResolutionError    = "error"
)

// Package metrics registers the engine's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the onboarding engine's Prometheus instruments. main
// constructs one against the default registerer; tests pass a fresh
// registry so suites don't collide.
type Metrics struct {
	SessionsStarted        prometheus.Counter
	SessionsCompleted      prometheus.Counter
	SessionsFailed         prometheus.Counter
	SessionsRejected       prometheus.Counter
	SessionsEnded          prometheus.Counter
	VerificationsScheduled prometheus.Counter
	RiskScores             prometheus.Histogram
	QueueDepth             *prometheus.GaugeVec
}

// New creates and registers all metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_sessions_started_total",
			Help: "Total number of onboarding sessions started",
		}),
		SessionsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_sessions_completed_total",
			Help: "Total number of sessions that reached completed",
		}),
		SessionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_sessions_failed_total",
			Help: "Total number of sessions that failed on the attempt ceiling",
		}),
		SessionsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_sessions_rejected_total",
			Help: "Total number of sessions rejected by manual verifiers",
		}),
		SessionsEnded: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_sessions_ended_total",
			Help: "Total number of sessions closed at the caller's request",
		}),
		VerificationsScheduled: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_verifications_scheduled_total",
			Help: "Total number of verification requests enqueued",
		}),
		RiskScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboarding_risk_score",
			Help:    "Distribution of computed risk scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		QueueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "onboarding_verification_queue_depth",
			Help: "Verification requests waiting, by priority tier",
		}, []string{"priority"}),
	}
}

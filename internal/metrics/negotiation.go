// Package metrics provides Prometheus metrics for stream negotiation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tier attempt results.
const (
	TierLive           = "live"
	TierNotLive        = "not_live"
	TierZeroSize       = "zero_size"
	TierOverConstraint = "over_constrained"
	TierApplyError     = "apply_error"
	TierKnownFailed    = "known_failed"
)

var (
	negotiationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camtune",
		Subsystem: "negotiation",
		Name:      "total",
		Help:      "Completed negotiations by outcome",
	}, []string{"facing", "outcome"})

	negotiationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "camtune",
		Subsystem: "negotiation",
		Name:      "duration_seconds",
		Help:      "Time from base acquisition to terminal state",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40},
	}, []string{"facing"})

	winningTiers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camtune",
		Subsystem: "negotiation",
		Name:      "winning_tier_total",
		Help:      "Tiers that produced a verified stream",
	}, []string{"facing", "tier"})

	tierAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camtune",
		Subsystem: "negotiation",
		Name:      "tier_attempts_total",
		Help:      "Tier attempts by tier and result",
	}, []string{"tier", "result"})

	probeVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camtune",
		Subsystem: "probe",
		Name:      "verdicts_total",
		Help:      "Liveness probe verdicts",
	}, []string{"verdict"})

	acquireRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "camtune",
		Subsystem: "acquire",
		Name:      "retries_total",
		Help:      "Device acquisitions retried after a transient abort",
	})
)

// ObserveNegotiation records a terminal negotiation outcome. tier is the
// winning tier, empty when no tier produced the stream.
func ObserveNegotiation(facing, outcome, tier string, d time.Duration) {
	negotiationsTotal.WithLabelValues(facing, outcome).Inc()
	negotiationDuration.WithLabelValues(facing).Observe(d.Seconds())
	if tier != "" {
		winningTiers.WithLabelValues(facing, tier).Inc()
	}
}

// ObserveTierAttempt records one tier attempt.
func ObserveTierAttempt(tier, result string) {
	tierAttempts.WithLabelValues(tier, result).Inc()
}

// ObserveProbe records a liveness verdict.
func ObserveProbe(live bool) {
	verdict := "dead"
	if live {
		verdict = "live"
	}
	probeVerdicts.WithLabelValues(verdict).Inc()
}

// ObserveAcquireRetry counts a retried acquisition.
func ObserveAcquireRetry() {
	acquireRetries.Inc()
}

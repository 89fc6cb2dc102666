package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	CheckoutOutcomeSuccess = "success"
	CheckoutOutcomePartial = "partial_failure"
	CheckoutOutcomeFailure = "failure"

	SubmissionResultSuccess = "success"
	SubmissionResultFailure = "failure"
)

// CheckoutMetrics records checkout attempts and the per-restaurant order submissions they fan out to.
type CheckoutMetrics struct {
	attempts    *prometheus.CounterVec
	submissions *prometheus.CounterVec
	duration    prometheus.Histogram
	groups      prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by aggregate outcome.",
	}, []string{"outcome"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submissions_total",
		Help: "Per-restaurant order submissions by result.",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_submission_duration_seconds",
		Help:    "Duration of a single order-intake submission in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	groups := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_order_groups",
		Help:    "Number of restaurant order groups produced per checkout.",
		Buckets: []float64{1, 2, 3, 4, 6, 8},
	})
	reg.MustRegister(attempts, submissions, duration, groups)
	return &CheckoutMetrics{
		attempts:    attempts,
		submissions: submissions,
		duration:    duration,
		groups:      groups,
	}
}

// ObserveAttempt records the aggregate outcome and group count of one checkout.
func (c *CheckoutMetrics) ObserveAttempt(outcome string, groupCount int) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(outcome)).Inc()
	c.groups.Observe(float64(groupCount))
}

// ObserveSubmission records one order-intake call.
func (c *CheckoutMetrics) ObserveSubmission(result string, duration time.Duration) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(result)).Inc()
	c.duration.Observe(duration.Seconds())
}

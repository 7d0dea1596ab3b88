// Package metrics defines and registers all custom Prometheus metrics for the
// Natours API. It is the single source of truth for metric names, labels and
// help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "natours"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts credential lifecycle operations.
// Labels:
//   - event: "sign_up", "sign_in", "forgot_password", "reset_password", "update_password"
//   - result: "success" or "failure"
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication operations, by event and result.",
	},
	[]string{"event", "result"},
)

// AccessDeniedTotal counts requests rejected by the access control middleware.
// Label:
//   - reason: "unauthenticated" or "forbidden"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of requests rejected by access control.",
	},
	[]string{"reason"},
)

// RateLimitedTotal counts requests rejected by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected with 429.",
	},
)

// ── Resource metrics ──────────────────────────────────────────────────────────

// ListResultSize observes how many documents list queries return.
// Label:
//   - resource: "tours", "reviews", "bookings", "users"
var ListResultSize = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "list_result_size",
		Help:      "Number of documents returned per list request.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
	},
	[]string{"resource"},
)

// BookingsCreatedTotal counts new bookings.
// Label:
//   - source: "admin" or "checkout"
var BookingsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created, by source.",
	},
	[]string{"source"},
)

// ── Rating recalculation metrics ──────────────────────────────────────────────

// RatingRecalculationsTotal counts rating aggregation runs.
// Label:
//   - result: "success" or "error"
var RatingRecalculationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rating_recalculations_total",
		Help:      "Total number of tour rating recalculations, by result.",
	},
	[]string{"result"},
)

// RatingQueueDepth tracks pending recalculations in each worker channel.
// Label:
//   - worker_id: numeric worker index
var RatingQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rating_queue_depth",
		Help:      "Current number of recalculations pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// RatingRecalculationDuration measures one aggregation from dequeue to update.
var RatingRecalculationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rating_recalculation_duration_seconds",
		Help:      "Duration of a tour rating recalculation.",
		Buckets:   prometheus.DefBuckets,
	},
)

// Package metrics defines and registers the custom Prometheus metrics for the
// storefront. It is the single source of truth for metric names, labels and
// help strings; all metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Remote API metrics ────────────────────────────────────────────────────────

// APIRequestsTotal counts calls to the remote delivery API.
// Labels:
//   - op: logical operation (e.g. "get_cart", "login")
//   - outcome: "ok", "api_error" or "network_error"
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of calls to the remote delivery API.",
	},
	[]string{"op", "outcome"},
)

// APIRequestDuration measures remote API latency per operation.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of calls to the remote delivery API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)

// ── Session and cart metrics ──────────────────────────────────────────────────

// SessionTransitionsTotal counts session state changes.
// Label:
//   - event: "login", "register", "restore", "logout", "discard", "refresh"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state changes, by event.",
	},
	[]string{"event"},
)

// CartMutationsTotal counts cart mutations.
// Labels:
//   - op: "add", "update", "remove", "clear"
//   - result: "ok", "auth_required", "invalid", "error"
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of cart mutations, by operation and result.",
	},
	[]string{"op", "result"},
)

// CartStaleResponsesTotal counts cart fetches discarded because a newer one
// had already been applied.
var CartStaleResponsesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_stale_responses_total",
		Help:      "Total number of out-of-order cart responses discarded.",
	},
)

// ── Tracking metrics ──────────────────────────────────────────────────────────

// TrackingPollsTotal counts poll ticks.
// Labels:
//   - kind: "order" or "active_orders"
//   - result: "ok" or "error"
var TrackingPollsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracking_polls_total",
		Help:      "Total number of tracking polls, by kind and result.",
	},
	[]string{"kind", "result"},
)

// TrackingActivePollers tracks pollers whose handle has not been released.
var TrackingActivePollers = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tracking_active_pollers",
		Help:      "Current number of running tracking pollers.",
	},
	[]string{"kind"},
)

// ObservationsRecordedTotal counts observation recording decisions.
// Label:
//   - result: "recorded", "duplicate" or "error"
var ObservationsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "observations_recorded_total",
		Help:      "Total number of order status observations, by result.",
	},
	[]string{"result"},
)

// OrdersPlacedTotal counts checkout attempts.
// Label:
//   - result: "ok", "invalid", "below_minimum", "error"
var OrdersPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of checkout attempts, by result.",
	},
	[]string{"result"},
)

// Package metrics defines and registers all custom Prometheus metrics for the
// civic reporter API. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics register themselves with the default Prometheus registry at
// package init time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "civicreporter"

// ── Report metrics ────────────────────────────────────────────────────────────

// ReportsCreatedTotal counts newly created reports.
// Label:
//   - category: "pothole", "streetlight", "garbage", "graffiti", "water_leak", "other"
var ReportsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_created_total",
		Help:      "Total number of reports created, by category.",
	},
	[]string{"category"},
)

// ReportStatusChangesTotal counts status transitions applied through updates.
// Label:
//   - status: the status the report moved into (e.g. "resolved")
var ReportStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "report_status_changes_total",
		Help:      "Total number of report status transitions, by target status.",
	},
	[]string{"status"},
)

// VotesCastTotal counts vote casts, including recasts that switch direction.
// Label:
//   - vote_type: "upvote" or "downvote"
var VotesCastTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_cast_total",
		Help:      "Total number of votes cast on reports, by vote type.",
	},
	[]string{"vote_type"},
)

// CommentsAddedTotal counts comments added to reports.
var CommentsAddedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_added_total",
		Help:      "Total number of comments added to reports.",
	},
)

// ── Realtime metrics ──────────────────────────────────────────────────────────

// EventsPublishedTotal counts events fanned out to subscribers.
// Labels:
//   - topic: the topic the event was published on (e.g. "reports")
//   - event: the event type (e.g. "new_report")
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of realtime events published, by topic and event type.",
	},
	[]string{"topic", "event"},
)

// EventsDroppedTotal counts events dropped because a subscriber channel was full.
// Label:
//   - topic: the topic the dropped event belonged to
var EventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of realtime events dropped due to slow subscribers.",
	},
	[]string{"topic"},
)

// SubscribersActive tracks the number of live realtime subscriptions per topic.
// Label:
//   - topic: the subscribed topic
var SubscribersActive = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "subscribers_active",
		Help:      "Current number of active realtime subscriptions, by topic.",
	},
	[]string{"topic"},
)

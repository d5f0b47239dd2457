/*-------------------------------------------------------------------------
 *
 * prometheus.go
 *    Prometheus metrics for the Loanzaar workflow server
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/metrics/prometheus.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	/* Request metrics */
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loanzaar_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loanzaar_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	/* Workflow metrics */
	proposalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loanzaar_workflow_proposals_total",
			Help: "Total number of agent status proposals",
		},
		[]string{"to_status", "outcome"},
	)

	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loanzaar_workflow_resolutions_total",
			Help: "Total number of admin proposal resolutions",
		},
		[]string{"decision", "outcome"},
	)

	remarksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loanzaar_workflow_remarks_total",
			Help: "Total number of remarks added",
		},
	)

	feedSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loanzaar_feed_subscribers",
			Help: "Number of active change-feed subscriptions",
		},
	)

	feedNotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loanzaar_feed_notifications_total",
			Help: "Total number of change-feed notifications delivered",
		},
	)
)

/* RecordHTTPRequest records an HTTP request metric */
func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

/* RecordProposal records a proposal attempt */
func RecordProposal(toStatus string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	proposalsTotal.WithLabelValues(toStatus, outcome).Inc()
}

/* RecordResolution records a proposal resolution attempt */
func RecordResolution(decision string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	resolutionsTotal.WithLabelValues(decision, outcome).Inc()
}

/* RecordRemark records a remark insertion */
func RecordRemark() {
	remarksTotal.Inc()
}

/* SetFeedSubscribers sets the active subscription gauge */
func SetFeedSubscribers(n int) {
	feedSubscribers.Set(float64(n))
}

/* RecordFeedNotification records a delivered change-feed notification */
func RecordFeedNotification() {
	feedNotificationsTotal.Inc()
}

/* Handler returns the Prometheus metrics HTTP handler */
func Handler() http.Handler {
	return promhttp.Handler()
}

package service

import "github.com/prometheus/client_golang/prometheus"

var (
	orderTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "order_status_transitions_total", Help: "Count of order status transitions"},
		[]string{"to"},
	)
	moderationActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "review_moderation_actions_total", Help: "Count of review moderation actions"},
		[]string{"action"},
	)
	feedRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feed_requests_total", Help: "Count of feed aggregations"},
		[]string{"filtered"},
	)
)

func init() {
	prometheus.MustRegister(orderTransitionsTotal, moderationActionsTotal, feedRequestsTotal)
}

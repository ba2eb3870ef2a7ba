// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes Prometheus collectors for the HTTP surface and the
// upstream E-utilities calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pubmed_mcp_http_requests_total",
		Help: "Total number of inbound HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pubmed_mcp_http_request_duration_seconds",
		Help:    "Duration of inbound HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pubmed_mcp_upstream_requests_total",
		Help: "Total number of E-utilities calls by stage and result",
	}, []string{"stage", "result"})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pubmed_mcp_upstream_request_duration_seconds",
		Help:    "Duration of E-utilities calls in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	SearchOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pubmed_mcp_search_outcomes_total",
		Help: "Total number of searches by outcome kind",
	}, []string{"kind"})
)

// ObserveUpstream records one E-utilities call.
func ObserveUpstream(stage, result string, took time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(stage, result).Inc()
	UpstreamRequestDuration.WithLabelValues(stage).Observe(took.Seconds())
}

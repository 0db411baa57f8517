// Package metrics defines the Prometheus collectors for the session server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PairsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_token_pairs_issued_total",
		Help: "Number of access/refresh token pairs issued.",
	})

	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_token_verifications_total",
		Help: "Number of token verifications by outcome.",
	}, []string{"outcome"})

	Rotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_refresh_rotations_total",
		Help: "Number of refresh token rotations by outcome.",
	}, []string{"outcome"})

	Revocations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "session_refresh_revocations_total",
		Help: "Number of refresh tokens revoked via logout.",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeNotFound     = "not_found"
	OutcomeStoreError   = "store_error"
)

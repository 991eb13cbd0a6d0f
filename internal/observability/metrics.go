// Package observability exposes Prometheus metrics for domain events.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BlogSharesTotal counts share-button increments.
	BlogSharesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jotly_blog_shares_total",
		Help: "Total number of blog share increments",
	})

	// AuthFailuresTotal counts authentication failures by stage.
	AuthFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jotly_auth_failures_total",
		Help: "Total number of authentication failures by stage",
	}, []string{"stage"})

	// TokenRotationsTotal counts successful refresh-token rotations.
	TokenRotationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jotly_token_rotations_total",
		Help: "Total number of successful refresh token rotations",
	})
)

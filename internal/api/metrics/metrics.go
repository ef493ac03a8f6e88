// Package metrics defines the custom Prometheus metrics of the auth service.
// HTTP request metrics come from echoprometheus; these cover the auth flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// Outcome label values for AuthRequestsTotal.
const (
	OutcomeSuccess   = "success"
	OutcomeChallenge = "challenge"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// AuthRequestsTotal counts auth operations.
// Labels:
//   - operation: signup, login, verify_2fa, logout, verify_token
//   - outcome: success, challenge, rejected, error
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of auth operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// PasswordHashDuration measures argon2id work on the hashing pool.
// Label:
//   - op: hash or verify
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hashing and verification.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
	},
	[]string{"op"},
)

var TokensRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_revoked_total",
		Help:      "Total number of session tokens banned at logout.",
	},
)

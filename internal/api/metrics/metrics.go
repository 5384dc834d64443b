// Package metrics defines and registers all custom Prometheus metrics for
// the authentication service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default registry at import time via promauto;
// the /metrics route exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "facegate"

// AuthAttemptsTotal counts authentication attempts.
// Labels:
//   - method: "password", "face", or "external"
//   - outcome: "success" or a short failure reason
//     (e.g. "wrong_password", "no_match", "invalid_token", "throttled")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts by method and outcome.",
	},
	[]string{"method", "outcome"},
)

// RegistrationsTotal counts standard registrations.
// Label:
//   - outcome: "success", "username_taken", "password_mismatch",
//     "bad_image", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts by outcome.",
	},
	[]string{"outcome"},
)

// FaceAuthDuration measures a face login end-to-end: probe extraction plus
// the gallery scan.
// Label:
//   - outcome: "success", "no_match", or "error"
var FaceAuthDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "face_auth_duration_seconds",
		Help:      "Duration of face authentication from request to resolution.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"outcome"},
)

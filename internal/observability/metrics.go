// Package observability provides metrics and tracing for the application.
package observability

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neighborly_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// FeedCompositions counts feed composition requests by requested kind.
	FeedCompositions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neighborly_feed_compositions_total",
		Help: "Total number of feed composition requests",
	}, []string{"kind"})

	// VotesCast counts poll votes by outcome (moved, new, rejected).
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neighborly_poll_votes_total",
		Help: "Total number of poll vote attempts by outcome",
	}, []string{"outcome"})

	// PushMessages counts push notification messages by outcome
	// (delivered, skipped, failed).
	PushMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neighborly_push_messages_total",
		Help: "Total number of push notification messages by outcome",
	}, []string{"outcome"})

	// PushChunkFailures counts gateway chunk submissions that failed outright.
	PushChunkFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neighborly_push_chunk_failures_total",
		Help: "Total number of push gateway chunks that failed to submit",
	})

	// PushDispatches counts completed fan-out dispatches.
	PushDispatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neighborly_push_dispatches_total",
		Help: "Total number of completed notification fan-out dispatches",
	})
)

// NewHTTPMetrics creates the Prometheus middleware for the Fiber app and
// registers the /metrics endpoint on it.
func NewHTTPMetrics(app *fiber.App, serviceName string) *fiberprometheus.FiberPrometheus {
	prom := fiberprometheus.New(serviceName)
	prom.RegisterAt(app, "/metrics")
	return prom
}

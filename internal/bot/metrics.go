// Package bot – Prometheus instrumentation for event handling.
//
// Label cardinality is kept bounded: "event" is one of a fixed set of event
// kinds and "outcome" is ok|ignored|error. All collectors are safe for
// concurrent use.
package bot

import "github.com/prometheus/client_golang/prometheus"

var (
	// eventsTotal counts inbound chat events by kind and handling outcome.
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebot_events_total",
			Help: "Total number of chat events handled by the reactor.",
		},
		[]string{"event", "outcome"},
	)

	// moviesTracked counts newly tracked movies (first-time references).
	moviesTracked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "moviebot_movies_tracked_total",
			Help: "Total number of movies added to the list.",
		},
	)

	// suggestionsServed counts suggestion requests by result shape.
	suggestionsServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebot_suggestions_total",
			Help: "Total number of suggestion requests answered.",
		},
		[]string{"result"}, // candidates | empty
	)
)

func init() {
	prometheus.MustRegister(eventsTotal, moviesTracked, suggestionsServed)
}

const (
	outcomeOK      = "ok"
	outcomeIgnored = "ignored"
	outcomeError   = "error"
)

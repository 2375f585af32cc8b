// Package metrics exposes Prometheus instrumentation for the chat hub.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vovakirdan/chanserv/internal/core"
)

var (
	// commandsTotal counts applied commands.
	// Labels: command (NICK, CREATE, ...), result (okay, names, or an error code)
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chanserv",
		Name:      "commands_total",
		Help:      "Commands applied by the hub",
	}, []string{"command", "result"})

	// deliveriesTotal counts events handed to client queues, dropped ones included.
	deliveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chanserv",
		Name:      "deliveries_total",
		Help:      "Events addressed to connections",
	})

	connectedUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chanserv",
		Name:      "connected_users",
		Help:      "Users currently registered",
	})

	channels = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chanserv",
		Name:      "channels",
		Help:      "Channels currently existing",
	})

	droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chanserv",
		Name:      "dropped_events_total",
		Help:      "Events dropped because a client queue was full",
	})
)

// HubObserver records every hub outcome and refreshes the population gauges.
type HubObserver struct {
	session *core.Session
}

// NewHubObserver creates an observer reading gauges from session.
func NewHubObserver(session *core.Session) *HubObserver {
	return &HubObserver{session: session}
}

// Observe implements core.Observer.
func (o *HubObserver) Observe(_ *core.Client, outcome core.Outcome) {
	b := outcome.Broadcast
	if b.Command != nil {
		commandsTotal.WithLabelValues(b.Command.Keyword(), resultLabel(b)).Inc()
	}
	deliveriesTotal.Add(float64(len(outcome.Deliveries)))

	if o.session != nil {
		stats := o.session.Stats()
		connectedUsers.Set(float64(stats.Users))
		channels.Set(float64(stats.Channels))
	}
}

// RecordDrop counts one dropped event. It matches core.HubOptions.OnDrop.
func RecordDrop(core.ConnID) {
	droppedEvents.Inc()
}

func resultLabel(b core.Broadcast) string {
	if b.IsError() {
		return b.Err.Code()
	}
	return b.Kind.String()
}

// Package metrics defines the Prometheus collectors shared by the protocol
// handler, the notification feed and the canvas engine. A nil *Metrics is
// valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every arttic collector.
type Metrics struct {
	Dials        *prometheus.CounterVec
	Reconnects   prometheus.Counter
	EventsIn     *prometheus.CounterVec
	ActionsOut   *prometheus.CounterVec
	SendsDropped *prometheus.CounterVec
	Notices      *prometheus.CounterVec
	NodeChanges  *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
// It panics if registration fails, like prometheus.MustRegister.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Dials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arttic_channel_dials_total",
				Help: "Dial attempts on the session channel by outcome",
			},
			[]string{"outcome"},
		),
		Reconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "arttic_channel_reconnects_scheduled_total",
				Help: "Reconnect timers scheduled after a close or error",
			},
		),
		EventsIn: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arttic_events_received_total",
				Help: "Server events received by type",
			},
			[]string{"type"},
		),
		ActionsOut: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arttic_actions_sent_total",
				Help: "Actions written to the session channel",
			},
			[]string{"action"},
		),
		SendsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arttic_actions_dropped_total",
				Help: "Actions dropped because the channel was not open",
			},
			[]string{"action"},
		),
		Notices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arttic_notices_total",
				Help: "Notification feed operations",
			},
			[]string{"op", "kind"},
		),
		NodeChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arttic_canvas_nodes_total",
				Help: "Canvas node lifecycle operations",
			},
			[]string{"op", "node_type"},
		),
	}
	reg.MustRegister(m.Dials, m.Reconnects, m.EventsIn, m.ActionsOut, m.SendsDropped, m.Notices, m.NodeChanges)
	return m
}

func (m *Metrics) Dial(outcome string) {
	if m != nil {
		m.Dials.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ReconnectScheduled() {
	if m != nil {
		m.Reconnects.Inc()
	}
}

func (m *Metrics) EventReceived(eventType string) {
	if m != nil {
		m.EventsIn.WithLabelValues(eventType).Inc()
	}
}

func (m *Metrics) ActionSent(action string) {
	if m != nil {
		m.ActionsOut.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) ActionDropped(action string) {
	if m != nil {
		m.SendsDropped.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) Notice(op, kind string) {
	if m != nil {
		m.Notices.WithLabelValues(op, kind).Inc()
	}
}

func (m *Metrics) Node(op, nodeType string) {
	if m != nil {
		m.NodeChanges.WithLabelValues(op, nodeType).Inc()
	}
}

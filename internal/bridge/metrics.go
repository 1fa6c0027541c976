package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bridge's Prometheus instrumentation.
type Metrics struct {
	// MessagesReceived counts every inbound MQTT message handed to the
	// dispatcher.
	MessagesReceived prometheus.Counter

	// MessagesDropped counts messages dropped per pipeline stage
	// ("match", "decode-payload", "coerce-value", ...).
	MessagesDropped *prometheus.CounterVec

	// PointsWritten counts points handed to each output, labelled by
	// the output's URL.
	PointsWritten *prometheus.CounterVec
}

// NewMetrics creates the bridge metrics, unregistered.
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mqttflux",
			Subsystem: "bridge",
			Name:      "messages_received_total",
			Help:      "Total number of MQTT messages received",
		}),
		MessagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mqttflux",
			Subsystem: "bridge",
			Name:      "messages_dropped_total",
			Help:      "Total number of messages dropped, by pipeline stage",
		}, []string{"stage"}),
		PointsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mqttflux",
			Subsystem: "bridge",
			Name:      "points_written_total",
			Help:      "Total number of points handed to each output",
		}, []string{"output"}),
	}
}

// Register registers all bridge metrics with the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.MessagesReceived,
		m.MessagesDropped,
		m.PointsWritten,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

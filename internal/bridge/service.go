package bridge

import (
	"errors"
	"fmt"
	"time"

	"github.com/mqttflux/mqttflux/internal/infrastructure/logging"
	"github.com/mqttflux/mqttflux/internal/infrastructure/mqtt"
	"github.com/mqttflux/mqttflux/internal/mapping"
)

// Subscriber is the slice of the MQTT client the bridge needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// PointWriter is one output destination. Writes are expected to be
// non-blocking; delivery failures are the writer's own concern.
type PointWriter interface {
	WritePoint(tags map[string]string, fields map[string]interface{}, timestamp time.Time)
	URL() string
}

// Deps holds the dependencies required by the bridge service.
type Deps struct {
	Rules      []*mapping.Rule
	Subscriber Subscriber
	Writers    []PointWriter
	QoS        byte
	Logger     *logging.Logger
	Metrics    *Metrics
}

// Service wires the MQTT subscriber to the mapping engine and the
// output writers. It subscribes once per distinct rule filter; each
// inbound message is dispatched through the rule table and, on success,
// the resulting point fans out to every writer.
//
// Per-message errors are logged and counted, never fatal: a dropped
// message leaves the subscription loop untouched.
//
// Thread Safety: handleMessage runs on paho's per-message goroutines.
// The dispatcher is lock-free and pure, writers are concurrency-safe,
// so no synchronisation is needed here.
type Service struct {
	dispatcher *mapping.Dispatcher
	subscriber Subscriber
	writers    []PointWriter
	qos        byte
	logger     *logging.Logger
	metrics    *Metrics
}

// New creates the bridge service. The rule list must already be
// compiled; Metrics may be nil, in which case unregistered counters are
// used (handy in tests).
func New(deps Deps) *Service {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Service{
		dispatcher: mapping.NewDispatcher(deps.Rules),
		subscriber: deps.Subscriber,
		writers:    deps.Writers,
		qos:        deps.QoS,
		logger:     deps.Logger.Component("bridge"),
		metrics:    metrics,
	}
}

// Start subscribes to every distinct rule filter. Called once after the
// MQTT client connects; re-subscription on reconnect is handled by the
// client itself.
//
// Returns:
//   - error: If any subscription fails (startup is aborted)
func (s *Service) Start() error {
	filters := s.dispatcher.Filters()
	for _, filter := range filters {
		if err := s.subscriber.Subscribe(filter, s.qos, s.handleMessage); err != nil {
			return fmt.Errorf("subscribing to %q: %w", filter, err)
		}
		s.logger.Info("subscribed", "filter", filter)
	}
	s.logger.Info("bridge started",
		"rules", s.dispatcher.RuleCount(),
		"filters", len(filters),
		"outputs", len(s.writers),
	)
	return nil
}

// handleMessage maps one inbound message and fans the point out to all
// outputs. It always returns nil: every failure is handled here, at the
// message boundary.
func (s *Service) handleMessage(topic string, payload []byte) error {
	s.metrics.MessagesReceived.Inc()

	point, err := s.dispatcher.Dispatch(topic, payload)
	if err != nil {
		s.dropMessage(err)
		return nil
	}

	tags := make(map[string]string, len(point.Tags))
	for _, tag := range point.Tags {
		tags[tag.Name] = tag.Value
	}
	fields := map[string]interface{}{point.Field: point.Value.Field()}

	for _, writer := range s.writers {
		writer.WritePoint(tags, fields, point.Time)
		s.metrics.PointsWritten.WithLabelValues(writer.URL()).Inc()
	}

	return nil
}

// dropMessage records and logs one dropped message with enough context
// to diagnose it: topic, matched rule index and failing stage.
func (s *Service) dropMessage(err error) {
	var dispatchErr *mapping.DispatchError
	if !errors.As(err, &dispatchErr) {
		// Dispatch only returns *DispatchError; anything else is a bug.
		s.metrics.MessagesDropped.WithLabelValues("unknown").Inc()
		s.logger.Warn("message dropped", "error", err)
		return
	}

	s.metrics.MessagesDropped.WithLabelValues(string(dispatchErr.Stage)).Inc()

	// Unmatched topics are routine (retained chatter, other consumers'
	// traffic); keep them off the warn level.
	if errors.Is(err, mapping.ErrNoMatchingRule) {
		s.logger.Debug("unmatched topic", "topic", dispatchErr.Topic)
		return
	}

	s.logger.Warn("message dropped",
		"topic", dispatchErr.Topic,
		"rule", dispatchErr.Rule,
		"stage", dispatchErr.Stage,
		"error", dispatchErr.Err,
	)
}

// Package logging provides structured logging for mqttflux.
//
// It wraps log/slog with configuration-driven handler selection
// (JSON or text), level filtering and default service/version fields.
// Components derive scoped loggers with Component:
//
//	bridgeLog := logger.Component("bridge")
//	bridgeLog.Warn("message dropped", "topic", topic, "stage", stage)
package logging

// Package influxdb provides time-series storage connectivity for mqttflux.
//
// Each configured output gets its own Client wrapping the InfluxDB v2
// API: token auth, a ping on connect, a non-blocking batched write API
// and asynchronous error reporting. Mapped data points are written
// under the output's measurement with millisecond precision, at the
// timestamp extracted from the message (or arrival time when the rule
// extracts none).
//
// Outputs are deliberately independent: the bridge fans every point out
// to all of them, and a failing destination only surfaces through its
// own error callback.
package influxdb

// Package bridge orchestrates the mqttflux pipeline.
//
// It owns no mapping logic of its own: the Service subscribes to the
// filters the compiled rules declare, hands every inbound message to
// the mapping dispatcher, and fans successful points out to all
// configured outputs. Per-message failures are counted, logged with
// topic/rule/stage context, and dropped; nothing a single message does
// can stop the loop.
package bridge

// Package mapping implements the rule engine that turns inbound MQTT
// messages into timestamped, tagged data points.
//
// The engine is built from four pure pieces plus a dispatcher:
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                           Dispatcher                             │
//	│                                                                  │
//	│  topic ──▶ TopicPattern ──▶ captures                             │
//	│                  │              │                                │
//	│                  │              ▼                                │
//	│                  │          Template ──▶ field name, tag values  │
//	│                  │                                               │
//	│  payload ──▶ PayloadSpec ──▶ value node, timestamp               │
//	│                  │                                               │
//	│                  ▼                                               │
//	│             Coercion ──▶ typed Value                             │
//	└──────────────────────────────────────────────────────────────────┘
//
// Rules are compiled once at startup from configuration and are immutable
// afterwards; every configuration mistake (bad wildcard placement, bad
// reference index, bad path expression) is caught at compile time and is
// fatal. At dispatch time the first rule whose pattern matches the inbound
// topic wins, and any failure affects only that single message.
//
// # Thread Safety
//
// Compiled patterns, templates, rules and the Dispatcher itself carry no
// mutable state and perform no I/O. Any number of goroutines may call
// Dispatch concurrently without synchronisation.
package mapping

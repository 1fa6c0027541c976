// Package mqtt provides the MQTT client connectivity for mqttflux.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Topic subscriptions with wildcard support, restored on reconnect
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// The bridge is a pure consumer: the only thing it ever publishes is
// its own retained status on mqttflux/status. Subscription filters come
// from the configured mapping rules; message handlers are invoked on
// paho's per-message goroutines with panic recovery.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe("sensors/+/temperature", 1,
//	    func(topic string, payload []byte) error {
//	        return handle(topic, payload)
//	    })
package mqtt

// Package config loads and validates mqttflux configuration.
//
// Configuration comes from a YAML file with three layers of precedence:
// hardcoded defaults, file values, then MQTTFLUX_* environment variable
// overrides. Validation here is structural (ports, required fields);
// the semantics of mapping rules - topic wildcards, $N templates, path
// expressions, value types - are validated by the mapping package when
// the rule set is compiled at startup. Either kind of error refuses
// startup: a process never runs with a bad rule.
//
// Example config.yaml:
//
//	mqtt:
//	  broker:
//	    host: broker.local
//	    port: 1883
//	outputs:
//	  - url: http://influxdb:8086
//	    org: home
//	    bucket: telemetry
//	    measurement: sensors
//	mappings:
//	  - topic: sensors/+/temperature
//	    field_name: temp_$1
//	    value_type: float
//	    tags:
//	      - { name: room, type: text, value: $1 }
package config

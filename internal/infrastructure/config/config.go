package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for mqttflux.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Logging  LoggingConfig   `yaml:"logging"`
	MQTT     MQTTConfig      `yaml:"mqtt"`
	API      APIConfig       `yaml:"api"`
	Outputs  []OutputConfig  `yaml:"outputs"`
	Mappings []MappingConfig `yaml:"mappings"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
// An empty ClientID gets a generated unique suffix at connect time.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains the health/metrics HTTP server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings (seconds).
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// OutputConfig describes one InfluxDB destination. Every mapped point
// is written to every configured output independently.
type OutputConfig struct {
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	Measurement   string `yaml:"measurement"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// MappingConfig describes one topic-to-data-point rule, as written in
// config.yaml. Rule semantics (wildcards, templates, paths, types) are
// validated by the mapping package at startup.
type MappingConfig struct {
	// Topic is the MQTT topic pattern, with '+'/'#' wildcards.
	Topic string `yaml:"topic"`

	// Payload, when set, declares a structured payload and how to
	// extract the value (and optionally a timestamp) from it.
	// When unset the raw payload text is the value.
	Payload *PayloadConfig `yaml:"payload,omitempty"`

	// FieldName is the output field name; $N references the N-th
	// single-level wildcard capture of Topic.
	FieldName string `yaml:"field_name"`

	// ValueType is the declared type of the value:
	// boolean, float, signed-integer, unsigned-integer or text.
	ValueType string `yaml:"value_type"`

	// Tags are written with every point, in configured order.
	Tags []TagConfig `yaml:"tags,omitempty"`
}

// PayloadConfig describes structured payload extraction.
type PayloadConfig struct {
	// Type of the payload document. Only "json" is supported.
	Type string `yaml:"type"`

	// ValuePath is the JSONPath of the value node.
	ValuePath string `yaml:"value_path"`

	// TimestampPath, when set, is the JSONPath of a millisecond epoch
	// timestamp. A configured path that matches nothing fails the
	// message.
	TimestampPath string `yaml:"timestamp_path,omitempty"`
}

// TagConfig describes one tag. Text tags may use $N references;
// other types are fixed literals.
type TagConfig struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MQTTFLUX_SECTION_KEY
// For example: MQTTFLUX_MQTT_HOST, MQTTFLUX_OUTPUT_TOKEN
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    9090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: MQTTFLUX_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("MQTTFLUX_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MQTTFLUX_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MQTTFLUX_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("MQTTFLUX_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// Outputs - one token shared by every output that does not set its
	// own, so tokens can stay out of config files
	if v := os.Getenv("MQTTFLUX_OUTPUT_TOKEN"); v != "" {
		for i := range cfg.Outputs {
			if cfg.Outputs[i].Token == "" {
				cfg.Outputs[i].Token = v
			}
		}
	}
}

// Validate checks the configuration for structural errors.
//
// Rule semantics (patterns, templates, paths) are validated separately
// when the mapping package compiles the rule set.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// MQTT validation
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Output validation
	if len(c.Outputs) == 0 {
		errs = append(errs, "at least one output is required")
	}
	for i, out := range c.Outputs {
		if out.URL == "" {
			errs = append(errs, fmt.Sprintf("outputs[%d].url is required", i))
		}
		if out.Bucket == "" {
			errs = append(errs, fmt.Sprintf("outputs[%d].bucket is required", i))
		}
		if out.Measurement == "" {
			errs = append(errs, fmt.Sprintf("outputs[%d].measurement is required", i))
		}
	}

	// Mapping validation (structural only)
	if len(c.Mappings) == 0 {
		errs = append(errs, "at least one mapping is required")
	}
	for i, m := range c.Mappings {
		if m.Topic == "" {
			errs = append(errs, fmt.Sprintf("mappings[%d].topic is required", i))
		}
		if m.FieldName == "" {
			errs = append(errs, fmt.Sprintf("mappings[%d].field_name is required", i))
		}
		if m.ValueType == "" {
			errs = append(errs, fmt.Sprintf("mappings[%d].value_type is required", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (a APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(a.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (a APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(a.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (a APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(a.Timeouts.Idle) * time.Second
}

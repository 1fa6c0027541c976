package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
logging:
  level: "debug"
mqtt:
  broker:
    host: "broker.local"
    port: 8883
    tls: true
    client_id: "test-client"
  qos: 2
outputs:
  - url: "http://influx.local:8086"
    token: "file-token"
    org: "home"
    bucket: "telemetry"
    measurement: "mqtt"
mappings:
  - topic: "sensors/+/temp"
    field_name: "temp_$1"
    value_type: "float"
    tags:
      - name: "room"
        type: "text"
        value: "$1"
  - topic: "meters/+/power"
    field_name: "power_$1"
    value_type: "unsigned-integer"
    payload:
      type: "json"
      value_path: "$.watts"
      timestamp_path: "$.ts"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}

	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if !cfg.MQTT.Broker.TLS {
		t.Error("MQTT.Broker.TLS = false, want true")
	}
	if cfg.MQTT.QoS != 2 {
		t.Errorf("MQTT.QoS = %d, want 2", cfg.MQTT.QoS)
	}

	if len(cfg.Outputs) != 1 {
		t.Fatalf("len(Outputs) = %d, want 1", len(cfg.Outputs))
	}
	if cfg.Outputs[0].Measurement != "mqtt" {
		t.Errorf("Outputs[0].Measurement = %q, want %q", cfg.Outputs[0].Measurement, "mqtt")
	}

	if len(cfg.Mappings) != 2 {
		t.Fatalf("len(Mappings) = %d, want 2", len(cfg.Mappings))
	}
	if cfg.Mappings[0].Payload != nil {
		t.Error("Mappings[0].Payload should be nil for a raw rule")
	}
	if cfg.Mappings[1].Payload == nil {
		t.Fatal("Mappings[1].Payload = nil, want json payload spec")
	}
	if cfg.Mappings[1].Payload.TimestampPath != "$.ts" {
		t.Errorf("TimestampPath = %q, want %q", cfg.Mappings[1].Payload.TimestampPath, "$.ts")
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
outputs:
  - url: "http://localhost:8086"
    bucket: "telemetry"
    measurement: "mqtt"
mappings:
  - topic: "sensors/#"
    field_name: "value"
    value_type: "text"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("default MQTT.Broker.Host = %q, want localhost", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("default MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("default MQTT.QoS = %d, want 1", cfg.MQTT.QoS)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if !cfg.API.Enabled || cfg.API.Port != 9090 {
		t.Errorf("default API = %+v, want enabled on port 9090", cfg.API)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
mqtt:
  broker:
    host: "localhost"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected validation error for missing outputs and mappings, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	validOutput := OutputConfig{URL: "http://localhost:8086", Bucket: "b", Measurement: "m"}
	validMapping := MappingConfig{Topic: "a/+", FieldName: "f_$1", ValueType: "float"}

	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Outputs = []OutputConfig{validOutput}
		cfg.Mappings = []MappingConfig{validMapping}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"missing broker host", func(c *Config) { c.MQTT.Broker.Host = "" }, true},
		{"invalid broker port", func(c *Config) { c.MQTT.Broker.Port = 0 }, true},
		{"invalid qos", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"invalid api port", func(c *Config) { c.API.Port = 70000 }, true},
		{"api disabled skips port check", func(c *Config) { c.API.Enabled = false; c.API.Port = 0 }, false},
		{"no outputs", func(c *Config) { c.Outputs = nil }, true},
		{"output missing url", func(c *Config) { c.Outputs[0].URL = "" }, true},
		{"output missing bucket", func(c *Config) { c.Outputs[0].Bucket = "" }, true},
		{"output missing measurement", func(c *Config) { c.Outputs[0].Measurement = "" }, true},
		{"no mappings", func(c *Config) { c.Mappings = nil }, true},
		{"mapping missing topic", func(c *Config) { c.Mappings[0].Topic = "" }, true},
		{"mapping missing field name", func(c *Config) { c.Mappings[0].FieldName = "" }, true},
		{"mapping missing value type", func(c *Config) { c.Mappings[0].ValueType = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAPIConfig_GetTimeouts(t *testing.T) {
	cfg := APIConfig{
		Timeouts: APITimeoutConfig{
			Read:  30,
			Write: 45,
			Idle:  60,
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()
	cfg.Outputs = []OutputConfig{
		{URL: "http://a:8086", Bucket: "b", Measurement: "m"},
		{URL: "http://b:8086", Bucket: "b", Measurement: "m", Token: "explicit"},
	}

	t.Setenv("MQTTFLUX_MQTT_HOST", "mqtt.example.com")
	t.Setenv("MQTTFLUX_MQTT_USERNAME", "testuser")
	t.Setenv("MQTTFLUX_MQTT_PASSWORD", "testpass")
	t.Setenv("MQTTFLUX_API_HOST", "192.168.1.1")
	t.Setenv("MQTTFLUX_OUTPUT_TOKEN", "env-token")

	applyEnvOverrides(cfg)

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}

	// The env token fills only outputs without an explicit token
	if cfg.Outputs[0].Token != "env-token" {
		t.Errorf("Outputs[0].Token = %q, want env-token", cfg.Outputs[0].Token)
	}
	if cfg.Outputs[1].Token != "explicit" {
		t.Errorf("Outputs[1].Token = %q, want explicit (not overridden)", cfg.Outputs[1].Token)
	}
}

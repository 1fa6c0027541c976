// mqttflux bridges MQTT topics to InfluxDB.
//
// Inbound messages are matched against configured mapping rules and
// rewritten into timestamped, tagged data points: topic wildcards
// capture name fragments, $N templates render field names and tags,
// payloads are taken as raw text or picked apart with JSONPath, and
// values are coerced to their declared types before being written to
// every configured output.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mqttflux/mqttflux/internal/api"
	"github.com/mqttflux/mqttflux/internal/bridge"
	"github.com/mqttflux/mqttflux/internal/infrastructure/config"
	"github.com/mqttflux/mqttflux/internal/infrastructure/influxdb"
	"github.com/mqttflux/mqttflux/internal/infrastructure/logging"
	"github.com/mqttflux/mqttflux/internal/infrastructure/mqtt"
	"github.com/mqttflux/mqttflux/internal/mapping"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting mqttflux",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Compile mapping rules. Any configuration error here is fatal:
	// the bridge refuses to start with a bad rule.
	rules, err := mapping.CompileRules(cfg.Mappings)
	if err != nil {
		return fmt.Errorf("compiling mappings: %w", err)
	}
	log.Info("mappings compiled", "rules", len(rules))

	// Connect outputs
	writers := make([]bridge.PointWriter, 0, len(cfg.Outputs))
	checks := make([]api.Check, 0, len(cfg.Outputs)+1)
	for i, outCfg := range cfg.Outputs {
		out, err := influxdb.Connect(ctx, outCfg)
		if err != nil {
			return fmt.Errorf("connecting output %d (%s): %w", i, outCfg.URL, err)
		}
		defer func() {
			log.Info("closing output", "url", out.URL())
			if closeErr := out.Close(); closeErr != nil {
				log.Error("error closing output", "url", out.URL(), "error", closeErr)
			}
		}()

		// A failing destination only affects itself; log and move on.
		out.SetOnError(func(err error) {
			log.Error("output write error", "url", out.URL(), "error", err)
		})

		log.Info("output connected",
			"url", outCfg.URL,
			"bucket", outCfg.Bucket,
			"measurement", outCfg.Measurement,
		)
		writers = append(writers, out)
		checks = append(checks, api.Check{Name: fmt.Sprintf("output-%d", i), Checker: out})
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", mqttClient.ClientID(),
	)
	checks = append(checks, api.Check{Name: "mqtt", Checker: mqttClient})

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Set up metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := bridge.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	// Start the bridge: subscribe rule filters and begin mapping
	svc := bridge.New(bridge.Deps{
		Rules:      rules,
		Subscriber: mqttClient,
		Writers:    writers,
		QoS:        byte(cfg.MQTT.QoS),
		Logger:     log,
		Metrics:    metrics,
	})
	if err := svc.Start(); err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}

	// Start the health/metrics server (optional)
	if cfg.API.Enabled {
		apiServer := api.New(api.Deps{
			Config:   cfg.API,
			Logger:   log,
			Checks:   checks,
			Registry: registry,
			Version:  version,
		})
		apiServer.Start(ctx)
		defer func() {
			log.Info("stopping api server")
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing api server", "error", closeErr)
			}
		}()
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses MQTTFLUX_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MQTTFLUX_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

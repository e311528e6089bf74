// Package app wires the charger simulator to its transport and sinks.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/evse-sim/config"
	"github.com/kilianp07/evse-sim/core/charger"
	coremetrics "github.com/kilianp07/evse-sim/core/metrics"
	coremqtt "github.com/kilianp07/evse-sim/core/mqtt"
	"github.com/kilianp07/evse-sim/infra/logger"
	"github.com/kilianp07/evse-sim/infra/metrics"
	"github.com/kilianp07/evse-sim/infra/mqtt"
)

// Service runs the charger state machine against the configured broker.
type Service struct {
	charger     *charger.Charger
	client      *mqtt.Client
	log         logger.Logger
	promEnabled bool
	promAddr    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	client, err := mqtt.NewClient(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}

	ch := charger.New(client, ChargerConfig(cfg.Charger), logger.New("charger"), BuildSink(cfg.Metrics))
	return &Service{
		charger:     ch,
		client:      client,
		log:         log,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promAddr:    cfg.Metrics.PrometheusAddr,
	}, nil
}

// Run subscribes the charger and drives its timers until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if err := s.charger.Start(); err != nil {
		return fmt.Errorf("charger start: %w", err)
	}
	s.log.Infof("charger online in state %s", s.charger.State())
	return s.charger.Run(ctx)
}

// Close releases the transport.
func (s *Service) Close() error {
	s.client.Close()
	return nil
}

// ChargerConfig resolves the file configuration into engine parameters.
func ChargerConfig(cfg config.ChargerConfig) charger.Config {
	return charger.Config{
		Topics:          coremqtt.NewTopics(cfg.BaseTopic),
		HeartbeatPeriod: time.Duration(cfg.HeartbeatSeconds) * time.Second,
		TelemetryPeriod: time.Duration(cfg.TelemetrySeconds) * time.Second,
		NominalVoltage:  cfg.NominalVoltage,
		Battery:         cfg.Battery,
	}
}

// BuildSink assembles the configured metrics sinks.
func BuildSink(cfg coremetrics.Config) coremetrics.Sink {
	var sinks []coremetrics.Sink
	if cfg.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			logger.New("metrics").Errorf("prom sink: %v", err)
		} else {
			sinks = append(sinks, sink)
		}
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}
	case 1:
		return sinks[0]
	default:
		return metrics.NewMultiSink(sinks...)
	}
}

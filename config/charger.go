package config

import (
	"fmt"

	"github.com/kilianp07/evse-sim/core/charger"
)

// ChargerConfig defines the simulated charger's behavior.
type ChargerConfig struct {
	// BaseTopic roots the topic namespace, default "openevse".
	BaseTopic string `json:"base_topic"`
	// HeartbeatSeconds is the idle status period.
	HeartbeatSeconds int `json:"heartbeat_seconds"`
	// TelemetrySeconds is the amp/volt/wh publish period.
	TelemetrySeconds int `json:"telemetry_seconds"`
	// NominalVoltage is used to convert amps to power.
	NominalVoltage float64 `json:"nominal_voltage"`
	// Battery describes the simulated pack.
	Battery charger.BatteryConfig `json:"battery"`
}

// SetDefaults applies sane defaults.
func (c *ChargerConfig) SetDefaults() {
	if c.BaseTopic == "" {
		c.BaseTopic = "openevse"
	}
	if c.HeartbeatSeconds == 0 {
		c.HeartbeatSeconds = 5
	}
	if c.TelemetrySeconds == 0 {
		c.TelemetrySeconds = 5
	}
	if c.NominalVoltage == 0 {
		c.NominalVoltage = 230
	}
	if c.Battery.CapacityKWh == 0 {
		c.Battery = charger.BatteryConfig{
			CapacityKWh:     40,
			InitialSoC:      0.8,
			ChargeRateKW:    7,
			DischargeRateKW: 10,
		}
	}
}

// Validate checks mandatory fields.
func (c ChargerConfig) Validate() error {
	if c.HeartbeatSeconds <= 0 {
		return fmt.Errorf("heartbeat_seconds must be positive")
	}
	if c.TelemetrySeconds <= 0 {
		return fmt.Errorf("telemetry_seconds must be positive")
	}
	if c.Battery.InitialSoC < 0 || c.Battery.InitialSoC > 1 {
		return fmt.Errorf("battery initial_soc must be within [0,1]")
	}
	if c.Battery.CapacityKWh <= 0 {
		return fmt.Errorf("battery capacity_kwh must be positive")
	}
	return nil
}

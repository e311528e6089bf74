package config

import "fmt"

// SessionConfig defines the scripted charging session the controller runs.
type SessionConfig struct {
	// SettleSeconds is the wait after connecting before the first command.
	SettleSeconds int `json:"settle_seconds"`
	// ChargeSeconds simulates the normal charging duration.
	ChargeSeconds int `json:"charge_seconds"`
	// ExportSeconds simulates the bidirectional flow duration.
	ExportSeconds int `json:"export_seconds"`
	// ChargeAmps is the target current for the charging phase.
	ChargeAmps float64 `json:"charge_amps"`
	// ExportAmps is the export current for the bidirectional phase
	// (published negated on the wire).
	ExportAmps float64 `json:"export_amps"`
	// AwaitStatus enables the status handshake between steps.
	AwaitStatus bool `json:"await_status"`
	// AckTimeoutSeconds bounds each status wait.
	AckTimeoutSeconds int `json:"ack_timeout_seconds"`
}

// SetDefaults applies the reference scenario values.
func (c *SessionConfig) SetDefaults() {
	if c.SettleSeconds == 0 {
		c.SettleSeconds = 2
	}
	if c.ChargeSeconds == 0 {
		c.ChargeSeconds = 5
	}
	if c.ExportSeconds == 0 {
		c.ExportSeconds = 10
	}
	if c.ChargeAmps == 0 {
		c.ChargeAmps = 32
	}
	if c.ExportAmps == 0 {
		c.ExportAmps = 20
	}
	if c.AckTimeoutSeconds == 0 {
		c.AckTimeoutSeconds = 2
	}
}

// Validate checks mandatory fields.
func (c SessionConfig) Validate() error {
	if c.ChargeAmps <= 0 {
		return fmt.Errorf("charge_amps must be positive")
	}
	if c.ExportAmps <= 0 {
		return fmt.Errorf("export_amps must be positive")
	}
	if c.AckTimeoutSeconds <= 0 {
		return fmt.Errorf("ack_timeout_seconds must be positive")
	}
	return nil
}

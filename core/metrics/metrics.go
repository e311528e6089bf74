package metrics

import "time"

// Telemetry is one electrical sample published by the charger.
type Telemetry struct {
	Amps      float64
	Volts     float64
	WattHours float64
	Time      time.Time
}

// Sink records charger activity for observability purposes.
type Sink interface {
	RecordCommand(kind string)
	RecordMalformed()
	RecordHeartbeat()
	RecordState(state string)
}

// TelemetryRecorder is implemented by sinks that can persist electrical
// telemetry in addition to protocol counters.
type TelemetryRecorder interface {
	RecordTelemetry(Telemetry) error
}

// Config holds the observability settings.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}

// NopSink implements Sink and TelemetryRecorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordCommand(string)            {}
func (NopSink) RecordMalformed()                {}
func (NopSink) RecordHeartbeat()                {}
func (NopSink) RecordState(string)              {}
func (NopSink) RecordTelemetry(Telemetry) error { return nil }

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
mqtt:
  broker: tcp://broker:1883
  client_id: evse-test
  clean_session: true
charger:
  base_topic: garage/evse
  heartbeat_seconds: 3
  nominal_voltage: 240
  battery:
    capacity_kwh: 80
    initial_soc: 0.5
    charge_rate_kw: 11
    discharge_rate_kw: 20
session:
  charge_amps: 16
  export_amps: 10
  await_status: true
metrics:
  prometheus_enabled: true
  prometheus_addr: ":9200"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "evse-test", cfg.MQTT.ClientID)
	assert.True(t, cfg.MQTT.CleanSession)
	assert.Equal(t, "garage/evse", cfg.Charger.BaseTopic)
	assert.Equal(t, 3, cfg.Charger.HeartbeatSeconds)
	assert.Equal(t, 240.0, cfg.Charger.NominalVoltage)
	assert.Equal(t, 80.0, cfg.Charger.Battery.CapacityKWh)
	assert.Equal(t, 16.0, cfg.Session.ChargeAmps)
	assert.True(t, cfg.Session.AwaitStatus)
	assert.True(t, cfg.Metrics.PrometheusEnabled)
	assert.Equal(t, ":9200", cfg.Metrics.PrometheusAddr)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
mqtt:
  broker: tcp://localhost:1883
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openevse", cfg.Charger.BaseTopic)
	assert.Equal(t, 5, cfg.Charger.HeartbeatSeconds)
	assert.Equal(t, 5, cfg.Charger.TelemetrySeconds)
	assert.Equal(t, 230.0, cfg.Charger.NominalVoltage)
	assert.Equal(t, 40.0, cfg.Charger.Battery.CapacityKWh)
	assert.Equal(t, 2, cfg.Session.SettleSeconds)
	assert.Equal(t, 5, cfg.Session.ChargeSeconds)
	assert.Equal(t, 10, cfg.Session.ExportSeconds)
	assert.Equal(t, 32.0, cfg.Session.ChargeAmps)
	assert.Equal(t, 20.0, cfg.Session.ExportAmps)
	assert.NotEmpty(t, cfg.MQTT.ClientID)
	assert.Equal(t, ":9090", cfg.Metrics.PrometheusAddr)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "mqtt": {"broker": "tcp://localhost:1883"},
  "charger": {"base_topic": "json/evse"}
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json/evse", cfg.Charger.BaseTopic)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.toml", "broker = 'x'")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadInvalidSession(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
session:
  charge_amps: -5
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadInvalidBattery(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
charger:
  battery:
    capacity_kwh: 40
    initial_soc: 1.5
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
mqtt:
  broker: tcp://file:1883
`)
	t.Setenv("EVSE_MQTT__BROKER", "tcp://env:1883")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://env:1883", cfg.MQTT.Broker)
}

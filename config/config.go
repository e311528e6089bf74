package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/evse-sim/core/metrics"
	"github.com/kilianp07/evse-sim/infra/mqtt"
)

// Config is the root configuration of the simulator.
type Config struct {
	MQTT    mqtt.Config    `json:"mqtt"`
	Charger ChargerConfig  `json:"charger"`
	Session SessionConfig  `json:"session"`
	Metrics metrics.Config `json:"metrics"`
}

// Load reads the configuration file (yaml or json by extension) and applies
// EVSE_* environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides, e.g. EVSE_MQTT__BROKER.
	if err := k.Load(env.Provider("EVSE_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "evse_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.MQTT.SetDefaults()
	cfg.Charger.SetDefaults()
	cfg.Session.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Charger.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Session.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

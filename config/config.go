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

	"github.com/ovrim/windcurb/core/curtail"
	"github.com/ovrim/windcurb/infra/mqtt"
	"github.com/ovrim/windcurb/metrics"
)

type Config struct {
	Physics     PhysicsConfig  `json:"physics"`
	Curtailment curtail.Config `json:"curtailment"`
	Paths       PathsConfig    `json:"paths"`
	Run         RunConfig      `json:"run"`
	Metrics     metrics.Config `json:"metrics"`
	MQTT        mqtt.Config    `json:"mqtt"`
}

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
	// Optional environment overrides
	if err := k.Load(env.Provider("WC_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "wc_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Physics.SetDefaults()
	cfg.Curtailment.SetDefaults()
	cfg.Paths.SetDefaults()
	cfg.Run.SetDefaults()
	cfg.MQTT.SetDefaults()
	if err := cfg.Physics.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Curtailment.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Paths.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Run.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

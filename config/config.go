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

	"github.com/gridpool/autobid/core/metrics"
	"github.com/gridpool/autobid/infra/feed"
	"github.com/gridpool/autobid/infra/kv"
	"github.com/gridpool/autobid/infra/mqtt"
	"github.com/gridpool/autobid/infra/notify"
)

// Config aggregates the per-subsystem configuration.
type Config struct {
	Engine    EngineConfig    `json:"engine"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Store     kv.Config       `json:"store"`
	Feed      feed.Config     `json:"feed"`
	Metrics   metrics.Config  `json:"metrics"`
	Notify    notify.Config   `json:"notify"`
	MQTT      mqtt.Config     `json:"mqtt"`
}

// EngineConfig controls the bidding engine lifecycle.
type EngineConfig struct {
	// AutoStart flips the engine into the running state on boot. When false
	// the service only computes analytics and alerts until started.
	AutoStart bool `json:"auto_start"`
}

// Load reads the configuration file (YAML or JSON by extension) and applies
// AB_-prefixed environment overrides.
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
	if err := k.Load(env.Provider("AB_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "ab_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Scheduler.SetDefaults()
	cfg.Store.SetDefaults()
	cfg.Feed.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Notify.SetDefaults()
	cfg.MQTT.SetDefaults()
	if err := cfg.Scheduler.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Feed.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

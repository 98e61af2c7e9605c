// Package feed supplies listing batches to the evaluation loop. The engine
// only consumes the result; fetch frequency and transport belong here.
package feed

import (
	"context"
	"fmt"

	"github.com/gridpool/autobid/core/logger"
	"github.com/gridpool/autobid/core/model"
)

// Supplier returns the current set of energy listings on demand.
type Supplier interface {
	Fetch(ctx context.Context) ([]model.EnergyBlock, error)
}

// Config selects the listing source.
type Config struct {
	// Mode is "sim" or "websocket".
	Mode string `json:"mode"`
	// Sim parameterizes the simulated marketplace.
	Sim SimConfig `json:"sim"`
	// URL is the websocket endpoint for mode "websocket".
	URL string `json:"url"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "sim"
	}
	c.Sim.SetDefaults()
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Mode {
	case "sim":
		return nil
	case "websocket":
		if c.URL == "" {
			return fmt.Errorf("feed: url is required for websocket mode")
		}
		return nil
	default:
		return fmt.Errorf("feed: unknown mode %s", c.Mode)
	}
}

// New constructs the configured supplier. Websocket suppliers must also be
// started with Run.
func New(cfg Config, log logger.Logger) (Supplier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case "sim":
		return NewSimSupplier(cfg.Sim), nil
	case "websocket":
		return NewWSFeed(cfg.URL, log), nil
	default:
		return nil, fmt.Errorf("feed: unknown mode %s", cfg.Mode)
	}
}

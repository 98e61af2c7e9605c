package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// SchedulerConfig controls the market evaluation cadence.
type SchedulerConfig struct {
	// CronSpec is a six-field cron expression (with seconds).
	CronSpec string `json:"cron_spec"`
}

func (c *SchedulerConfig) SetDefaults() {
	if c.CronSpec == "" {
		c.CronSpec = "*/15 * * * * *"
	}
}

func (c SchedulerConfig) Validate() error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.CronSpec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", c.CronSpec, err)
	}
	return nil
}

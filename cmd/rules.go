package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridpool/autobid/config"
	"github.com/gridpool/autobid/core/clock"
	"github.com/gridpool/autobid/core/store"
	"github.com/gridpool/autobid/infra/kv"
	"github.com/gridpool/autobid/infra/logger"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the configured auto-bid rules and price alerts",
	RunE:  listRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func listRules(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	kvs, err := kv.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store backend: %w", err)
	}
	defer kvs.Close()

	st, err := store.New(kvs, clock.System{}, logger.New("rules-command"))
	if err != nil {
		return fmt.Errorf("rule store: %w", err)
	}

	rules := st.Rules()
	fmt.Printf("%d auto-bid rules:\n", len(rules))
	for _, r := range rules {
		state := "disabled"
		if r.Enabled {
			state = "enabled"
		}
		fmt.Printf("  %s  %-28s %-12s %s  max $%.3f/kWh, min %.1f MWh, budget $%.0f/day\n",
			r.ID, r.Name, r.Strategy, state,
			r.Conditions.MaxPrice, r.Conditions.MinEnergy, r.Limits.DailyBudget)
	}

	alerts := st.Alerts()
	fmt.Printf("%d price alerts:\n", len(alerts))
	for _, a := range alerts {
		state := "disabled"
		if a.Enabled {
			state = "enabled"
		}
		fmt.Printf("  %s  %-28s %-14s %s  triggered %d times\n",
			a.ID, a.Name, a.Type, state, a.TriggeredCount)
	}
	return nil
}

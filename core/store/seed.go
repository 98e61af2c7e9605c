package store

import "github.com/gridpool/autobid/core/model"

// seed populates an empty durable store with one demonstration rule per
// strategy and one alert per alert type. It only runs when both collections
// are genuinely empty, so user data is never overwritten.
func (s *Store) seed() {
	for _, strat := range model.Strategies() {
		rule := model.AutoBidRule{
			Name:     string(strat) + " solar buyer",
			Enabled:  strat == model.StrategyBalanced,
			Strategy: strat,
			Conditions: model.RuleConditions{
				MaxPrice:    0.035,
				MinEnergy:   5,
				EnergyTypes: []string{"Solar", "Wind"},
			},
			Actions: model.RuleActions{
				BidIncrement: 0.002,
				MaxAttempts:  3,
				AutoOutbid:   true,
				BidTiming:    model.TimingImmediate,
			},
			Limits: model.RuleLimits{
				DailyBudget:    500,
				MaxBidsPerHour: 6,
				PauseAfterWin:  false,
			},
		}
		if _, err := s.AddRule(rule); err != nil {
			s.log.Errorf("seed rule %s: %v", strat, err)
		}
	}

	target := 0.025
	volume := 20.0
	for _, typ := range model.AlertTypes() {
		alert := model.PriceAlert{
			Name:    string(typ) + " watch",
			Enabled: typ == model.AlertPriceDrop || typ == model.AlertNewListing,
			Type:    typ,
			Conditions: model.AlertConditions{
				EnergyTypes: []string{"Solar", "Wind", "Hydro"},
			},
			Notifications: model.AlertNotifications{Browser: true},
		}
		switch typ {
		case model.AlertPriceDrop, model.AlertNewListing:
			t := target
			alert.Conditions.TargetPrice = &t
		case model.AlertAuctionEnding:
			v := volume
			alert.Conditions.VolumeThreshold = &v
		}
		if _, err := s.AddAlert(alert); err != nil {
			s.log.Errorf("seed alert %s: %v", typ, err)
		}
	}
	s.log.Infof("seeded %d demo rules and %d demo alerts", len(s.rules), len(s.alerts))
}

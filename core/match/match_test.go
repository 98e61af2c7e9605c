package match

import (
	"testing"
	"time"

	"github.com/gridpool/autobid/core/model"
)

func solarListing() model.EnergyBlock {
	return model.EnergyBlock{
		ID:        "blk-1",
		Location:  "Gisborne, New Zealand",
		Type:      "Solar",
		Available: 15,
		Price:     0.025,
		Status:    model.StatusAvailable,
	}
}

func solarRule() model.AutoBidRule {
	return model.AutoBidRule{
		ID:       "rule-1",
		Name:     "solar buyer",
		Enabled:  true,
		Strategy: model.StrategyBalanced,
		Conditions: model.RuleConditions{
			MaxPrice:    0.030,
			MinEnergy:   10,
			EnergyTypes: []string{"Solar"},
		},
		Actions: model.RuleActions{BidIncrement: 0.002, BidTiming: model.TimingImmediate},
		Limits:  model.RuleLimits{MaxBidsPerHour: 6},
	}
}

func TestRuleMatches(t *testing.T) {
	now := time.Now()
	if !Rule(solarListing(), solarRule(), now) {
		t.Fatalf("expected listing to match rule")
	}
}

func TestRulePriceCeiling(t *testing.T) {
	l := solarListing()
	l.Price = 0.031
	if Rule(l, solarRule(), time.Now()) {
		t.Fatalf("expected price above ceiling to reject")
	}
}

func TestRuleMinEnergy(t *testing.T) {
	l := solarListing()
	l.Available = 9.9
	if Rule(l, solarRule(), time.Now()) {
		t.Fatalf("expected volume below floor to reject")
	}
}

func TestRuleEnergyTypeFilter(t *testing.T) {
	l := solarListing()
	l.Type = "Wind"
	if Rule(l, solarRule(), time.Now()) {
		t.Fatalf("expected type outside filter to reject")
	}

	r := solarRule()
	r.Conditions.EnergyTypes = nil
	if !Rule(l, r, time.Now()) {
		t.Fatalf("expected empty type filter to accept any type")
	}
}

func TestRuleLocationSubstring(t *testing.T) {
	r := solarRule()
	r.Conditions.Locations = []string{"new zealand"}
	if !Rule(solarListing(), r, time.Now()) {
		t.Fatalf("expected case-insensitive substring match")
	}

	r.Conditions.Locations = []string{"Australia"}
	if Rule(solarListing(), r, time.Now()) {
		t.Fatalf("expected location outside filter to reject")
	}
}

func TestRuleBehindTheFence(t *testing.T) {
	yes := true
	r := solarRule()
	r.Conditions.BehindTheFence = &yes
	if Rule(solarListing(), r, time.Now()) {
		t.Fatalf("expected grid-connected listing to reject behind-the-fence rule")
	}

	l := solarListing()
	l.BehindTheFence = true
	if !Rule(l, r, time.Now()) {
		t.Fatalf("expected behind-the-fence listing to match")
	}
}

func TestRuleRateLimit(t *testing.T) {
	now := time.Now()
	r := solarRule()
	r.Limits.MaxBidsPerHour = 6 // one bid per 10 minutes

	last := now.Add(-5 * time.Minute)
	r.LastTriggered = &last
	if Rule(solarListing(), r, now) {
		t.Fatalf("expected rule inside min interval to reject")
	}

	last = now.Add(-11 * time.Minute)
	r.LastTriggered = &last
	if !Rule(solarListing(), r, now) {
		t.Fatalf("expected rule outside min interval to match")
	}
}

func TestMinBidInterval(t *testing.T) {
	r := solarRule()
	r.Limits.MaxBidsPerHour = 4
	if got := r.MinBidInterval(); got != 15*time.Minute {
		t.Fatalf("expected 15m interval, got %v", got)
	}
}

func TestAlertTypeFilterMandatory(t *testing.T) {
	a := model.PriceAlert{
		Type:       model.AlertPriceDrop,
		Conditions: model.AlertConditions{},
	}
	if Alert(solarListing(), a) {
		t.Fatalf("expected alert without energy types to never match")
	}
}

func TestAlertPriceDropStrict(t *testing.T) {
	target := 0.025
	a := model.PriceAlert{
		Type: model.AlertPriceDrop,
		Conditions: model.AlertConditions{
			EnergyTypes: []string{"Solar"},
			TargetPrice: &target,
		},
	}
	if Alert(solarListing(), a) {
		t.Fatalf("price_drop requires price strictly below target")
	}

	l := solarListing()
	l.Price = 0.024
	if !Alert(l, a) {
		t.Fatalf("expected price below target to trigger")
	}
}

func TestAlertNewListingInclusive(t *testing.T) {
	target := 0.025
	a := model.PriceAlert{
		Type: model.AlertNewListing,
		Conditions: model.AlertConditions{
			EnergyTypes: []string{"Solar"},
			TargetPrice: &target,
		},
	}
	if !Alert(solarListing(), a) {
		t.Fatalf("new_listing accepts price equal to target")
	}

	l := solarListing()
	l.Price = 0.026
	if Alert(l, a) {
		t.Fatalf("expected price above target to reject")
	}
}

func TestAlertVolumeThreshold(t *testing.T) {
	vol := 20.0
	a := model.PriceAlert{
		Type: model.AlertAuctionEnding,
		Conditions: model.AlertConditions{
			EnergyTypes:     []string{"Solar"},
			VolumeThreshold: &vol,
		},
	}
	if Alert(solarListing(), a) {
		t.Fatalf("expected listing below volume threshold to reject")
	}

	l := solarListing()
	l.Available = 25
	if !Alert(l, a) {
		t.Fatalf("expected listing above volume threshold to match")
	}
}

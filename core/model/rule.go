package model

import "time"

// Strategy selects the pricing formula a rule applies to matched listings.
type Strategy string

const (
	StrategyConservative Strategy = "conservative"
	StrategyBalanced     Strategy = "balanced"
	StrategyAggressive   Strategy = "aggressive"
	StrategyCustom       Strategy = "custom"
)

// Valid reports whether the strategy is a known value.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyConservative, StrategyBalanced, StrategyAggressive, StrategyCustom:
		return true
	}
	return false
}

// Strategies lists all known strategies in a stable order.
func Strategies() []Strategy {
	return []Strategy{StrategyConservative, StrategyBalanced, StrategyAggressive, StrategyCustom}
}

// BidTiming controls when a rule places its bid relative to the auction window.
type BidTiming string

const (
	TimingImmediate  BidTiming = "immediate"
	TimingStrategic  BidTiming = "strategic"
	TimingLastMinute BidTiming = "last_minute"
)

// RuleConditions restrict which listings a rule may bid on. An empty
// EnergyTypes slice disables the type filter; an empty Locations slice
// disables the location filter.
type RuleConditions struct {
	MaxPrice          float64  `json:"max_price" validate:"gte=0"`   // $/kWh ceiling
	MinEnergy         float64  `json:"min_energy" validate:"gte=0"`  // MWh floor
	EnergyTypes       []string `json:"energy_types"`
	Locations         []string `json:"locations,omitempty"`
	TimeWindowMinutes int      `json:"time_window_minutes,omitempty" validate:"gte=0"`
	BehindTheFence    *bool    `json:"behind_the_fence,omitempty"`
}

// RuleActions describe how a rule bids once a listing matches.
type RuleActions struct {
	BidIncrement float64   `json:"bid_increment" validate:"gte=0"`
	MaxAttempts  int       `json:"max_attempts" validate:"gte=0"`
	AutoOutbid   bool      `json:"auto_outbid"`
	BidTiming    BidTiming `json:"bid_timing" validate:"oneof=immediate strategic last_minute"`
}

// RuleLimits cap the spend and frequency of automated bids.
type RuleLimits struct {
	DailyBudget    float64 `json:"daily_budget" validate:"gte=0"`
	MaxBidsPerHour int     `json:"max_bids_per_hour" validate:"gt=0"`
	PauseAfterWin  bool    `json:"pause_after_win"`
}

// AutoBidRule is a stored automated-bidding policy. A disabled rule is never
// evaluated. LastTriggered is updated on each successful match-and-bid and
// drives the rate limit.
type AutoBidRule struct {
	ID            string         `json:"id"`
	Name          string         `json:"name" validate:"required"`
	Enabled       bool           `json:"enabled"`
	Strategy      Strategy       `json:"strategy" validate:"oneof=conservative balanced aggressive custom"`
	Conditions    RuleConditions `json:"conditions"`
	Actions       RuleActions    `json:"actions"`
	Limits        RuleLimits     `json:"limits"`
	CreatedAt     time.Time      `json:"created_at"`
	LastTriggered *time.Time     `json:"last_triggered,omitempty"`
}

// MinBidInterval derives the minimum spacing between two bids from the hourly
// cap. A rule with MaxBidsPerHour = 4 may bid at most every 15 minutes.
func (r AutoBidRule) MinBidInterval() time.Duration {
	if r.Limits.MaxBidsPerHour <= 0 {
		return time.Hour
	}
	return time.Hour / time.Duration(r.Limits.MaxBidsPerHour)
}

package model

// TrendDirection is a coarse price-movement indicator derived from a single
// listing batch. Without a historical series this is a heuristic, not a real
// trend.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// CompetitionLevel classifies how contested listings of an energy type are,
// based on the fraction of listings already in the bidding state.
type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "low"
	CompetitionMedium CompetitionLevel = "medium"
	CompetitionHigh   CompetitionLevel = "high"
)

// PriceRange holds the min/max listing price observed for an energy type.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MarketAnalytics is the derived per-energy-type market snapshot. Each
// analytics update recomputes it wholesale; snapshots are superseded, never
// merged.
type MarketAnalytics struct {
	EnergyType          string           `json:"energy_type"`
	AveragePrice        float64          `json:"average_price"`
	PriceRange          PriceRange       `json:"price_range"`
	VolumeAvailable     float64          `json:"volume_available"`
	TrendDirection      TrendDirection   `json:"trend_direction"`
	CompetitionLevel    CompetitionLevel `json:"competition_level"`
	RecommendedBidPrice float64          `json:"recommended_bid_price"`
}

package model

import "time"

// BidResult records one automated bid attempt. Results are immutable once
// produced and are returned to the caller rather than persisted.
type BidResult struct {
	Success       bool      `json:"success"`
	BidID         string    `json:"bid_id,omitempty"`
	RuleID        string    `json:"rule_id"`
	EnergyBlockID string    `json:"energy_block_id"`
	Amount        float64   `json:"amount"` // MWh
	Price         float64   `json:"price"`  // $/kWh
	Timestamp     time.Time `json:"timestamp"`
	Error         string    `json:"error,omitempty"`
}

// Cost returns the total value of the bid.
func (b BidResult) Cost() float64 {
	return b.Amount * b.Price
}

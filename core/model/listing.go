package model

// ListingStatus describes the auction state of an energy block.
type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusBidding   ListingStatus = "bidding"
	StatusSold      ListingStatus = "sold"
)

// Open reports whether the listing still accepts bids.
func (s ListingStatus) Open() bool {
	return s == StatusAvailable || s == StatusBidding
}

// EnergyBlock is a tradeable unit of surplus energy published by the
// marketplace. The engine consumes blocks read-only; a fresh batch is supplied
// on every evaluation cycle.
type EnergyBlock struct {
	ID             string        `json:"id"`
	Location       string        `json:"location"`
	Type           string        `json:"type"`     // energy type, e.g. "Solar", "Wind"
	Available      float64       `json:"available"` // volume in MWh
	Price          float64       `json:"price"`     // $/kWh
	Status         ListingStatus `json:"status"`
	Producer       string        `json:"producer"`
	BehindTheFence bool          `json:"behind_the_fence"`
}

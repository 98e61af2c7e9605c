package model

import "time"

// AlertType identifies the market event a PriceAlert reacts to.
//
// AlertBidPlaced fires when the engine places an automated bid. AlertWonBid is
// reserved for confirmed auction outcomes reported by the settlement layer;
// the engine itself never fires it.
type AlertType string

const (
	AlertPriceDrop     AlertType = "price_drop"
	AlertNewListing    AlertType = "new_listing"
	AlertAuctionEnding AlertType = "auction_ending"
	AlertOutbid        AlertType = "outbid"
	AlertBidPlaced     AlertType = "bid_placed"
	AlertWonBid        AlertType = "won_bid"
)

// Valid reports whether the alert type is a known value.
func (t AlertType) Valid() bool {
	switch t {
	case AlertPriceDrop, AlertNewListing, AlertAuctionEnding, AlertOutbid, AlertBidPlaced, AlertWonBid:
		return true
	}
	return false
}

// AlertTypes lists all known alert types in a stable order.
func AlertTypes() []AlertType {
	return []AlertType{AlertPriceDrop, AlertNewListing, AlertAuctionEnding, AlertOutbid, AlertBidPlaced, AlertWonBid}
}

// AlertConditions restrict which listings may trigger an alert. Unlike rule
// conditions, the energy type filter is mandatory.
type AlertConditions struct {
	TargetPrice     *float64 `json:"target_price,omitempty"`
	EnergyTypes     []string `json:"energy_types" validate:"min=1"`
	Locations       []string `json:"locations,omitempty"`
	PriceChangePct  *float64 `json:"price_change_pct,omitempty"`
	VolumeThreshold *float64 `json:"volume_threshold,omitempty"` // MWh
}

// AlertNotifications select the delivery channels for a triggered alert.
type AlertNotifications struct {
	Email   bool   `json:"email"`
	Browser bool   `json:"browser"`
	Webhook string `json:"webhook,omitempty"`
}

// PriceAlert is a stored notification trigger. TriggeredCount only ever
// increases: once per matching listing per check cycle, with no
// de-duplication across cycles.
type PriceAlert struct {
	ID             string             `json:"id"`
	Name           string             `json:"name" validate:"required"`
	Enabled        bool               `json:"enabled"`
	Type           AlertType          `json:"type" validate:"oneof=price_drop new_listing auction_ending outbid bid_placed won_bid"`
	Conditions     AlertConditions    `json:"conditions"`
	Notifications  AlertNotifications `json:"notifications"`
	TriggeredCount int                `json:"triggered_count"`
	LastTriggered  *time.Time         `json:"last_triggered,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

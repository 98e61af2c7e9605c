// Package events defines the concrete event payloads published on the bus.
// Each event type carries its own typed fields so consumers can switch on the
// variant instead of decoding untyped maps.
package events

import (
	"time"

	"github.com/gridpool/autobid/core/model"
)

// BidPlacedEvent is published for every successful automated bid.
type BidPlacedEvent struct {
	RuleID   string
	RuleName string
	Strategy model.Strategy
	Result   model.BidResult
}

// BidFailedEvent is published when constructing a bid for a listing/rule pair
// fails. Evaluation of the remaining pairs continues.
type BidFailedEvent struct {
	RuleID        string
	EnergyBlockID string
	Err           error
}

// AlertFiredEvent is published each time a price alert triggers.
type AlertFiredEvent struct {
	AlertID       string
	AlertType     model.AlertType
	EnergyBlockID string
	Message       string
	At            time.Time
}

// EngineStateEvent is published on engine start and stop transitions.
type EngineStateEvent struct {
	Running bool
	At      time.Time
}

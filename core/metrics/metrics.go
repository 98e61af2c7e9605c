package metrics

import (
	"time"

	"github.com/gridpool/autobid/core/model"
)

// BidRecord represents one automated bid attempt to be recorded for
// observability purposes.
type BidRecord struct {
	RuleID        string
	RuleName      string
	Strategy      model.Strategy
	EnergyBlockID string
	EnergyType    string
	Amount        float64
	Price         float64
	Success       bool
	PlacedAt      time.Time
}

// MetricsSink records bid results. Implementations live under infra/metrics.
type MetricsSink interface {
	RecordBidResults(records []BidRecord) error
}

// AlertRecord captures one alert notification.
type AlertRecord struct {
	AlertID       string
	AlertType     model.AlertType
	EnergyBlockID string
	EnergyType    string
	FiredAt       time.Time
}

// AlertRecorder is an optional sink capability for alert events.
type AlertRecorder interface {
	RecordAlertFired(rec AlertRecord) error
}

// MarketRecord is a per-energy-type analytics snapshot for time-series sinks.
type MarketRecord struct {
	Snapshot model.MarketAnalytics
	At       time.Time
}

// MarketRecorder is an optional sink capability for analytics snapshots.
type MarketRecorder interface {
	RecordMarketSnapshot(rec MarketRecord) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordBidResults([]BidRecord) error      { return nil }
func (NopSink) RecordAlertFired(AlertRecord) error      { return nil }
func (NopSink) RecordMarketSnapshot(MarketRecord) error { return nil }

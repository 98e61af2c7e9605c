// Package alert evaluates price alerts against listing batches and pushes
// notifications through an abstract sink. Delivery is at-least-once: a
// listing that keeps matching across cycles fires the alert again each cycle.
package alert

import (
	"fmt"

	"github.com/gridpool/autobid/core/clock"
	"github.com/gridpool/autobid/core/events"
	"github.com/gridpool/autobid/core/logger"
	"github.com/gridpool/autobid/core/match"
	coremetrics "github.com/gridpool/autobid/core/metrics"
	"github.com/gridpool/autobid/core/model"
	"github.com/gridpool/autobid/core/store"
	"github.com/gridpool/autobid/internal/eventbus"
)

// Notifier delivers one notification. Implementations swallow their own
// failures; nothing propagates back into the dispatcher.
type Notifier interface {
	Notify(title, body string)
}

// WebhookNotifier is an optional capability for alerts carrying their own
// webhook URL.
type WebhookNotifier interface {
	NotifyTo(url, title, body string)
}

// Dispatcher matches listings against enabled alerts and fires notifications.
type Dispatcher struct {
	store *store.Store
	sink  Notifier
	sinks coremetrics.MetricsSink
	bus   eventbus.EventBus
	clock clock.Clock
	log   logger.Logger
}

// New creates a Dispatcher. The store and notifier are mandatory; metrics
// sink, bus, clock and logger fall back to no-op defaults.
func New(st *store.Store, sink Notifier, msink coremetrics.MetricsSink, bus eventbus.EventBus, clk clock.Clock, log logger.Logger) (*Dispatcher, error) {
	if st == nil || sink == nil {
		return nil, fmt.Errorf("alert: nil parameter provided to New")
	}
	if msink == nil {
		msink = coremetrics.NopSink{}
	}
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Dispatcher{store: st, sink: sink, sinks: msink, bus: bus, clock: clk, log: log}, nil
}

// Check fires every enabled alert whose conditions match a listing in the
// batch. BidPlaced and WonBid alerts are event-driven, not batch-driven, and
// are skipped here.
func (d *Dispatcher) Check(listings []model.EnergyBlock) {
	for _, a := range d.store.Alerts() {
		if !a.Enabled || a.Type == model.AlertBidPlaced || a.Type == model.AlertWonBid {
			continue
		}
		for _, l := range listings {
			if match.Alert(l, a) {
				d.fire(a, l, message(a, l))
			}
		}
	}
}

// BidPlaced fires enabled bid_placed alerts matching the listing a bid was
// just placed on.
func (d *Dispatcher) BidPlaced(l model.EnergyBlock, res model.BidResult) {
	for _, a := range d.store.Alerts() {
		if !a.Enabled || a.Type != model.AlertBidPlaced {
			continue
		}
		if !match.Alert(l, a) {
			continue
		}
		body := fmt.Sprintf("Automated bid of $%.3f/kWh placed for %.1f MWh of %s energy at %s", res.Price, res.Amount, l.Type, l.Location)
		d.fire(a, l, notification{"Bid placed", body})
	}
}

type notification struct {
	title string
	body  string
}

func (d *Dispatcher) fire(a model.PriceAlert, l model.EnergyBlock, n notification) {
	now := d.clock.Now()
	if a.Notifications.Webhook != "" {
		if wn, ok := d.sink.(WebhookNotifier); ok {
			wn.NotifyTo(a.Notifications.Webhook, n.title, n.body)
		}
	}
	d.sink.Notify(n.title, n.body)
	d.store.MarkAlertTriggered(a.ID, now)
	if d.bus != nil {
		d.bus.Publish(events.AlertFiredEvent{
			AlertID:       a.ID,
			AlertType:     a.Type,
			EnergyBlockID: l.ID,
			Message:       n.body,
			At:            now,
		})
	}
	if rec, ok := d.sinks.(coremetrics.AlertRecorder); ok {
		if err := rec.RecordAlertFired(coremetrics.AlertRecord{
			AlertID:       a.ID,
			AlertType:     a.Type,
			EnergyBlockID: l.ID,
			EnergyType:    l.Type,
			FiredAt:       now,
		}); err != nil {
			d.log.Errorf("alert metrics error: %v", err)
		}
	}
}

// message renders the per-type notification template.
func message(a model.PriceAlert, l model.EnergyBlock) notification {
	switch a.Type {
	case model.AlertPriceDrop:
		return notification{
			"Price drop",
			fmt.Sprintf("Price dropped to $%.3f/kWh for %s energy at %s", l.Price, l.Type, l.Location),
		}
	case model.AlertNewListing:
		return notification{
			"New listing",
			fmt.Sprintf("New %s listing at %s: %.1f MWh at $%.3f/kWh", l.Type, l.Location, l.Available, l.Price),
		}
	case model.AlertAuctionEnding:
		return notification{
			"Auction ending",
			fmt.Sprintf("Auction ending soon for %.1f MWh of %s energy at %s", l.Available, l.Type, l.Location),
		}
	case model.AlertOutbid:
		return notification{
			"Outbid",
			fmt.Sprintf("A higher bid was placed on %s energy at %s (now $%.3f/kWh)", l.Type, l.Location, l.Price),
		}
	case model.AlertWonBid:
		return notification{
			"Auction won",
			fmt.Sprintf("Won auction for %.1f MWh of %s energy at %s", l.Available, l.Type, l.Location),
		}
	default:
		return notification{
			"Market alert",
			fmt.Sprintf("%s energy at %s: $%.3f/kWh", l.Type, l.Location, l.Price),
		}
	}
}

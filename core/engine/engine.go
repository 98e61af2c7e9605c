// Package engine implements the rule-driven auto-bidding orchestrator. An
// external scheduler feeds it fresh listing batches; while running it matches
// every open listing against every enabled rule, prices the matches and emits
// bid results under rate and budget constraints.
package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gridpool/autobid/core/alert"
	"github.com/gridpool/autobid/core/analytics"
	"github.com/gridpool/autobid/core/clock"
	"github.com/gridpool/autobid/core/events"
	"github.com/gridpool/autobid/core/logger"
	"github.com/gridpool/autobid/core/match"
	coremetrics "github.com/gridpool/autobid/core/metrics"
	"github.com/gridpool/autobid/core/model"
	"github.com/gridpool/autobid/core/store"
	"github.com/gridpool/autobid/internal/eventbus"
)

// Engine ties the rule store, analytics aggregator and alert dispatcher
// together. It holds no rule copies beyond transient evaluation state; the
// store remains the single owner.
type Engine struct {
	store     *store.Store
	analytics *analytics.Aggregator
	alerts    *alert.Dispatcher
	sink      coremetrics.MetricsSink
	bus       eventbus.EventBus
	clock     clock.Clock
	log       logger.Logger
	budget    *budgetLedger

	mu      sync.Mutex
	running bool
	// evalMu serializes evaluation so overlapping scheduler ticks cannot
	// double-fire rate-limited rules.
	evalMu sync.Mutex
}

// New creates an Engine in the stopped state. Store, aggregator and alert
// dispatcher are mandatory; sink, bus, clock and logger default to no-ops.
func New(st *store.Store, aggr *analytics.Aggregator, alerts *alert.Dispatcher, sink coremetrics.MetricsSink, bus eventbus.EventBus, clk clock.Clock, log logger.Logger) (*Engine, error) {
	if st == nil || aggr == nil || alerts == nil {
		return nil, fmt.Errorf("engine: nil parameter provided to New")
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Engine{
		store:     st,
		analytics: aggr,
		alerts:    alerts,
		sink:      sink,
		bus:       bus,
		clock:     clk,
		log:       log,
		budget:    newBudgetLedger(),
	}, nil
}

// Start flips the engine into the running state.
func (e *Engine) Start() {
	e.mu.Lock()
	was := e.running
	e.running = true
	e.mu.Unlock()
	if !was {
		engineRunning.Set(1)
		e.log.Infof("auto-bidding engine started")
		e.publish(events.EngineStateEvent{Running: true, At: e.clock.Now()})
	}
}

// Stop flips the running flag so the next evaluation becomes a no-op. An
// in-flight evaluation is allowed to complete.
func (e *Engine) Stop() {
	e.mu.Lock()
	was := e.running
	e.running = false
	e.mu.Unlock()
	if was {
		engineRunning.Set(0)
		e.log.Infof("auto-bidding engine stopped")
		e.publish(events.EngineStateEvent{Running: false, At: e.clock.Now()})
	}
}

// IsRunning reports the current engine state.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// UpdateAnalytics recomputes the per-type market snapshots from the batch and
// forwards them to time-series sinks.
func (e *Engine) UpdateAnalytics(listings []model.EnergyBlock) {
	e.analytics.Update(listings)
	rec, ok := e.sink.(coremetrics.MarketRecorder)
	if !ok {
		return
	}
	now := e.clock.Now()
	for _, typ := range e.analytics.Types() {
		if snap, found := e.analytics.Get(typ); found {
			if err := rec.RecordMarketSnapshot(coremetrics.MarketRecord{Snapshot: snap, At: now}); err != nil {
				e.log.Errorf("market metrics error: %v", err)
			}
		}
	}
}

// Analytics returns the snapshot for the energy type, if one exists.
func (e *Engine) Analytics(energyType string) (model.MarketAnalytics, bool) {
	return e.analytics.Get(energyType)
}

// CheckAlerts evaluates the batch against all enabled alerts.
func (e *Engine) CheckAlerts(listings []model.EnergyBlock) {
	e.alerts.Check(listings)
}

// EvaluateListings runs one bidding cycle over the batch. While the engine is
// stopped it returns nil without side effects; this flag is the sole gate on
// all automated action. A failure while constructing one bid produces a
// failed BidResult and never aborts the remaining listing/rule pairs.
func (e *Engine) EvaluateListings(listings []model.EnergyBlock) []model.BidResult {
	if !e.IsRunning() {
		return nil
	}
	e.evalMu.Lock()
	defer e.evalMu.Unlock()

	var results []model.BidResult
	var records []coremetrics.BidRecord
	for _, l := range listings {
		if !l.Status.Open() {
			continue
		}
		listingsEvaluated.Inc()
		for _, r := range e.store.Rules() {
			if !r.Enabled {
				continue
			}
			now := e.clock.Now()
			if !match.Rule(l, r, now) {
				continue
			}
			res, placed := e.placeBid(l, r)
			if !placed {
				continue
			}
			results = append(results, res)
			records = append(records, coremetrics.BidRecord{
				RuleID:        r.ID,
				RuleName:      r.Name,
				Strategy:      r.Strategy,
				EnergyBlockID: l.ID,
				EnergyType:    l.Type,
				Amount:        res.Amount,
				Price:         res.Price,
				Success:       res.Success,
				PlacedAt:      res.Timestamp,
			})
		}
	}
	if len(records) > 0 {
		if err := e.sink.RecordBidResults(records); err != nil {
			e.log.Errorf("bid metrics error: %v", err)
		}
	}
	return results
}

// placeBid prices the match and constructs the bid result. The second return
// value is false when the match is rejected by the daily budget, which
// produces no result at all.
func (e *Engine) placeBid(l model.EnergyBlock, r model.AutoBidRule) (model.BidResult, bool) {
	now := e.clock.Now()
	price, err := e.bidPrice(l, r)
	if err == nil && price <= 0 {
		err = fmt.Errorf("engine: non-positive bid price %.4f", price)
	}
	if err != nil {
		bidsFailed.Inc()
		e.log.Warnf("bid construction failed for listing %s rule %s: %v", l.ID, r.ID, err)
		e.publish(events.BidFailedEvent{RuleID: r.ID, EnergyBlockID: l.ID, Err: err})
		return model.BidResult{
			Success:       false,
			RuleID:        r.ID,
			EnergyBlockID: l.ID,
			Timestamp:     now,
			Error:         err.Error(),
		}, true
	}

	amount := r.Conditions.MinEnergy
	if l.Available < amount {
		amount = l.Available
	}
	cost := amount * price
	if !e.budget.allows(r.ID, r.Limits.DailyBudget, cost, now) {
		budgetRejections.Inc()
		e.log.Debugw("daily budget reached", map[string]any{
			"rule":   r.ID,
			"budget": r.Limits.DailyBudget,
			"spent":  e.budget.spentToday(r.ID, now),
		})
		return model.BidResult{}, false
	}

	res := model.BidResult{
		Success:       true,
		BidID:         uuid.NewString(),
		RuleID:        r.ID,
		EnergyBlockID: l.ID,
		Amount:        amount,
		Price:         price,
		Timestamp:     now,
	}
	e.budget.record(r.ID, cost, now)
	e.store.MarkRuleTriggered(r.ID, now)
	bidsPlaced.WithLabelValues(string(r.Strategy)).Inc()
	e.log.Infof("placed bid %.3f $/kWh for %.1f MWh on %s (rule %s)", price, amount, l.ID, r.Name)
	e.publish(events.BidPlacedEvent{RuleID: r.ID, RuleName: r.Name, Strategy: r.Strategy, Result: res})
	e.alerts.BidPlaced(l, res)
	return res, true
}

// Stats summarizes the engine state for the UI layer.
type Stats struct {
	ActiveRules     int      `json:"active_rules"`
	TotalRules      int      `json:"total_rules"`
	ActiveAlerts    int      `json:"active_alerts"`
	TotalAlerts     int      `json:"total_alerts"`
	EngineRunning   bool     `json:"engine_running"`
	MarketDataTypes []string `json:"market_data_types"`
}

// Stats returns a snapshot of rule, alert and market coverage counts.
func (e *Engine) Stats() Stats {
	rules := e.store.Rules()
	alerts := e.store.Alerts()
	st := Stats{
		TotalRules:      len(rules),
		TotalAlerts:     len(alerts),
		EngineRunning:   e.IsRunning(),
		MarketDataTypes: e.analytics.Types(),
	}
	for _, r := range rules {
		if r.Enabled {
			st.ActiveRules++
		}
	}
	for _, a := range alerts {
		if a.Enabled {
			st.ActiveAlerts++
		}
	}
	return st
}

func (e *Engine) publish(ev eventbus.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

package engine

import (
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gridpool/autobid/core/alert"
	"github.com/gridpool/autobid/core/analytics"
	"github.com/gridpool/autobid/core/clock"
	coremetrics "github.com/gridpool/autobid/core/metrics"
	"github.com/gridpool/autobid/core/model"
	"github.com/gridpool/autobid/core/store"
	"github.com/gridpool/autobid/infra/kv"
)

type captureNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
}

func (c *captureNotifier) Notify(title, body string) {
	c.mu.Lock()
	c.titles = append(c.titles, title)
	c.bodies = append(c.bodies, body)
	c.mu.Unlock()
}

type captureSink struct {
	mu      sync.Mutex
	records []coremetrics.BidRecord
}

func (c *captureSink) RecordBidResults(records []coremetrics.BidRecord) error {
	c.mu.Lock()
	c.records = append(c.records, records...)
	c.mu.Unlock()
	return nil
}

type harness struct {
	engine   *Engine
	store    *store.Store
	clock    *clock.Fake
	notifier *captureNotifier
	sink     *captureSink
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	st, err := store.New(kv.NewMemory(), clk, nil)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	notifier := &captureNotifier{}
	dispatcher, err := alert.New(st, notifier, nil, nil, clk, nil)
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	sink := &captureSink{}
	eng, err := New(st, analytics.New(), dispatcher, sink, nil, clk, nil)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return &harness{engine: eng, store: st, clock: clk, notifier: notifier, sink: sink}
}

func addRule(t *testing.T, st *store.Store, mutate func(*model.AutoBidRule)) model.AutoBidRule {
	t.Helper()
	r := model.AutoBidRule{
		Name:     "solar buyer",
		Enabled:  true,
		Strategy: model.StrategyBalanced,
		Conditions: model.RuleConditions{
			MaxPrice:    0.030,
			MinEnergy:   10,
			EnergyTypes: []string{"Solar"},
		},
		Actions: model.RuleActions{BidIncrement: 0.002, BidTiming: model.TimingImmediate},
		Limits:  model.RuleLimits{DailyBudget: 500, MaxBidsPerHour: 6},
	}
	if mutate != nil {
		mutate(&r)
	}
	added, err := st.AddRule(r)
	if err != nil {
		t.Fatalf("add rule: %v", err)
	}
	return added
}

func solarListing() model.EnergyBlock {
	return model.EnergyBlock{
		ID:        "blk-1",
		Location:  "Gisborne",
		Type:      "Solar",
		Available: 15,
		Price:     0.025,
		Status:    model.StatusAvailable,
	}
}

func TestStoppedEngineDoesNothing(t *testing.T) {
	h := newHarness(t)
	addRule(t, h.store, nil)

	if res := h.engine.EvaluateListings([]model.EnergyBlock{solarListing()}); res != nil {
		t.Fatalf("stopped engine must return nil, got %+v", res)
	}
	if got := h.store.Rules()[0].LastTriggered; got != nil {
		t.Fatalf("stopped engine must not touch rules")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	h := newHarness(t)
	h.engine.Start()
	h.engine.Start()
	if !h.engine.IsRunning() {
		t.Fatalf("expected running after Start")
	}
	h.engine.Stop()
	h.engine.Stop()
	if h.engine.IsRunning() {
		t.Fatalf("expected stopped after Stop")
	}
}

func TestBalancedBid(t *testing.T) {
	h := newHarness(t)
	rule := addRule(t, h.store, nil)
	h.engine.Start()

	res := h.engine.EvaluateListings([]model.EnergyBlock{solarListing()})
	if len(res) != 1 {
		t.Fatalf("expected one bid, got %d", len(res))
	}
	bid := res[0]
	if !bid.Success {
		t.Fatalf("bid failed: %s", bid.Error)
	}
	if math.Abs(bid.Price-0.027) > 1e-9 {
		t.Fatalf("balanced price: got %v want 0.027", bid.Price)
	}
	if bid.Amount != 10 {
		t.Fatalf("amount: got %v want the rule's minimum of 10", bid.Amount)
	}
	if bid.RuleID != rule.ID || bid.EnergyBlockID != "blk-1" {
		t.Fatalf("bid identity: %+v", bid)
	}
	if bid.BidID == "" {
		t.Fatalf("expected generated bid id")
	}
	if got := h.store.Rules()[0].LastTriggered; got == nil || !got.Equal(h.clock.Now()) {
		t.Fatalf("LastTriggered not stamped: %v", got)
	}
	if len(h.sink.records) != 1 || h.sink.records[0].Strategy != model.StrategyBalanced {
		t.Fatalf("metrics records: %+v", h.sink.records)
	}
}

func TestStrategyPricing(t *testing.T) {
	cases := []struct {
		strategy model.Strategy
		want     float64
	}{
		{model.StrategyConservative, 0.026},
		{model.StrategyBalanced, 0.027},
		{model.StrategyAggressive, 0.028},
	}
	for _, c := range cases {
		h := newHarness(t)
		addRule(t, h.store, func(r *model.AutoBidRule) { r.Strategy = c.strategy })
		h.engine.Start()
		res := h.engine.EvaluateListings([]model.EnergyBlock{solarListing()})
		if len(res) != 1 {
			t.Fatalf("%s: expected one bid", c.strategy)
		}
		if math.Abs(res[0].Price-c.want) > 1e-9 {
			t.Fatalf("%s price: got %v want %v", c.strategy, res[0].Price, c.want)
		}
	}
}

func TestCustomStrategyFollowsAnalytics(t *testing.T) {
	h := newHarness(t)
	addRule(t, h.store, func(r *model.AutoBidRule) {
		r.Strategy = model.StrategyCustom
		r.Conditions.MaxPrice = 0.05
	})
	h.engine.Start()

	// no snapshot yet: falls back to the balanced formula
	res := h.engine.EvaluateListings([]model.EnergyBlock{solarListing()})
	if len(res) != 1 || math.Abs(res[0].Price-0.027) > 1e-9 {
		t.Fatalf("fallback price: %+v", res)
	}

	h.clock.Advance(time.Hour)
	batch := []model.EnergyBlock{
		{ID: "a", Type: "Solar", Price: 0.02, Available: 15, Status: model.StatusAvailable},
		{ID: "b", Type: "Solar", Price: 0.04, Available: 15, Status: model.StatusSold},
	}
	h.engine.UpdateAnalytics(batch)
	// recommended bid is avg*1.05 rounded, 0.03*1.05 = 0.0315 -> 0.032
	res = h.engine.EvaluateListings([]model.EnergyBlock{solarListing()})
	if len(res) != 1 || math.Abs(res[0].Price-0.032) > 1e-9 {
		t.Fatalf("analytics-driven price: %+v", res)
	}
}

func TestPriceCeiling(t *testing.T) {
	h := newHarness(t)
	addRule(t, h.store, func(r *model.AutoBidRule) {
		r.Strategy = model.StrategyAggressive
		r.Conditions.MaxPrice = 0.026
	})
	h.engine.Start()

	l := solarListing()
	l.Price = 0.0255
	res := h.engine.EvaluateListings([]model.EnergyBlock{l})
	if len(res) != 1 {
		t.Fatalf("expected one bid")
	}
	if res[0].Price != 0.026 {
		t.Fatalf("expected clamp to ceiling 0.026, got %v", res[0].Price)
	}
}

func TestClosedListingsSkipped(t *testing.T) {
	h := newHarness(t)
	addRule(t, h.store, nil)
	h.engine.Start()

	l := solarListing()
	l.Status = model.StatusSold
	if res := h.engine.EvaluateListings([]model.EnergyBlock{l}); len(res) != 0 {
		t.Fatalf("sold listing must not be bid on, got %+v", res)
	}
}

func TestDisabledRulesSkipped(t *testing.T) {
	h := newHarness(t)
	addRule(t, h.store, func(r *model.AutoBidRule) { r.Enabled = false })
	h.engine.Start()

	if res := h.engine.EvaluateListings([]model.EnergyBlock{solarListing()}); len(res) != 0 {
		t.Fatalf("disabled rule must not bid, got %+v", res)
	}
}

func TestRateLimitAcrossCycles(t *testing.T) {
	h := newHarness(t)
	addRule(t, h.store, nil) // 6 bids/hour = one per 10 minutes
	h.engine.Start()

	if res := h.engine.EvaluateListings([]model.EnergyBlock{solarListing()}); len(res) != 1 {
		t.Fatalf("first cycle: expected one bid")
	}
	h.clock.Advance(5 * time.Minute)
	if res := h.engine.EvaluateListings([]model.EnergyBlock{solarListing()}); len(res) != 0 {
		t.Fatalf("inside min interval: expected no bid, got %+v", res)
	}
	h.clock.Advance(6 * time.Minute)
	if res := h.engine.EvaluateListings([]model.EnergyBlock{solarListing()}); len(res) != 1 {
		t.Fatalf("after min interval: expected one bid")
	}
}

func TestRateLimitWithinCycle(t *testing.T) {
	h := newHarness(t)
	addRule(t, h.store, nil)
	h.engine.Start()

	a := solarListing()
	b := solarListing()
	b.ID = "blk-2"
	res := h.engine.EvaluateListings([]model.EnergyBlock{a, b})
	if len(res) != 1 {
		t.Fatalf("one rule may bid once per interval even within a cycle, got %d", len(res))
	}
}

func TestDailyBudget(t *testing.T) {
	h := newHarness(t)
	// each bid costs 10 MWh * 0.027 = 0.27; budget allows one bid, not two
	addRule(t, h.store, func(r *model.AutoBidRule) { r.Limits.DailyBudget = 0.4 })
	h.engine.Start()

	if res := h.engine.EvaluateListings([]model.EnergyBlock{solarListing()}); len(res) != 1 {
		t.Fatalf("first bid should fit the budget")
	}
	h.clock.Advance(time.Hour)
	if res := h.engine.EvaluateListings([]model.EnergyBlock{solarListing()}); len(res) != 0 {
		t.Fatalf("budget-rejected match must produce no result, got %+v", res)
	}

	// rollover at local midnight frees the budget
	h.clock.Set(time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC))
	if res := h.engine.EvaluateListings([]model.EnergyBlock{solarListing()}); len(res) != 1 {
		t.Fatalf("expected budget to reset on day change")
	}
}

func TestZeroBudgetUnlimited(t *testing.T) {
	h := newHarness(t)
	addRule(t, h.store, func(r *model.AutoBidRule) { r.Limits.DailyBudget = 0 })
	h.engine.Start()

	if res := h.engine.EvaluateListings([]model.EnergyBlock{solarListing()}); len(res) != 1 {
		t.Fatalf("zero budget must not cap spending")
	}
}

func TestBidFailureIsolated(t *testing.T) {
	h := newHarness(t)
	// a free listing prices to zero under every increment-based formula
	failing := addRule(t, h.store, func(r *model.AutoBidRule) {
		r.Name = "broken"
		r.Actions.BidIncrement = 0
		r.Conditions.MaxPrice = 0.030
	})
	addRule(t, h.store, func(r *model.AutoBidRule) { r.Name = "healthy" })
	h.engine.Start()

	free := solarListing()
	free.ID = "blk-free"
	free.Price = 0
	res := h.engine.EvaluateListings([]model.EnergyBlock{free, solarListing()})
	if len(res) != 3 {
		t.Fatalf("expected 3 results (2 on the free listing, 1 on the paid one), got %d", len(res))
	}
	var failed, placed int
	for _, r := range res {
		if r.Success {
			placed++
		} else {
			failed++
			if r.RuleID != failing.ID {
				t.Fatalf("unexpected rule failed: %+v", r)
			}
			if r.Error == "" {
				t.Fatalf("failed result missing error detail: %+v", r)
			}
		}
	}
	if failed != 1 || placed != 2 {
		t.Fatalf("failed=%d placed=%d, want 1 failed and 2 placed", failed, placed)
	}
}

func TestBidPlacedAlertFires(t *testing.T) {
	h := newHarness(t)
	addRule(t, h.store, nil)
	if _, err := h.store.AddAlert(model.PriceAlert{
		Name:          "bid watch",
		Enabled:       true,
		Type:          model.AlertBidPlaced,
		Conditions:    model.AlertConditions{EnergyTypes: []string{"Solar"}},
		Notifications: model.AlertNotifications{Browser: true},
	}); err != nil {
		t.Fatalf("add alert: %v", err)
	}
	h.engine.Start()

	h.engine.EvaluateListings([]model.EnergyBlock{solarListing()})
	if len(h.notifier.titles) != 1 || h.notifier.titles[0] != "Bid placed" {
		t.Fatalf("notifications: %v", h.notifier.titles)
	}
	if !strings.Contains(h.notifier.bodies[0], "Solar") {
		t.Fatalf("notification body: %q", h.notifier.bodies[0])
	}
	if got := h.store.Alerts()[0].TriggeredCount; got != 1 {
		t.Fatalf("trigger counter: got %d want 1", got)
	}
}

func TestCRUDPassThrough(t *testing.T) {
	h := newHarness(t)
	rule := addRule(t, h.store, nil)

	if got := h.engine.Rules(); len(got) != 1 || got[0].ID != rule.ID {
		t.Fatalf("rules via engine: %+v", got)
	}
	enabled := false
	if found, err := h.engine.UpdateRule(rule.ID, store.RulePatch{Enabled: &enabled}); !found || err != nil {
		t.Fatalf("update via engine: found=%v err=%v", found, err)
	}
	if h.engine.Rules()[0].Enabled {
		t.Fatalf("patch not applied through engine")
	}
	if !h.engine.DeleteRule(rule.ID) {
		t.Fatalf("delete via engine")
	}

	added, err := h.engine.AddAlert(model.PriceAlert{
		Name:       "engine watch",
		Enabled:    true,
		Type:       model.AlertPriceDrop,
		Conditions: model.AlertConditions{EnergyTypes: []string{"Solar"}},
	})
	if err != nil {
		t.Fatalf("add alert via engine: %v", err)
	}
	if got := h.engine.Alerts(); len(got) != 1 || got[0].ID != added.ID {
		t.Fatalf("alerts via engine: %+v", got)
	}
	if !h.engine.DeleteAlert(added.ID) {
		t.Fatalf("delete alert via engine")
	}
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	addRule(t, h.store, nil)
	addRule(t, h.store, func(r *model.AutoBidRule) { r.Enabled = false })
	if _, err := h.store.AddAlert(model.PriceAlert{
		Name:       "watch",
		Enabled:    true,
		Type:       model.AlertPriceDrop,
		Conditions: model.AlertConditions{EnergyTypes: []string{"Solar"}},
	}); err != nil {
		t.Fatalf("add alert: %v", err)
	}
	h.engine.UpdateAnalytics([]model.EnergyBlock{solarListing()})
	h.engine.Start()

	st := h.engine.Stats()
	if st.TotalRules != 2 || st.ActiveRules != 1 {
		t.Fatalf("rule counts: %+v", st)
	}
	if st.TotalAlerts != 1 || st.ActiveAlerts != 1 {
		t.Fatalf("alert counts: %+v", st)
	}
	if !st.EngineRunning {
		t.Fatalf("expected running flag")
	}
	if len(st.MarketDataTypes) != 1 || st.MarketDataTypes[0] != "Solar" {
		t.Fatalf("market types: %v", st.MarketDataTypes)
	}
}

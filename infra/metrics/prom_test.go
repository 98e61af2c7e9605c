package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/gridpool/autobid/core/metrics"
	"github.com/gridpool/autobid/core/model"
)

func TestPromSinkRecordsBids(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	records := []coremetrics.BidRecord{
		{RuleName: "solar buyer", Strategy: model.StrategyBalanced, EnergyType: "Solar", Amount: 10, Price: 0.027, Success: true, PlacedAt: time.Now()},
		{RuleName: "solar buyer", Strategy: model.StrategyBalanced, EnergyType: "Solar", Success: false, PlacedAt: time.Now()},
	}
	if err := sink.RecordBidResults(records); err != nil {
		t.Fatalf("record: %v", err)
	}

	ok := testutil.ToFloat64(sink.bids.WithLabelValues("balanced", "Solar", "true"))
	if ok != 1 {
		t.Fatalf("success counter: got %v want 1", ok)
	}
	failed := testutil.ToFloat64(sink.bids.WithLabelValues("balanced", "Solar", "false"))
	if failed != 1 {
		t.Fatalf("failure counter: got %v want 1", failed)
	}
	spend := testutil.ToFloat64(sink.spend.WithLabelValues("solar buyer"))
	if spend < 0.269 || spend > 0.271 {
		t.Fatalf("spend counter: got %v want 0.27", spend)
	}
}

func TestPromSinkRecordsAlerts(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	rec := coremetrics.AlertRecord{AlertType: model.AlertPriceDrop, EnergyType: "Solar", FiredAt: time.Now()}
	if err := sink.RecordAlertFired(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.alerts.WithLabelValues("price_drop")); got != 1 {
		t.Fatalf("alert counter: got %v want 1", got)
	}
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration must reuse collectors: %v", err)
	}
}

func TestMultiSinkFanOut(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	multi := NewMultiSink(coremetrics.NopSink{}, prom)

	records := []coremetrics.BidRecord{
		{RuleName: "r", Strategy: model.StrategyAggressive, EnergyType: "Wind", Success: true, Amount: 5, Price: 0.03},
	}
	if err := multi.RecordBidResults(records); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(prom.bids.WithLabelValues("aggressive", "Wind", "true")); got != 1 {
		t.Fatalf("fan-out counter: got %v want 1", got)
	}
}

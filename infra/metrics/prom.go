package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/gridpool/autobid/core/metrics"
)

// PromSink records bid and alert events in Prometheus metrics.
type PromSink struct {
	bids   *prometheus.CounterVec
	alerts *prometheus.CounterVec
	spend  *prometheus.CounterVec
}

// NewPromSink registers the sink metrics on the default Prometheus
// registerer. The metrics server is started separately.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	bids := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autobid_bid_events_total",
		Help: "Automated bid attempts by strategy, energy type and outcome",
	}, []string{"strategy", "energy_type", "success"})
	alerts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autobid_alert_events_total",
		Help: "Alert notifications by alert type",
	}, []string{"alert_type"})
	spend := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "autobid_bid_spend_dollars_total",
		Help: "Cumulative value of successful automated bids by rule",
	}, []string{"rule"})

	for _, c := range []**prometheus.CounterVec{&bids, &alerts, &spend} {
		if err := reg.Register(*c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				*c = are.ExistingCollector.(*prometheus.CounterVec)
			} else {
				return nil, err
			}
		}
	}
	return &PromSink{bids: bids, alerts: alerts, spend: spend}, nil
}

// RecordBidResults increments the counters for each bid attempt.
func (s *PromSink) RecordBidResults(records []coremetrics.BidRecord) error {
	for _, r := range records {
		s.bids.WithLabelValues(string(r.Strategy), r.EnergyType, strconv.FormatBool(r.Success)).Inc()
		if r.Success {
			s.spend.WithLabelValues(r.RuleName).Add(r.Amount * r.Price)
		}
	}
	return nil
}

// RecordAlertFired increments the alert counter.
func (s *PromSink) RecordAlertFired(rec coremetrics.AlertRecord) error {
	s.alerts.WithLabelValues(string(rec.AlertType)).Inc()
	return nil
}

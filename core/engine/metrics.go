package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	listingsEvaluated prometheus.Counter
	bidsPlaced        *prometheus.CounterVec
	bidsFailed        prometheus.Counter
	budgetRejections  prometheus.Counter
	engineRunning     prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, *prometheus.CounterVec, prometheus.Counter, prometheus.Counter, prometheus.Gauge) {
	evaluated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autobid_listings_evaluated_total",
			Help: "Number of listings processed by the bidding engine",
		},
	)
	placed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autobid_bids_placed_total",
			Help: "Number of successful automated bids",
		},
		[]string{"strategy"},
	)
	failed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autobid_bids_failed_total",
			Help: "Number of bid attempts that failed during construction",
		},
	)
	budget := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autobid_budget_rejections_total",
			Help: "Number of matches rejected by the daily budget cap",
		},
	)
	running := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "autobid_engine_running",
			Help: "Whether the bidding engine is running (1) or stopped (0)",
		},
	)
	return evaluated, placed, failed, budget, running
}

func init() {
	listingsEvaluated, bidsPlaced, bidsFailed, budgetRejections, engineRunning = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers engine metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(listingsEvaluated, bidsPlaced, bidsFailed, budgetRejections, engineRunning)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	listingsEvaluated, bidsPlaced, bidsFailed, budgetRejections, engineRunning = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

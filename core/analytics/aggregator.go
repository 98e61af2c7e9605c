// Package analytics derives per-energy-type market statistics from a batch of
// listings. Each update recomputes the snapshot map wholesale; there is no
// historical series, so the trend direction is a batch-local heuristic.
package analytics

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gridpool/autobid/core/model"
)

const (
	// varianceEpsilon below which a price set is considered flat.
	varianceEpsilon = 0.001
	// trendPivot splits "up" from "down" when the batch is not flat.
	trendPivot = 0.03
	// recommendedMarkup over the average price for the recommended bid.
	recommendedMarkup = 1.05
)

// Aggregator owns the derived analytics snapshots, keyed by energy type.
type Aggregator struct {
	mu        sync.RWMutex
	snapshots map[string]model.MarketAnalytics
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{snapshots: make(map[string]model.MarketAnalytics)}
}

// Update groups the listings by energy type and replaces the snapshot map with
// freshly computed statistics. Types absent from the batch drop out of the map.
func (a *Aggregator) Update(listings []model.EnergyBlock) {
	groups := make(map[string][]model.EnergyBlock)
	for _, l := range listings {
		groups[l.Type] = append(groups[l.Type], l)
	}

	next := make(map[string]model.MarketAnalytics, len(groups))
	for typ, group := range groups {
		next[typ] = compute(typ, group)
	}

	a.mu.Lock()
	a.snapshots = next
	a.mu.Unlock()
}

// Get returns the snapshot for the energy type, if one exists.
func (a *Aggregator) Get(energyType string) (model.MarketAnalytics, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.snapshots[energyType]
	return s, ok
}

// Types returns the energy types currently covered, sorted.
func (a *Aggregator) Types() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	types := make([]string, 0, len(a.snapshots))
	for t := range a.snapshots {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func compute(typ string, group []model.EnergyBlock) model.MarketAnalytics {
	prices := make([]float64, len(group))
	volume := 0.0
	bidding := 0
	for i, l := range group {
		prices[i] = l.Price
		volume += l.Available
		if l.Status == model.StatusBidding {
			bidding++
		}
	}

	avg := stat.Mean(prices, nil)
	variance := 0.0
	if len(prices) > 1 {
		variance = stat.Variance(prices, nil)
	}

	return model.MarketAnalytics{
		EnergyType:   typ,
		AveragePrice: avg,
		PriceRange: model.PriceRange{
			Min: floats.Min(prices),
			Max: floats.Max(prices),
		},
		VolumeAvailable:     volume,
		TrendDirection:      trend(avg, variance),
		CompetitionLevel:    competition(bidding, len(group)),
		RecommendedBidPrice: round3(avg * recommendedMarkup),
	}
}

func trend(avg, variance float64) model.TrendDirection {
	if variance < varianceEpsilon {
		return model.TrendStable
	}
	if avg > trendPivot {
		return model.TrendUp
	}
	return model.TrendDown
}

func competition(bidding, total int) model.CompetitionLevel {
	ratio := float64(bidding) / float64(total)
	switch {
	case ratio > 0.7:
		return model.CompetitionHigh
	case ratio > 0.3:
		return model.CompetitionMedium
	default:
		return model.CompetitionLow
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

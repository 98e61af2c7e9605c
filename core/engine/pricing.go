package engine

import (
	"fmt"

	"github.com/gridpool/autobid/core/model"
)

// bidPrice computes the price for a matched listing according to the rule's
// strategy. The result never exceeds the rule's price ceiling.
func (e *Engine) bidPrice(l model.EnergyBlock, r model.AutoBidRule) (float64, error) {
	increment := r.Actions.BidIncrement
	var price float64
	switch r.Strategy {
	case model.StrategyConservative:
		price = l.Price + 0.5*increment
	case model.StrategyAggressive:
		price = l.Price + 1.5*increment
	case model.StrategyBalanced:
		price = l.Price + increment
	case model.StrategyCustom:
		// Analytics-driven: follow the recommended bid for the listing's
		// energy type, falling back to the balanced formula when no snapshot
		// exists yet.
		if snap, ok := e.analytics.Get(l.Type); ok {
			price = snap.RecommendedBidPrice
		} else {
			price = l.Price + increment
		}
	default:
		return 0, fmt.Errorf("engine: unknown strategy %q", r.Strategy)
	}
	if price > r.Conditions.MaxPrice {
		price = r.Conditions.MaxPrice
	}
	return price, nil
}

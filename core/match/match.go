// Package match holds the pure predicates deciding whether a listing
// satisfies a rule's bidding conditions or an alert's trigger conditions.
package match

import (
	"strings"
	"time"

	"github.com/gridpool/autobid/core/model"
)

// Rule reports whether the listing satisfies every condition of the rule,
// including the minimum inter-bid interval derived from the hourly cap.
// Callers are expected to have filtered out closed listings and disabled
// rules; daily budget gating is enforced separately by the engine, which
// tracks spend.
func Rule(l model.EnergyBlock, r model.AutoBidRule, now time.Time) bool {
	if l.Price > r.Conditions.MaxPrice {
		return false
	}
	if l.Available < r.Conditions.MinEnergy {
		return false
	}
	if len(r.Conditions.EnergyTypes) > 0 && !contains(r.Conditions.EnergyTypes, l.Type) {
		return false
	}
	if len(r.Conditions.Locations) > 0 && !matchesLocation(r.Conditions.Locations, l.Location) {
		return false
	}
	if r.Conditions.BehindTheFence != nil && *r.Conditions.BehindTheFence != l.BehindTheFence {
		return false
	}
	if r.LastTriggered != nil && now.Sub(*r.LastTriggered) < r.MinBidInterval() {
		return false
	}
	return true
}

// Alert reports whether the listing satisfies the alert's trigger conditions.
// The energy type filter is mandatory for alerts.
func Alert(l model.EnergyBlock, a model.PriceAlert) bool {
	if !contains(a.Conditions.EnergyTypes, l.Type) {
		return false
	}
	if len(a.Conditions.Locations) > 0 && !matchesLocation(a.Conditions.Locations, l.Location) {
		return false
	}
	if tp := a.Conditions.TargetPrice; tp != nil {
		switch a.Type {
		case model.AlertPriceDrop:
			if l.Price >= *tp {
				return false
			}
		case model.AlertNewListing:
			if l.Price > *tp {
				return false
			}
		}
	}
	if vt := a.Conditions.VolumeThreshold; vt != nil && l.Available < *vt {
		return false
	}
	return true
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// matchesLocation applies a case-insensitive substring filter: the listing
// location must contain at least one of the filter terms.
func matchesLocation(filters []string, location string) bool {
	loc := strings.ToLower(location)
	for _, f := range filters {
		if strings.Contains(loc, strings.ToLower(f)) {
			return true
		}
	}
	return false
}

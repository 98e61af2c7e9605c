package feed

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/gridpool/autobid/core/model"
)

// SimConfig parameterizes the simulated marketplace.
type SimConfig struct {
	// Count is the number of listings per batch.
	Count int `json:"count"`
	// Seed makes the sequence deterministic when non-zero.
	Seed int64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *SimConfig) SetDefaults() {
	if c.Count <= 0 {
		c.Count = 12
	}
}

var (
	simTypes     = []string{"Solar", "Wind", "Hydro", "Biomass", "Industrial"}
	simLocations = []string{
		"Brandenburg, DE",
		"Aragon, ES",
		"Occitanie, FR",
		"North Sea, NL",
		"Piedmont, IT",
		"Silesia, PL",
	}
	simProducers = []string{
		"Helios Energy Coop",
		"NordVolt Surplus",
		"Ferrum Steelworks",
		"Westwind Partners",
		"Aqua Basin Utility",
	}
)

// SimSupplier generates plausible surplus-energy listings. It stands in for
// the marketplace API during development and in the one-shot CLI commands.
type SimSupplier struct {
	mu    sync.Mutex
	rng   *rand.Rand
	count int
	batch int
}

// NewSimSupplier creates a supplier producing cfg.Count listings per fetch.
func NewSimSupplier(cfg SimConfig) *SimSupplier {
	cfg.SetDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	return &SimSupplier{rng: rand.New(rand.NewSource(seed)), count: cfg.Count}
}

// Fetch returns a fresh batch of listings.
func (s *SimSupplier) Fetch(ctx context.Context) ([]model.EnergyBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch++
	listings := make([]model.EnergyBlock, s.count)
	for i := range listings {
		typ := simTypes[s.rng.Intn(len(simTypes))]
		status := model.StatusAvailable
		switch r := s.rng.Float64(); {
		case r < 0.25:
			status = model.StatusBidding
		case r < 0.32:
			status = model.StatusSold
		}
		listings[i] = model.EnergyBlock{
			ID:             fmt.Sprintf("blk-%04d-%02d", s.batch, i),
			Location:       simLocations[s.rng.Intn(len(simLocations))],
			Type:           typ,
			Available:      5 + s.rng.Float64()*45,
			Price:          0.015 + s.rng.Float64()*0.035,
			Status:         status,
			Producer:       simProducers[s.rng.Intn(len(simProducers))],
			BehindTheFence: typ == "Industrial" && s.rng.Float64() < 0.8,
		}
	}
	return listings, nil
}

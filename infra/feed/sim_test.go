package feed

import (
	"context"
	"testing"

	"github.com/gridpool/autobid/core/model"
)

func TestSimSupplierDeterministic(t *testing.T) {
	a := NewSimSupplier(SimConfig{Count: 10, Seed: 7})
	b := NewSimSupplier(SimConfig{Count: 10, Seed: 7})

	ba, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	bb, err := b.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(ba) != 10 || len(bb) != 10 {
		t.Fatalf("batch sizes: %d %d", len(ba), len(bb))
	}
	for i := range ba {
		if ba[i] != bb[i] {
			t.Fatalf("same seed must give identical listings, diverged at %d", i)
		}
	}
}

func TestSimSupplierPlausibleListings(t *testing.T) {
	s := NewSimSupplier(SimConfig{Count: 200, Seed: 1})
	batch, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for _, l := range batch {
		if l.ID == "" || l.Type == "" || l.Location == "" || l.Producer == "" {
			t.Fatalf("incomplete listing: %+v", l)
		}
		if l.Price < 0.015 || l.Price > 0.05 {
			t.Fatalf("price out of range: %v", l.Price)
		}
		if l.Available < 5 || l.Available > 50 {
			t.Fatalf("volume out of range: %v", l.Available)
		}
		switch l.Status {
		case model.StatusAvailable, model.StatusBidding, model.StatusSold:
		default:
			t.Fatalf("unknown status: %s", l.Status)
		}
		if l.BehindTheFence && l.Type != "Industrial" {
			t.Fatalf("only industrial listings are behind the fence: %+v", l)
		}
	}
}

func TestSimSupplierUniqueIDsAcrossBatches(t *testing.T) {
	s := NewSimSupplier(SimConfig{Count: 5, Seed: 3})
	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		batch, err := s.Fetch(context.Background())
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		for _, l := range batch {
			if seen[l.ID] {
				t.Fatalf("duplicate listing id %s", l.ID)
			}
			seen[l.ID] = true
		}
	}
}

func TestSimSupplierCancelledContext(t *testing.T) {
	s := NewSimSupplier(SimConfig{Count: 5, Seed: 3})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Fetch(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestFeedModeSelection(t *testing.T) {
	if _, err := New(Config{Mode: "sim"}, nil); err != nil {
		t.Fatalf("sim mode: %v", err)
	}
	if _, err := New(Config{Mode: "websocket"}, nil); err == nil {
		t.Fatalf("websocket mode requires a url")
	}
	if _, err := New(Config{Mode: "smoke-signal"}, nil); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}

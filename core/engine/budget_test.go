package engine

import (
	"testing"
	"time"
)

func TestBudgetLedgerCap(t *testing.T) {
	b := newBudgetLedger()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if !b.allows("r1", 100, 60, now) {
		t.Fatalf("first spend within budget must be allowed")
	}
	b.record("r1", 60, now)
	if b.allows("r1", 100, 60, now) {
		t.Fatalf("spend pushing the total over budget must be rejected")
	}
	if !b.allows("r1", 100, 40, now) {
		t.Fatalf("spend landing exactly on the budget must be allowed")
	}
}

func TestBudgetLedgerPerRule(t *testing.T) {
	b := newBudgetLedger()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b.record("r1", 90, now)

	if !b.allows("r2", 100, 90, now) {
		t.Fatalf("budgets are tracked per rule")
	}
	if got := b.spentToday("r2", now); got != 0 {
		t.Fatalf("r2 spend: got %v want 0", got)
	}
}

func TestBudgetLedgerMidnightRollover(t *testing.T) {
	b := newBudgetLedger()
	evening := time.Date(2026, 3, 1, 23, 50, 0, 0, time.UTC)
	b.record("r1", 95, evening)
	if b.allows("r1", 100, 10, evening) {
		t.Fatalf("expected rejection before midnight")
	}

	morning := time.Date(2026, 3, 2, 0, 5, 0, 0, time.UTC)
	if !b.allows("r1", 100, 10, morning) {
		t.Fatalf("expected the ledger to reset at the day change")
	}
	if got := b.spentToday("r1", morning); got != 0 {
		t.Fatalf("spend after rollover: got %v want 0", got)
	}
}

func TestBudgetLedgerZeroBudget(t *testing.T) {
	b := newBudgetLedger()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b.record("r1", 1e9, now)
	if !b.allows("r1", 0, 1e9, now) {
		t.Fatalf("zero budget disables the cap")
	}
}

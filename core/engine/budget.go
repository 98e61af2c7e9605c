package engine

import (
	"sync"
	"time"
)

// budgetLedger tracks per-rule spend since local midnight. The engine
// rejects any match whose bid would push the rule's running total over the
// limit.
type budgetLedger struct {
	mu    sync.Mutex
	day   time.Time
	spent map[string]float64
}

func newBudgetLedger() *budgetLedger {
	return &budgetLedger{spent: make(map[string]float64)}
}

// allows reports whether spending cost now keeps the rule within budget. A
// zero budget disables the cap.
func (b *budgetLedger) allows(ruleID string, budget, cost float64, now time.Time) bool {
	if budget <= 0 {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll(now)
	return b.spent[ruleID]+cost <= budget
}

// record adds cost to the rule's running total for the current day.
func (b *budgetLedger) record(ruleID string, cost float64, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll(now)
	b.spent[ruleID] += cost
}

// spentToday returns the rule's running total.
func (b *budgetLedger) spentToday(ruleID string, now time.Time) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roll(now)
	return b.spent[ruleID]
}

// roll resets the ledger when the local calendar day changes. Callers hold
// the lock.
func (b *budgetLedger) roll(now time.Time) {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if !day.Equal(b.day) {
		b.day = day
		b.spent = make(map[string]float64)
	}
}

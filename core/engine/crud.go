package engine

import (
	"github.com/gridpool/autobid/core/model"
	"github.com/gridpool/autobid/core/store"
)

// CRUD pass-throughs so callers can manage rules and alerts through the
// engine handle without reaching into the store.

func (e *Engine) AddRule(r model.AutoBidRule) (model.AutoBidRule, error) {
	return e.store.AddRule(r)
}

func (e *Engine) UpdateRule(id string, p store.RulePatch) (bool, error) {
	return e.store.UpdateRule(id, p)
}

func (e *Engine) DeleteRule(id string) bool {
	return e.store.DeleteRule(id)
}

func (e *Engine) Rules() []model.AutoBidRule {
	return e.store.Rules()
}

func (e *Engine) AddAlert(a model.PriceAlert) (model.PriceAlert, error) {
	return e.store.AddAlert(a)
}

func (e *Engine) UpdateAlert(id string, p store.AlertPatch) (bool, error) {
	return e.store.UpdateAlert(id, p)
}

func (e *Engine) DeleteAlert(id string) bool {
	return e.store.DeleteAlert(id)
}

func (e *Engine) Alerts() []model.PriceAlert {
	return e.store.Alerts()
}

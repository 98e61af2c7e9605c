// Package store owns the rule and alert collections. All mutations validate
// their input, then persist both collections best-effort to the key-value
// adapter: a failed save is logged and the in-memory mutation stands.
package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gridpool/autobid/core/clock"
	"github.com/gridpool/autobid/core/logger"
	"github.com/gridpool/autobid/core/model"
)

// Fixed persistence keys for the two serialized collections.
const (
	rulesKey  = "autobid.rules"
	alertsKey = "autobid.alerts"
)

// KV is the persistence contract required by the store. infra/kv provides
// memory, file and sqlite implementations.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Durable() bool
}

// Store holds rules and alerts in insertion order, guarded for concurrent use
// by the engine, the alert dispatcher and the API surface.
type Store struct {
	mu       sync.RWMutex
	kv       KV
	clock    clock.Clock
	log      logger.Logger
	validate *validator.Validate
	rules    []model.AutoBidRule
	alerts   []model.PriceAlert
}

// New loads the persisted collections from kv. Missing or corrupt data
// degrades to empty collections. If both collections are empty and the
// backend is durable, the store seeds one demonstration rule per strategy and
// one alert per alert type so a first run starts populated.
func New(kvs KV, clk clock.Clock, log logger.Logger) (*Store, error) {
	if kvs == nil {
		return nil, fmt.Errorf("store: nil kv adapter")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	s := &Store{
		kv:       kvs,
		clock:    clk,
		log:      log,
		validate: validator.New(),
	}
	s.load()
	if len(s.rules) == 0 && len(s.alerts) == 0 && kvs.Durable() {
		s.seed()
	}
	return s, nil
}

// AddRule validates the rule, assigns a fresh id and creation timestamp and
// appends it to the collection.
func (s *Store) AddRule(r model.AutoBidRule) (model.AutoBidRule, error) {
	if err := s.checkRule(r); err != nil {
		return model.AutoBidRule{}, err
	}
	r.ID = uuid.NewString()
	r.CreatedAt = s.clock.Now()
	r.LastTriggered = nil

	s.mu.Lock()
	s.rules = append(s.rules, r)
	s.persistRules()
	s.mu.Unlock()
	return r, nil
}

// RulePatch carries the fields of a partial rule update. Nil fields are left
// untouched.
type RulePatch struct {
	Name       *string
	Enabled    *bool
	Strategy   *model.Strategy
	Conditions *model.RuleConditions
	Actions    *model.RuleActions
	Limits     *model.RuleLimits
}

// UpdateRule merges the patch into the stored rule. It reports whether the
// rule was found; a patch producing an invalid rule is rejected without
// modifying the store.
func (s *Store) UpdateRule(id string, p RulePatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID != id {
			continue
		}
		merged := s.rules[i]
		if p.Name != nil {
			merged.Name = *p.Name
		}
		if p.Enabled != nil {
			merged.Enabled = *p.Enabled
		}
		if p.Strategy != nil {
			merged.Strategy = *p.Strategy
		}
		if p.Conditions != nil {
			merged.Conditions = *p.Conditions
		}
		if p.Actions != nil {
			merged.Actions = *p.Actions
		}
		if p.Limits != nil {
			merged.Limits = *p.Limits
		}
		if err := s.checkRule(merged); err != nil {
			return true, err
		}
		s.rules[i] = merged
		s.persistRules()
		return true, nil
	}
	return false, nil
}

// DeleteRule removes the rule by id and reports whether a removal occurred.
func (s *Store) DeleteRule(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			s.persistRules()
			return true
		}
	}
	return false
}

// Rules returns a copy of the rule collection in insertion order.
func (s *Store) Rules() []model.AutoBidRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.AutoBidRule(nil), s.rules...)
}

// MarkRuleTriggered records a successful match-and-bid for rate limiting.
func (s *Store) MarkRuleTriggered(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == id {
			t := at
			s.rules[i].LastTriggered = &t
			s.persistRules()
			return
		}
	}
}

// AddAlert validates the alert and appends it with a fresh id, zeroed trigger
// counter and creation timestamp.
func (s *Store) AddAlert(a model.PriceAlert) (model.PriceAlert, error) {
	if err := s.checkAlert(a); err != nil {
		return model.PriceAlert{}, err
	}
	a.ID = uuid.NewString()
	a.CreatedAt = s.clock.Now()
	a.TriggeredCount = 0
	a.LastTriggered = nil

	s.mu.Lock()
	s.alerts = append(s.alerts, a)
	s.persistAlerts()
	s.mu.Unlock()
	return a, nil
}

// AlertPatch carries the fields of a partial alert update.
type AlertPatch struct {
	Name          *string
	Enabled       *bool
	Type          *model.AlertType
	Conditions    *model.AlertConditions
	Notifications *model.AlertNotifications
}

// UpdateAlert merges the patch into the stored alert. The trigger counter and
// timestamps are not patchable.
func (s *Store) UpdateAlert(id string, p AlertPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID != id {
			continue
		}
		merged := s.alerts[i]
		if p.Name != nil {
			merged.Name = *p.Name
		}
		if p.Enabled != nil {
			merged.Enabled = *p.Enabled
		}
		if p.Type != nil {
			merged.Type = *p.Type
		}
		if p.Conditions != nil {
			merged.Conditions = *p.Conditions
		}
		if p.Notifications != nil {
			merged.Notifications = *p.Notifications
		}
		if err := s.checkAlert(merged); err != nil {
			return true, err
		}
		s.alerts[i] = merged
		s.persistAlerts()
		return true, nil
	}
	return false, nil
}

// DeleteAlert removes the alert by id and reports whether a removal occurred.
func (s *Store) DeleteAlert(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			s.persistAlerts()
			return true
		}
	}
	return false
}

// Alerts returns a copy of the alert collection in insertion order.
func (s *Store) Alerts() []model.PriceAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.PriceAlert(nil), s.alerts...)
}

// MarkAlertTriggered increments the trigger counter by one and stamps the
// trigger time. The counter never decreases.
func (s *Store) MarkAlertTriggered(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			t := at
			s.alerts[i].TriggeredCount++
			s.alerts[i].LastTriggered = &t
			s.persistAlerts()
			return
		}
	}
}

func (s *Store) checkRule(r model.AutoBidRule) error {
	if err := s.validate.Struct(r); err != nil {
		return fmt.Errorf("store: invalid rule: %w", err)
	}
	return nil
}

func (s *Store) checkAlert(a model.PriceAlert) error {
	if err := s.validate.Struct(a); err != nil {
		return fmt.Errorf("store: invalid alert: %w", err)
	}
	return nil
}

func (s *Store) load() {
	if raw, ok, err := s.kv.Get(rulesKey); err != nil {
		s.log.Warnf("load rules: %v", err)
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &s.rules); err != nil {
			s.log.Warnf("corrupt rule collection discarded: %v", err)
			s.rules = nil
		}
	}
	if raw, ok, err := s.kv.Get(alertsKey); err != nil {
		s.log.Warnf("load alerts: %v", err)
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &s.alerts); err != nil {
			s.log.Warnf("corrupt alert collection discarded: %v", err)
			s.alerts = nil
		}
	}
}

// persistRules serializes the rule collection. Callers hold the lock. Save
// failures are logged; the in-memory state is authoritative.
func (s *Store) persistRules() {
	b, err := json.Marshal(s.rules)
	if err != nil {
		s.log.Errorf("marshal rules: %v", err)
		return
	}
	if err := s.kv.Set(rulesKey, string(b)); err != nil {
		s.log.Errorf("persist rules: %v", err)
	}
}

func (s *Store) persistAlerts() {
	b, err := json.Marshal(s.alerts)
	if err != nil {
		s.log.Errorf("marshal alerts: %v", err)
		return
	}
	if err := s.kv.Set(alertsKey, string(b)); err != nil {
		s.log.Errorf("persist alerts: %v", err)
	}
}

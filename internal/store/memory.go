package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/breardon2011/mitigationDB/internal/core"
)

// InMemoryRuleStore keeps rules in memory. Used in tests and for
// configurations that load all rules from a file or inline config.
type InMemoryRuleStore struct {
	mu     sync.RWMutex
	nextID int64
	rules  map[int64]core.Rule
}

func NewInMemoryRuleStore() *InMemoryRuleStore {
	return &InMemoryRuleStore{
		nextID: 1,
		rules:  make(map[int64]core.Rule),
	}
}

func (s *InMemoryRuleStore) Create(_ context.Context, rule *core.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rule.ID = s.nextID
	s.nextID++
	rule.CreatedAt = now
	rule.UpdatedAt = now
	if rule.EffectiveDate.IsZero() {
		rule.EffectiveDate = now
	}

	s.rules[rule.ID] = *rule
	return nil
}

func (s *InMemoryRuleStore) Get(_ context.Context, id int64) (*core.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.rules[id]
	if !ok {
		return nil, core.ErrRuleNotFound
	}
	return &rule, nil
}

func (s *InMemoryRuleStore) Update(_ context.Context, rule *core.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rules[rule.ID]
	if !ok {
		return core.ErrRuleNotFound
	}
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = time.Now().UTC()

	s.rules[rule.ID] = *rule
	return nil
}

func (s *InMemoryRuleStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[id]; !ok {
		return core.ErrRuleNotFound
	}
	delete(s.rules, id)
	return nil
}

func (s *InMemoryRuleStore) List(_ context.Context) ([]core.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedLocked(func(core.Rule) bool { return true }), nil
}

func (s *InMemoryRuleStore) ListActive(_ context.Context, asOf time.Time) ([]core.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedLocked(func(r core.Rule) bool { return r.ActiveAt(asOf) }), nil
}

func (s *InMemoryRuleStore) UpsertByName(ctx context.Context, rule core.Rule) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.rules {
		if existing.Name != rule.Name {
			continue
		}
		rule.ID = id
		rule.CreatedAt = existing.CreatedAt
		rule.UpdatedAt = time.Now().UTC()
		if rule.EffectiveDate.IsZero() {
			rule.EffectiveDate = existing.EffectiveDate
		}
		s.rules[id] = rule
		return false, nil
	}

	now := time.Now().UTC()
	rule.ID = s.nextID
	s.nextID++
	rule.CreatedAt = now
	rule.UpdatedAt = now
	if rule.EffectiveDate.IsZero() {
		rule.EffectiveDate = now
	}
	s.rules[rule.ID] = rule
	return true, nil
}

func (s *InMemoryRuleStore) Close() error {
	return nil
}

// sortedLocked returns matching rules ordered by ID. Callers must hold the
// lock.
func (s *InMemoryRuleStore) sortedLocked(keep func(core.Rule) bool) []core.Rule {
	out := make([]core.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		if keep(r) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b core.Rule) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

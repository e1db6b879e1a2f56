package store

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"mercator-hq/ruler/pkg/rulebook"
)

// Registry is thread-safe in-memory storage for loaded rules. Updates
// replace the whole rule set atomically so readers never observe a
// half-loaded state.
type Registry struct {
	mu       sync.RWMutex
	rules    map[string]*rulebook.Rule
	version  string
	loadTime time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rules:    make(map[string]*rulebook.Rule),
		loadTime: time.Now(),
	}
}

// Get retrieves a rule by clause ID.
func (r *Registry) Get(clauseID string) (*rulebook.Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[clauseID]
	return rule, ok
}

// Has reports whether the registry contains the clause.
func (r *Registry) Has(clauseID string) bool {
	_, ok := r.Get(clauseID)
	return ok
}

// All returns every rule sorted by clause ID. The slice is a copy.
func (r *Registry) All() []*rulebook.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rules))
	for id := range r.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rules := make([]*rulebook.Rule, 0, len(ids))
	for _, id := range ids {
		rules = append(rules, r.rules[id])
	}
	return rules
}

// ClauseIDs returns a sorted list of loaded clause IDs.
func (r *Registry) ClauseIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rules))
	for id := range r.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of loaded rules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Replace atomically swaps in a new rule set. Rules without a clause ID
// or with duplicate clause IDs are rejected before the swap.
func (r *Registry) Replace(rules []*rulebook.Rule) error {
	next := make(map[string]*rulebook.Rule, len(rules))
	for _, rule := range rules {
		if rule == nil {
			return fmt.Errorf("rule cannot be nil")
		}
		if rule.ClauseID == "" {
			return fmt.Errorf("rule clause_id cannot be empty")
		}
		if _, dup := next[rule.ClauseID]; dup {
			return fmt.Errorf("duplicate clause_id %q", rule.ClauseID)
		}
		next[rule.ClauseID] = rule
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = next
	r.loadTime = time.Now()
	r.version = versionHash(next)
	return nil
}

// Version returns a hash of the loaded rule set. It changes whenever the
// rules are replaced with different content.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadTime returns when the rule set was last replaced.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadTime
}

func versionHash(rules map[string]*rulebook.Rule) string {
	ids := make([]string, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		rule := rules[id]
		h.Write([]byte(rule.ClauseID))
		h.Write([]byte(rule.SourceFile))
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

package rules

import (
	"sync"
)

// Collection is a host owned set of rules which may change between firings.
// Snapshot is called afresh every time the collection is fired.
type Collection interface {
	Snapshot() []Rule
}

// Static is an immutable Collection.
type Static []Rule

func (s Static) Snapshot() []Rule {
	out := make([]Rule, len(s))
	copy(out, s)
	return out
}

// LiveCollection is a Collection which may be mutated concurrently with firings.
type LiveCollection struct {
	mu    sync.RWMutex
	rules []Rule
}

func NewLiveCollection(rules ...Rule) *LiveCollection {
	return &LiveCollection{
		rules: append([]Rule{}, rules...),
	}
}

func (c *LiveCollection) Add(rule Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = append(c.rules, rule)
}

// Remove drops every rule with the description of rule.
func (c *LiveCollection) Remove(rule Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	description := rule.Description()
	out := c.rules[:0]
	for _, r := range c.rules {
		if r.Description() != description {
			out = append(out, r)
		}
	}
	c.rules = out
}

func (c *LiveCollection) Snapshot() []Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

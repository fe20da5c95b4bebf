package rules

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

var ErrDuplicateDescription = errors.New("rule description already registered")

// Registry holds the rules a host has made available, in registration order.
// It is safe for concurrent use.
type Registry struct {
	mu            sync.RWMutex
	rules         []Rule
	byDescription map[string]Rule
}

func NewRegistry() *Registry {
	return &Registry{
		byDescription: make(map[string]Rule),
	}
}

// Register adds a rule. Registering the same rule twice is a no-op,
// registering a different rule under an existing description is an error.
// Rules of a type which can't be compared are the same if their description and type match.
func (r *Registry) Register(rule Rule) error {
	if rule == nil {
		return errors.New("nil rule")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	description := rule.Description()
	if existing, ok := r.byDescription[description]; ok {
		if sameRule(existing, rule) {
			return nil
		}
		return errors.Wrapf(ErrDuplicateDescription, "%q", description)
	}
	r.byDescription[description] = rule
	r.rules = append(r.rules, rule)
	return nil
}

func sameRule(a, b Rule) bool {
	typ := reflect.TypeOf(a)
	if typ != reflect.TypeOf(b) || a.Description() != b.Description() {
		return false
	}
	if !typ.Comparable() {
		return true
	}
	return a == b
}

func (r *Registry) MustRegister(rules ...Rule) {
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			panic(err)
		}
	}
}

// Lookup finds a rule by its description.
func (r *Registry) Lookup(description string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.byDescription[description]
	return rule, ok
}

func (r *Registry) Rules() []Rule {
	return r.filter(func(Rule) bool { return true })
}

func (r *Registry) ByClass(class Class) []Rule {
	return r.filter(func(rule Rule) bool { return rule.Class() == class })
}

// Converters returns the converter rules whose guarantee matches guaranteed.
func (r *Registry) Converters(guaranteed bool) []Rule {
	return r.filter(func(rule Rule) bool {
		converter, ok := rule.(ConverterRule)
		return ok && converter.Guaranteed() == guaranteed
	})
}

func (r *Registry) CommonSubExpr() []Rule {
	return r.filter(func(rule Rule) bool {
		_, ok := rule.(CommonSubExprRule)
		return ok
	})
}

func (r *Registry) filter(predicate func(Rule) bool) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Rule
	for _, rule := range r.rules {
		if predicate(rule) {
			out = append(out, rule)
		}
	}
	return out
}

package planner

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cube2222/hep/graph"
	"github.com/cube2222/hep/program"
	"github.com/cube2222/hep/rules"
)

// ruleSet is an ordered set of rules, keyed by description.
// The order is the order in which rules are attempted on a vertex.
type ruleSet []rules.Rule

func (s *ruleSet) add(candidates ...rules.Rule) {
candidates:
	for _, candidate := range candidates {
		for _, existing := range *s {
			if existing.Description() == candidate.Description() {
				continue candidates
			}
		}
		*s = append(*s, candidate)
	}
}

// resolve returns the rules an instruction fires, reading registries and collections as they are now.
func (e *execution) resolve(instruction program.RuleFiring) []rules.Rule {
	registry := e.planner.registry
	switch instruction := instruction.(type) {
	case program.RuleClass:
		return registry.ByClass(instruction.Class)
	case program.RuleCollection:
		return instruction.Rules.Snapshot()
	case program.RuleInstance:
		return []rules.Rule{instruction.Rule}
	case program.RuleLookup:
		rule, ok := registry.Lookup(instruction.Description)
		if !ok {
			e.logger.Debug("no rule registered for description", zap.String("description", instruction.Description))
			return nil
		}
		return []rules.Rule{rule}
	case program.ConverterRules:
		return registry.Converters(instruction.Guaranteed)
	case program.CommonRelSubExprRules:
		return registry.CommonSubExpr()
	default:
		panic("unexhaustive rule firing instruction match")
	}
}

func (e *execution) traversal(order program.MatchOrder) []graph.VertexID {
	switch order {
	case program.Arbitrary:
		return e.graph.Arbitrary()
	case program.DepthFirst:
		return e.graph.DepthFirst()
	case program.BottomUp:
		return e.graph.BottomUp()
	case program.TopDown:
		return e.graph.TopDown()
	default:
		panic("unexhaustive match order match")
	}
}

// fire applies the rule set in passes over the graph until a pass changes nothing
// or the activation's match limit is reached.
func (e *execution) fire(act *activation, index int, instruction program.Instruction, set ruleSet, sharedOnly bool) error {
	stats := FiringStats{
		Program:     act.program.ID(),
		Instruction: index,
		Name:        instruction.String(),
		Rules:       len(set),
	}
	defer func() {
		e.result.Firings = append(e.result.Firings, stats)
	}()

	if len(set) == 0 {
		return nil
	}
	failures := make(map[failureKey]*ApplicationError)

	for {
		if stats.Passes == e.planner.maxPasses {
			e.planner.metrics.ObserveNonConvergence()
			return &NonConvergenceError{
				Program:     act.program.ID(),
				Instruction: index,
				What:        firingName(instruction),
				Passes:      stats.Passes,
			}
		}
		if err := e.ctx.Err(); err != nil {
			return errors.Wrap(err, "execution interrupted")
		}

		stats.Passes++
		e.result.Passes++
		e.planner.metrics.ObservePass()

		productive := false
		for _, id := range e.traversal(act.order) {
			// Vertices rewritten earlier in this pass are gone.
			v, ok := e.graph.Vertex(id)
			if !ok {
				continue
			}
			if sharedOnly && len(e.graph.Parents(id)) < 2 {
				continue
			}

			for _, rule := range set {
				newID, applied, err := rules.Apply(e.graph, rule, id)
				if err != nil {
					e.failure(failures, rule, v, err)
					continue
				}
				if !applied {
					continue
				}

				productive = true
				stats.Applications++
				e.result.Applications++
				e.planner.metrics.ObserveApplication(rule.Description())
				e.logger.Debug("rule applied",
					zap.String("rule", rule.Description()),
					zap.Stringer("vertex", v),
					zap.Stringer("replacement", newID),
				)

				if act.limit.Reached(stats.Applications) {
					stats.LimitReached = true
					return nil
				}
				break
			}
		}

		if !productive {
			return nil
		}
	}
}

type failureKey struct {
	rule   string
	vertex graph.VertexID
}

// failure records a failed application. Repeated failures of a rule on the same vertex
// within one firing are counted on the first error instead of being recorded again.
func (e *execution) failure(failures map[failureKey]*ApplicationError, rule rules.Rule, v *graph.Vertex, err error) {
	e.planner.metrics.ObserveFailure(rule.Description())
	key := failureKey{rule: rule.Description(), vertex: v.ID()}
	if failure, ok := failures[key]; ok {
		failure.Attempts++
		return
	}

	failure := &ApplicationError{
		Rule:     rule.Description(),
		Vertex:   v.ID(),
		Kind:     v.Kind(),
		Err:      err,
		Attempts: 1,
	}
	failures[key] = failure
	e.result.Failures = append(e.result.Failures, failure)
	e.logger.Warn("rule application failed", zap.Error(failure))
}

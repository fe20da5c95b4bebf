package rules

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cube2222/hep/graph"
)

// Apply attempts rule on the vertex id.
// It returns the handle of the replacement and true if the graph was rewritten.
// A declined match returns false and no error. An error means the application failed,
// in which case the graph has not been modified.
func Apply(g *graph.Graph, rule Rule, id graph.VertexID) (graph.VertexID, bool, error) {
	v, ok := g.Vertex(id)
	if !ok {
		return 0, false, nil
	}

	call := NewCall(rule, g, v)
	var matches bool
	if err := safely(func() error {
		matches = rule.Matches(call)
		return nil
	}); err != nil {
		return 0, false, errors.Wrap(err, "predicate failed")
	}
	if !matches {
		return 0, false, nil
	}

	if err := safely(func() error { return rule.OnMatch(call) }); err != nil {
		return 0, false, err
	}

	results := call.Results()
	switch len(results) {
	case 0:
		return 0, false, nil
	case 1:
	default:
		return 0, false, errors.Wrapf(ErrMultipleResults, "got %d", len(results))
	}

	if existing, ok := results[0].Existing(); ok && existing == id {
		return 0, false, nil
	}

	newID, err := g.Substitute(id, results[0])
	if err != nil {
		return 0, false, errors.Wrap(err, "couldn't substitute replacement")
	}
	return newID, true, nil
}

// safely runs f, turning a panic into an error so a misbehaving rule can't take down the planner.
func safely(f func() error) (outErr error) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				outErr = errors.Wrap(err, "rule panicked")
				return
			}
			outErr = errors.New(fmt.Sprintf("rule panicked: %v", r))
		}
	}()
	return f()
}

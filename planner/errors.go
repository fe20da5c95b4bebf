package planner

import (
	"fmt"

	"github.com/cube2222/hep/graph"
	"github.com/cube2222/hep/program"
)

// ApplicationError describes a failed rule application.
// The graph is left as it was before the attempt.
type ApplicationError struct {
	Rule   string
	Vertex graph.VertexID
	Kind   graph.Kind
	// Err is the error of the first failed attempt.
	Err error
	// Attempts counts the failed attempts of the rule on the vertex within a single firing.
	Attempts int
}

func (e *ApplicationError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("rule %q on %s%s failed %d times: %s", e.Rule, e.Kind, e.Vertex, e.Attempts, e.Err)
	}
	return fmt.Sprintf("rule %q on %s%s: %s", e.Rule, e.Kind, e.Vertex, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// NonConvergenceError is returned when a firing or a subprogram doesn't reach a fixpoint
// within the configured number of passes. It usually means the rule set keeps undoing its own work.
type NonConvergenceError struct {
	Program     uint64
	Instruction int
	What        string
	Passes      int
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("%s at instruction %d of program %d didn't converge after %d passes", e.What, e.Instruction, e.Program, e.Passes)
}

func firingName(instruction program.Instruction) string {
	if _, ok := instruction.(program.SubProgram); ok {
		return "subprogram"
	}
	return "firing of " + instruction.String()
}

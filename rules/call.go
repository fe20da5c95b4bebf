package rules

import (
	"github.com/pkg/errors"

	"github.com/cube2222/hep/graph"
)

// ErrMultipleResults is returned when a rule offers more than one replacement,
// which would require a cost model to choose between them.
var ErrMultipleResults = errors.New("rule produced more than one replacement")

// Call is a single attempt of a rule on a vertex.
type Call struct {
	Rule   Rule
	Graph  *graph.Graph
	Vertex *graph.Vertex

	results []*graph.Expr
}

func NewCall(rule Rule, g *graph.Graph, v *graph.Vertex) *Call {
	return &Call{
		Rule:   rule,
		Graph:  g,
		Vertex: v,
	}
}

// Operand returns the i-th operand of the matched vertex.
func (c *Call) Operand(i int) *graph.Vertex {
	v, _ := c.Graph.Vertex(c.Vertex.Operand(i))
	return v
}

// OperandKind returns the kind of the i-th operand, or "" if there is no such operand.
func (c *Call) OperandKind(i int) graph.Kind {
	if i >= c.Vertex.OperandCount() {
		return ""
	}
	return c.Operand(i).Kind()
}

func (c *Call) Parents() []graph.VertexID {
	return c.Graph.Parents(c.Vertex.ID())
}

// TransformTo registers the replacement for the matched vertex.
func (c *Call) TransformTo(replacement *graph.Expr) {
	c.results = append(c.results, replacement)
}

func (c *Call) Results() []*graph.Expr {
	return c.results
}

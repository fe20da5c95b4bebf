package optimizer

import (
	"github.com/cube2222/hep/graph"
	"github.com/cube2222/hep/rules"
)

const (
	ClassFilter    rules.Class = "filter"
	ClassProject   rules.Class = "project"
	ClassConverter rules.Class = "converter"
	ClassSpool     rules.Class = "spool"
)

// onKinds matches calls whose vertex has the given kind and whose operands have the given kinds, in order.
// An empty operand kind matches any operand.
func onKinds(call *rules.Call, kind graph.Kind, operandKinds ...graph.Kind) bool {
	if call.Vertex.Kind() != kind {
		return false
	}
	if call.Vertex.OperandCount() < len(operandKinds) {
		return false
	}
	for i, operandKind := range operandKinds {
		if operandKind != "" && call.OperandKind(i) != operandKind {
			return false
		}
	}
	return true
}

package optimizer

import (
	"github.com/cube2222/hep/graph"
	"github.com/cube2222/hep/physical"
	"github.com/cube2222/hep/rules"
)

// SharedSubExprSpool puts a spool above every sub-expression used by more than one operator,
// so that it gets computed only once.
type SharedSubExprSpool struct {
	rules.Base
}

func NewSharedSubExprSpool() *SharedSubExprSpool {
	return &SharedSubExprSpool{Base: rules.NewBase("SharedSubExprSpool", ClassSpool)}
}

func (r *SharedSubExprSpool) CommonSubExpr() {}

func (r *SharedSubExprSpool) Matches(call *rules.Call) bool {
	kind := call.Vertex.Kind()
	return kind != physical.KindSpool && kind != physical.Enumerable(physical.KindSpool) && len(call.Parents()) > 1
}

func (r *SharedSubExprSpool) OnMatch(call *rules.Call) error {
	call.TransformTo(graph.NewExpr(physical.KindSpool, graph.CopyOf(call.Vertex)))
	return nil
}

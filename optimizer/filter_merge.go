package optimizer

import (
	"github.com/cube2222/hep/graph"
	"github.com/cube2222/hep/physical"
	"github.com/cube2222/hep/rules"
)

// FilterMerge combines two stacked filters into one holding the conjuncts of both.
type FilterMerge struct {
	rules.Base
}

func NewFilterMerge() *FilterMerge {
	return &FilterMerge{Base: rules.NewBase("FilterMerge", ClassFilter)}
}

func (r *FilterMerge) Matches(call *rules.Call) bool {
	return onKinds(call, physical.KindFilter, physical.KindFilter)
}

func (r *FilterMerge) OnMatch(call *rules.Call) error {
	source := call.Operand(0)
	condition := physical.MergeConjuncts(physical.Conjuncts(call.Vertex), physical.Conjuncts(source))
	call.TransformTo(physical.FilterExpr(graph.Existing(source.Operand(0)), condition))
	return nil
}

// FilterRemoveTrivial drops filters whose condition is always true.
type FilterRemoveTrivial struct {
	rules.Base
}

func NewFilterRemoveTrivial() *FilterRemoveTrivial {
	return &FilterRemoveTrivial{Base: rules.NewBase("FilterRemoveTrivial", ClassFilter)}
}

func (r *FilterRemoveTrivial) Matches(call *rules.Call) bool {
	return onKinds(call, physical.KindFilter, "") && physical.IsTrivialCondition(physical.Conjuncts(call.Vertex))
}

func (r *FilterRemoveTrivial) OnMatch(call *rules.Call) error {
	call.TransformTo(graph.Existing(call.Vertex.Operand(0)))
	return nil
}

// FilterProjectTranspose pushes a filter below a projection, so that it can meet the filters and scans beneath.
// Projections only select fields, so every field the filter uses is available below them.
type FilterProjectTranspose struct {
	rules.Base
}

func NewFilterProjectTranspose() *FilterProjectTranspose {
	return &FilterProjectTranspose{Base: rules.NewBase("FilterProjectTranspose", ClassFilter)}
}

func (r *FilterProjectTranspose) Matches(call *rules.Call) bool {
	return onKinds(call, physical.KindFilter, physical.KindProject)
}

func (r *FilterProjectTranspose) OnMatch(call *rules.Call) error {
	project := call.Operand(0)
	filter := physical.FilterExpr(graph.Existing(project.Operand(0)), physical.Conjuncts(call.Vertex))
	call.TransformTo(physical.ProjectExpr(filter, physical.Fields(project)))
	return nil
}

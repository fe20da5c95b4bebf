package optimizer

import (
	"github.com/cube2222/hep/graph"
	"github.com/cube2222/hep/physical"
	"github.com/cube2222/hep/rules"
)

// ProjectMerge collapses two stacked projections, if the outer one only selects fields the inner one provides.
type ProjectMerge struct {
	rules.Base
}

func NewProjectMerge() *ProjectMerge {
	return &ProjectMerge{Base: rules.NewBase("ProjectMerge", ClassProject)}
}

func (r *ProjectMerge) Matches(call *rules.Call) bool {
	if !onKinds(call, physical.KindProject, physical.KindProject) {
		return false
	}
	_, ok := physical.ComposeProjections(physical.Fields(call.Vertex), physical.Fields(call.Operand(0)))
	return ok
}

func (r *ProjectMerge) OnMatch(call *rules.Call) error {
	inner := call.Operand(0)
	fields, _ := physical.ComposeProjections(physical.Fields(call.Vertex), physical.Fields(inner))
	call.TransformTo(physical.ProjectExpr(graph.Existing(inner.Operand(0)), fields))
	return nil
}

// ProjectRemove drops projections which pass their input through unchanged.
type ProjectRemove struct {
	rules.Base
}

func NewProjectRemove() *ProjectRemove {
	return &ProjectRemove{Base: rules.NewBase("ProjectRemove", ClassProject)}
}

func (r *ProjectRemove) Matches(call *rules.Call) bool {
	return onKinds(call, physical.KindProject, "") && physical.IsIdentityProjection(physical.Fields(call.Vertex))
}

func (r *ProjectRemove) OnMatch(call *rules.Call) error {
	call.TransformTo(graph.Existing(call.Vertex.Operand(0)))
	return nil
}

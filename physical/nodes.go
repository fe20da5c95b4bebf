package physical

import (
	"github.com/cube2222/hep/graph"
)

// Logical operator kinds.
const (
	KindTableScan graph.Kind = "TableScan"
	KindValues    graph.Kind = "Values"
	KindFilter    graph.Kind = "Filter"
	KindProject   graph.Kind = "Project"
	KindJoin      graph.Kind = "Join"
	KindAggregate graph.Kind = "Aggregate"
	KindUnion     graph.Kind = "Union"
	KindSort      graph.Kind = "Sort"
	KindSpool     graph.Kind = "Spool"
)

// EnumerablePrefix marks kinds produced by the converter rules.
const EnumerablePrefix = "Enumerable"

// Attribute names.
const (
	AttrTable     = "table"
	AttrRows      = "rows"
	AttrCondition = "condition"
	AttrFields    = "fields"
	AttrJoinType  = "joinType"
	AttrGroup     = "group"
	AttrAggs      = "aggs"
	AttrAll       = "all"
	AttrCollation = "collation"
)

// Logical lists the kinds which have an enumerable counterpart.
var Logical = []graph.Kind{
	KindTableScan,
	KindValues,
	KindFilter,
	KindProject,
	KindJoin,
	KindAggregate,
	KindUnion,
	KindSort,
	KindSpool,
}

func Enumerable(kind graph.Kind) graph.Kind {
	return EnumerablePrefix + kind
}

func IsEnumerable(kind graph.Kind) bool {
	return len(kind) > len(EnumerablePrefix) && kind[:len(EnumerablePrefix)] == EnumerablePrefix
}

func TableScan(g *graph.Graph, table string) (graph.VertexID, error) {
	return g.Add(KindTableScan, nil, graph.Attribute{Name: AttrTable, Value: table})
}

func Values(g *graph.Graph, rows int) (graph.VertexID, error) {
	return g.Add(KindValues, nil, graph.Attribute{Name: AttrRows, Value: rows})
}

// Filter keeps the rows of input satisfying every conjunct of condition.
func Filter(g *graph.Graph, input graph.VertexID, condition ...string) (graph.VertexID, error) {
	return g.Add(KindFilter, []graph.VertexID{input}, graph.Attribute{Name: AttrCondition, Value: condition})
}

// Project selects fields of input by name. A single "*" field selects all of them.
func Project(g *graph.Graph, input graph.VertexID, fields ...string) (graph.VertexID, error) {
	return g.Add(KindProject, []graph.VertexID{input}, graph.Attribute{Name: AttrFields, Value: fields})
}

func Join(g *graph.Graph, left, right graph.VertexID, joinType string, condition ...string) (graph.VertexID, error) {
	return g.Add(KindJoin, []graph.VertexID{left, right},
		graph.Attribute{Name: AttrCondition, Value: condition},
		graph.Attribute{Name: AttrJoinType, Value: joinType},
	)
}

func Aggregate(g *graph.Graph, input graph.VertexID, group []string, aggs []string) (graph.VertexID, error) {
	return g.Add(KindAggregate, []graph.VertexID{input},
		graph.Attribute{Name: AttrGroup, Value: group},
		graph.Attribute{Name: AttrAggs, Value: aggs},
	)
}

func Union(g *graph.Graph, all bool, inputs ...graph.VertexID) (graph.VertexID, error) {
	return g.Add(KindUnion, inputs, graph.Attribute{Name: AttrAll, Value: all})
}

func Sort(g *graph.Graph, input graph.VertexID, collation ...string) (graph.VertexID, error) {
	return g.Add(KindSort, []graph.VertexID{input}, graph.Attribute{Name: AttrCollation, Value: collation})
}

// FilterExpr describes a new filter for use in rule replacements.
func FilterExpr(input *graph.Expr, condition []string) *graph.Expr {
	return graph.NewExpr(KindFilter, input).WithAttr(AttrCondition, condition)
}

// ProjectExpr describes a new projection for use in rule replacements.
func ProjectExpr(input *graph.Expr, fields []string) *graph.Expr {
	return graph.NewExpr(KindProject, input).WithAttr(AttrFields, fields)
}

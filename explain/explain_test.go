package explain

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"

	"github.com/cube2222/hep/graph"
	"github.com/cube2222/hep/physical"
	"github.com/cube2222/hep/planner"
	"github.com/cube2222/hep/program"
	"github.com/cube2222/hep/rules"
)

func must(t *testing.T) func(id graph.VertexID, err error) graph.VertexID {
	return func(id graph.VertexID, err error) graph.VertexID {
		t.Helper()
		require.NoError(t, err)
		return id
	}
}

func joinGraph(t *testing.T) *graph.Graph {
	g := graph.New()
	add := must(t)
	emp := add(physical.TableScan(g, "emp"))
	filter := add(physical.Filter(g, emp, "sal > 1000"))
	dept := add(physical.TableScan(g, "dept"))
	join := add(physical.Join(g, filter, dept, "inner", "emp.deptno = dept.deptno"))
	project := add(physical.Project(g, join, "name", "dname"))
	require.NoError(t, g.SetRoot(project))
	return g
}

func TestJSONGolden(t *testing.T) {
	out, err := JSON(joinGraph(t))
	require.NoError(t, err)

	gold := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	gold.Assert(t, "join", append(out, '\n'))
}

func parseRels(t *testing.T, out []byte) []*fastjson.Value {
	t.Helper()
	doc, err := fastjson.ParseBytes(out)
	require.NoError(t, err)
	obj, err := doc.Object()
	require.NoError(t, err)
	assert.Equal(t, 1, obj.Len())
	rels := doc.GetArray("rels")
	require.NotNil(t, rels)
	return rels
}

func TestJSONIdsArePostOrder(t *testing.T) {
	g := graph.New()
	add := must(t)
	scan := add(physical.TableScan(g, "emp"))
	left := add(physical.Filter(g, scan, "a > 1"))
	right := add(physical.Filter(g, scan, "b > 1"))
	union := add(physical.Union(g, true, left, right))
	require.NoError(t, g.SetRoot(union))

	out, err := JSON(g)
	require.NoError(t, err)
	rels := parseRels(t, out)
	require.Len(t, rels, 4)

	for i, rel := range rels {
		assert.Equal(t, strconv.Itoa(i), string(rel.GetStringBytes("id")))
		keys := make([]string, 0)
		rel.GetObject().Visit(func(key []byte, _ *fastjson.Value) {
			keys = append(keys, string(key))
		})
		assert.Equal(t, "id", keys[0])
		assert.Equal(t, "relOp", keys[1])
	}

	assert.Equal(t, "TableScan", string(rels[0].GetStringBytes("relOp")))
	assert.NotNil(t, rels[0].Get("inputs"), "leaves list an empty inputs array")
	assert.Len(t, rels[0].GetArray("inputs"), 0)

	assert.Nil(t, rels[1].Get("inputs"), "the only input is the preceding record")

	// The shared scan isn't the preceding record anymore.
	inputs := rels[2].GetArray("inputs")
	require.Len(t, inputs, 1)
	assert.Equal(t, "0", string(inputs[0].GetStringBytes()))

	inputs = rels[3].GetArray("inputs")
	require.Len(t, inputs, 2)
	assert.Equal(t, "1", string(inputs[0].GetStringBytes()))
	assert.Equal(t, "2", string(inputs[1].GetStringBytes()))
	assert.True(t, rels[3].GetBool("all"))
}

func TestJSONAttributeReferences(t *testing.T) {
	g := graph.New()
	add := must(t)
	scan := add(physical.TableScan(g, "emp"))
	sub := add(physical.TableScan(g, "dept"))
	filter := add(g.Add(physical.KindFilter, []graph.VertexID{scan},
		graph.Attribute{Name: "condition", Value: []string{"deptno IN sub"}},
		graph.Attribute{Name: "sub", Value: graph.VertexRef(sub)},
		graph.Attribute{Name: "selectivity", Value: 0.25},
	))
	require.NoError(t, g.SetRoot(filter))

	out, err := JSON(g)
	require.NoError(t, err)
	rels := parseRels(t, out)
	require.Len(t, rels, 3)

	last := rels[2]
	assert.Nil(t, last.Get("sub"))
	assert.Equal(t, 0.25, last.GetFloat64("selectivity"))
	inputs := last.GetArray("inputs")
	require.Len(t, inputs, 2)
	assert.Equal(t, "0", string(inputs[0].GetStringBytes()))
	assert.Equal(t, "1", string(inputs[1].GetStringBytes()))
}

func TestJSONRejectsReservedAttributes(t *testing.T) {
	for _, name := range []string{"id", "relOp", "inputs"} {
		t.Run(name, func(t *testing.T) {
			g := graph.New()
			scan, err := g.Add(physical.KindTableScan, nil,
				graph.Attribute{Name: "table", Value: "emp"},
				graph.Attribute{Name: name, Value: "mine"},
			)
			require.NoError(t, err)
			require.NoError(t, g.SetRoot(scan))

			_, err = JSON(g)
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestJSONWithoutRoot(t *testing.T) {
	_, err := JSON(graph.New())
	assert.Error(t, err)
}

type renameRule struct {
	rules.Base
	from, to graph.Kind
}

func (r *renameRule) Matches(call *rules.Call) bool {
	return call.Vertex.Kind() == r.from
}

func (r *renameRule) OnMatch(call *rules.Call) error {
	if r.to == "" {
		return errors.New("nowhere to go")
	}
	call.TransformTo(graph.NewExpr(r.to).WithAttr("table", call.Vertex.StringAttribute("table")))
	return nil
}

func TestFiringTable(t *testing.T) {
	g := joinGraph(t)
	prog := program.NewBuilder().
		AddRuleInstance(&renameRule{Base: rules.NewBase("scan to exchange", "rename"), from: physical.KindTableScan, to: "Exchange"}).
		AddRuleInstance(&renameRule{Base: rules.NewBase("broken", "rename"), from: physical.KindProject}).
		Build()
	result, err := planner.New(nil).Execute(context.Background(), prog, g)
	require.NoError(t, err)

	var buf bytes.Buffer
	FiringTable(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "applications")
	assert.Contains(t, out, "RuleInstance(scan to exchange)")
	assert.Contains(t, out, "RuleInstance(broken)")
	assert.Contains(t, out, "nowhere to go")
	assert.Contains(t, out, "attempts")
}

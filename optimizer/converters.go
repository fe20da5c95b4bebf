package optimizer

import (
	"fmt"
	"strings"

	"github.com/cube2222/hep/graph"
	"github.com/cube2222/hep/physical"
	"github.com/cube2222/hep/rules"
)

// Converter turns a logical operator into its enumerable counterpart.
type Converter struct {
	rules.Base
	from       graph.Kind
	guaranteed bool
	accepts    func(v *graph.Vertex) bool
}

func NewConverter(from graph.Kind) *Converter {
	out := &Converter{
		Base:       rules.NewBase(fmt.Sprintf("%sConverter", physical.Enumerable(from)), ClassConverter),
		from:       from,
		guaranteed: true,
	}
	if from == physical.KindJoin {
		// Only equi-joins have an enumerable implementation.
		out.guaranteed = false
		out.accepts = isEquiJoin
	}
	return out
}

func (r *Converter) Guaranteed() bool {
	return r.guaranteed
}

func (r *Converter) Matches(call *rules.Call) bool {
	if call.Vertex.Kind() != r.from {
		return false
	}
	return r.accepts == nil || r.accepts(call.Vertex)
}

func (r *Converter) OnMatch(call *rules.Call) error {
	call.TransformTo(graph.CopyAs(call.Vertex, physical.Enumerable(r.from)))
	return nil
}

func isEquiJoin(v *graph.Vertex) bool {
	conjuncts := physical.Conjuncts(v)
	if len(conjuncts) == 0 {
		return false
	}
	for _, conjunct := range conjuncts {
		if !strings.Contains(conjunct, "=") || strings.ContainsAny(conjunct, "<>!") {
			return false
		}
	}
	return true
}

// Converters returns a converter for every logical kind.
func Converters() []rules.Rule {
	out := make([]rules.Rule, len(physical.Logical))
	for i, kind := range physical.Logical {
		out[i] = NewConverter(kind)
	}
	return out
}

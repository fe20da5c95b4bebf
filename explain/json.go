package explain

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/cube2222/hep/graph"
)

// JSON serializes the graph reachable from its root as {"rels": [...]}.
// Vertices get sequential ids in post-order, so every input is listed before the vertices using it.
// The inputs of a vertex are omitted if they consist of just the previously listed vertex.
func JSON(g *graph.Graph) ([]byte, error) {
	if g.Root() == 0 {
		return nil, errors.New("graph has no root")
	}
	w := &jsonWriter{
		graph: g,
		arena: new(fastjson.Arena),
		ids:   make(map[graph.VertexID]string, g.Len()),
	}
	w.rels = w.arena.NewArray()
	if err := w.explain(g.Root()); err != nil {
		return nil, err
	}

	doc := w.arena.NewObject()
	doc.Set("rels", w.rels)
	return doc.MarshalTo(nil), nil
}

// reservedKeys are written by the exporter itself and can't be used as attribute names.
var reservedKeys = map[string]bool{
	"id":     true,
	"relOp":  true,
	"inputs": true,
}

type jsonWriter struct {
	graph    *graph.Graph
	arena    *fastjson.Arena
	ids      map[graph.VertexID]string
	rels     *fastjson.Value
	previous string
}

func (w *jsonWriter) explain(id graph.VertexID) error {
	v, ok := w.graph.Vertex(id)
	if !ok {
		return errors.Wrapf(graph.ErrUnknownVertex, "couldn't explain %s", id)
	}

	record := w.arena.NewObject()
	// Keeps the id as the first key, it's only known once all inputs are explained.
	record.Set("id", w.arena.NewNull())
	record.Set("relOp", w.arena.NewString(string(v.Kind())))
	for _, attr := range v.Attributes() {
		if _, ok := attr.Value.(graph.VertexRef); ok {
			continue
		}
		if reservedKeys[attr.Name] {
			return errors.Errorf("attribute %q of %s collides with a record key", attr.Name, v)
		}
		record.Set(attr.Name, w.value(attr.Value))
	}

	inputs := v.Inputs()
	inputIDs := make([]string, len(inputs))
	for i, input := range inputs {
		inputID, ok := w.ids[input]
		if !ok {
			if err := w.explain(input); err != nil {
				return err
			}
			inputID = w.previous
		}
		inputIDs[i] = inputID
	}
	if len(inputIDs) != 1 || inputIDs[0] != w.previous {
		list := w.arena.NewArray()
		for i := range inputIDs {
			list.SetArrayItem(i, w.arena.NewString(inputIDs[i]))
		}
		record.Set("inputs", list)
	}

	myID := strconv.Itoa(len(w.ids))
	w.ids[id] = myID
	record.Set("id", w.arena.NewString(myID))

	w.rels.SetArrayItem(len(w.ids)-1, record)
	w.previous = myID
	return nil
}

func (w *jsonWriter) value(value interface{}) *fastjson.Value {
	switch value := value.(type) {
	case nil:
		return w.arena.NewNull()
	case string:
		return w.arena.NewString(value)
	case bool:
		if value {
			return w.arena.NewTrue()
		}
		return w.arena.NewFalse()
	case int:
		return w.arena.NewNumberInt(value)
	case int64:
		return w.arena.NewNumberString(strconv.FormatInt(value, 10))
	case uint64:
		return w.arena.NewNumberString(strconv.FormatUint(value, 10))
	case float64:
		return w.arena.NewNumberFloat64(value)
	case []string:
		arr := w.arena.NewArray()
		for i := range value {
			arr.SetArrayItem(i, w.arena.NewString(value[i]))
		}
		return arr
	case []interface{}:
		arr := w.arena.NewArray()
		for i := range value {
			arr.SetArrayItem(i, w.value(value[i]))
		}
		return arr
	case map[string]interface{}:
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := w.arena.NewObject()
		for _, k := range keys {
			obj.Set(k, w.value(value[k]))
		}
		return obj
	case fmt.Stringer:
		return w.arena.NewString(value.String())
	default:
		return w.arena.NewString(fmt.Sprint(value))
	}
}

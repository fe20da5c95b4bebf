package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cube2222/hep/graph"
)

// PlanConfig describes an expression graph, e.g.
//
//	root: names
//	vertices:
//	  - name: emp
//	    kind: TableScan
//	    attributes:
//	      table: emp
//	  - name: names
//	    kind: Project
//	    inputs: [emp]
//	    attributes:
//	      fields: [name]
//
// Vertices may only use vertices declared before them. An attribute of the form {ref: name}
// references another vertex. The root defaults to the last vertex.
type PlanConfig struct {
	Root     string         `yaml:"root"`
	Vertices []VertexConfig `yaml:"vertices"`
}

type VertexConfig struct {
	Name   string   `yaml:"name"`
	Kind   string   `yaml:"kind"`
	Inputs []string `yaml:"inputs"`
	// Attributes is a mapping, kept as a node to preserve the order of its keys.
	Attributes yaml.Node `yaml:"attributes"`
}

func ReadPlan(path string) (*PlanConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()

	var plan PlanConfig
	if err := yaml.NewDecoder(f).Decode(&plan); err != nil {
		return nil, errors.Wrap(err, "couldn't decode yaml plan")
	}
	return &plan, nil
}

// Graph builds the described expression graph.
// It also returns the handles of the vertices by name.
func (plan *PlanConfig) Graph() (*graph.Graph, map[string]graph.VertexID, error) {
	if len(plan.Vertices) == 0 {
		return nil, nil, errors.New("plan has no vertices")
	}

	g := graph.New()
	ids := make(map[string]graph.VertexID, len(plan.Vertices))
	for i := range plan.Vertices {
		v := &plan.Vertices[i]
		if v.Name == "" {
			return nil, nil, errors.Errorf("vertex %d has no name", i)
		}
		if _, ok := ids[v.Name]; ok {
			return nil, nil, errors.Errorf("vertex '%s' declared twice", v.Name)
		}
		if v.Kind == "" {
			return nil, nil, errors.Errorf("vertex '%s' has no kind", v.Name)
		}

		inputs := make([]graph.VertexID, len(v.Inputs))
		for j, input := range v.Inputs {
			id, ok := ids[input]
			if !ok {
				return nil, nil, errors.Errorf("input '%s' of vertex '%s' isn't declared before it", input, v.Name)
			}
			inputs[j] = id
		}

		attributes, err := decodeAttributes(&v.Attributes, ids)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "couldn't decode attributes of vertex '%s'", v.Name)
		}

		id, err := g.Add(graph.Kind(v.Kind), inputs, attributes...)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "couldn't add vertex '%s'", v.Name)
		}
		ids[v.Name] = id
	}

	root := plan.Root
	if root == "" {
		root = plan.Vertices[len(plan.Vertices)-1].Name
	}
	rootID, ok := ids[root]
	if !ok {
		return nil, nil, errors.Errorf("unknown root vertex '%s'", root)
	}
	if err := g.SetRoot(rootID); err != nil {
		return nil, nil, errors.Wrap(err, "couldn't set root")
	}
	return g, ids, nil
}

func decodeAttributes(node *yaml.Node, ids map[string]graph.VertexID) ([]graph.Attribute, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.Errorf("line %d: attributes must be a mapping", node.Line)
	}

	out := make([]graph.Attribute, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		valueNode := node.Content[i+1]

		var ref struct {
			Ref string `yaml:"ref"`
		}
		if valueNode.Kind == yaml.MappingNode && valueNode.Decode(&ref) == nil && ref.Ref != "" {
			id, ok := ids[ref.Ref]
			if !ok {
				return nil, errors.Errorf("attribute '%s' references '%s' which isn't declared before it", name, ref.Ref)
			}
			out = append(out, graph.Attribute{Name: name, Value: graph.VertexRef(id)})
			continue
		}

		var value interface{}
		if err := valueNode.Decode(&value); err != nil {
			return nil, errors.Wrapf(err, "couldn't decode attribute '%s'", name)
		}
		out = append(out, graph.Attribute{Name: name, Value: normalize(value)})
	}
	return out, nil
}

// normalize turns lists of strings into []string, which is what operators expect of their attributes.
func normalize(value interface{}) interface{} {
	list, ok := value.([]interface{})
	if !ok {
		return value
	}
	strs := make([]string, len(list))
	for i := range list {
		str, ok := list[i].(string)
		if !ok {
			return value
		}
		strs[i] = str
	}
	return strs
}

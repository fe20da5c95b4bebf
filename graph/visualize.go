package graph

import (
	"fmt"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

// Show renders the graph reachable from its roots as a graphviz digraph.
// Shared vertices are drawn once, with one edge per referencing port.
func Show(g *Graph) (*gographviz.Graph, error) {
	out := gographviz.NewGraph()
	out.Directed = true
	if err := out.AddAttr("", "rankdir", "LR"); err != nil {
		return nil, errors.Wrap(err, "couldn't set graph direction")
	}
	builder := &graphBuilder{
		source:       g,
		graph:        out,
		nameCounters: make(map[string]int),
		ids:          make(map[VertexID]string),
	}

	for _, start := range g.starts() {
		if _, err := builder.getGraphNode(start); err != nil {
			return nil, err
		}
	}

	return out, nil
}

type graphBuilder struct {
	source       *Graph
	graph        *gographviz.Graph
	nameCounters map[string]int
	ids          map[VertexID]string
}

func (gb *graphBuilder) getID(name string) string {
	count := gb.nameCounters[name]
	gb.nameCounters[name]++
	return fmt.Sprintf("%s_%d", strings.Replace(name, " ", "_", -1), count)
}

func (gb *graphBuilder) getGraphNode(vertexID VertexID) (string, error) {
	if id, ok := gb.ids[vertexID]; ok {
		return id, nil
	}
	v := gb.source.vertices[vertexID]

	type child struct {
		port string
		id   VertexID
	}
	var fields []string
	var children []child
	for i, operand := range v.operands {
		children = append(children, child{port: fmt.Sprintf("input_%d", i), id: operand})
	}
	for _, attr := range v.attributes {
		if ref, ok := attr.Value.(VertexRef); ok {
			children = append(children, child{port: attr.Name, id: VertexID(ref)})
			continue
		}
		fields = append(fields, fmt.Sprintf("<%s> %s: %s", attr.Name, attr.Name, escape(fmt.Sprint(attr.Value))))
	}
	childPorts := make([]string, len(children))
	for i := range children {
		childPorts[i] = fmt.Sprintf("<%s> %s", children[i].port, children[i].port)
	}

	var labelParts []string
	labelParts = append(labelParts, fmt.Sprintf("<f0> %s", v.kind))

	if len(fields) > 0 {
		labelParts = append(labelParts, strings.Join(fields, "|"))
	}
	if len(childPorts) > 0 {
		labelParts = append(labelParts, strings.Join(childPorts, "|"))
	}

	label := fmt.Sprintf(
		"\"{{%s}}\"",
		strings.Join(labelParts, "}|{"),
	)

	id := gb.getID(string(v.kind))
	gb.ids[vertexID] = id
	err := gb.graph.AddNode("", id, map[string]string{
		"shape": "record",
		"label": label,
	})
	if err != nil {
		return "", errors.Wrapf(err, "couldn't add node for %s", v)
	}

	for _, c := range children {
		childGraphNode, err := gb.getGraphNode(c.id)
		if err != nil {
			return "", err
		}
		if err := gb.graph.AddPortEdge(id, c.port, childGraphNode, "", true, map[string]string{}); err != nil {
			return "", errors.Wrapf(err, "couldn't add edge from %s", v)
		}
	}
	return id, nil
}

var labelEscaper = strings.NewReplacer(
	`"`, `\"`,
	"{", `\{`,
	"}", `\}`,
	"|", `\|`,
	"<", `\<`,
	">", `\>`,
)

func escape(s string) string {
	return labelEscaper.Replace(s)
}

package graph

import (
	"fmt"
)

// VertexID is the handle of a vertex inside a Graph. Handles are never reused, 0 is invalid.
type VertexID uint64

func (id VertexID) String() string {
	return fmt.Sprintf("#%d", uint64(id))
}

// Kind is the operator kind tag of a vertex, e.g. "Filter".
type Kind string

// VertexRef is an attribute value referencing another vertex.
type VertexRef VertexID

type Attribute struct {
	Name  string
	Value interface{}
}

// Vertex is a single relational operator instance.
// Vertices are owned by their Graph and must not be mutated by callers.
type Vertex struct {
	id         VertexID
	kind       Kind
	operands   []VertexID
	attributes []Attribute
}

func (v *Vertex) ID() VertexID {
	return v.id
}

func (v *Vertex) Kind() Kind {
	return v.kind
}

func (v *Vertex) Operands() []VertexID {
	out := make([]VertexID, len(v.operands))
	copy(out, v.operands)
	return out
}

func (v *Vertex) Operand(i int) VertexID {
	return v.operands[i]
}

func (v *Vertex) OperandCount() int {
	return len(v.operands)
}

func (v *Vertex) Attributes() []Attribute {
	out := make([]Attribute, len(v.attributes))
	copy(out, v.attributes)
	return out
}

// Attribute returns the value of the first attribute with the given name.
func (v *Vertex) Attribute(name string) (interface{}, bool) {
	for i := range v.attributes {
		if v.attributes[i].Name == name {
			return v.attributes[i].Value, true
		}
	}
	return nil, false
}

// StringAttribute is a convenience for the common case of string-typed attributes.
func (v *Vertex) StringAttribute(name string) string {
	value, ok := v.Attribute(name)
	if !ok {
		return ""
	}
	str, _ := value.(string)
	return str
}

// Inputs returns the operands followed by the vertices referenced from attributes.
func (v *Vertex) Inputs() []VertexID {
	return v.children()
}

func (v *Vertex) children() []VertexID {
	out := make([]VertexID, 0, len(v.operands))
	out = append(out, v.operands...)
	for i := range v.attributes {
		if ref, ok := v.attributes[i].Value.(VertexRef); ok {
			out = append(out, VertexID(ref))
		}
	}
	return out
}

func (v *Vertex) replaceReferences(from, to VertexID) bool {
	changed := false
	for i := range v.operands {
		if v.operands[i] == from {
			v.operands[i] = to
			changed = true
		}
	}
	for i := range v.attributes {
		if ref, ok := v.attributes[i].Value.(VertexRef); ok && VertexID(ref) == from {
			v.attributes[i].Value = VertexRef(to)
			changed = true
		}
	}
	return changed
}

func (v *Vertex) String() string {
	return fmt.Sprintf("%s%s", v.kind, v.id)
}

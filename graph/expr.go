package graph

// Expr describes a replacement sub-graph produced by a rule.
// Leaves are either references to vertices already in the graph or new vertices.
// Attribute values of type *Expr become nested vertex references once materialized.
type Expr struct {
	ref        VertexID
	kind       Kind
	operands   []*Expr
	attributes []Attribute
}

// Existing references a vertex which is already part of the graph.
func Existing(id VertexID) *Expr {
	return &Expr{ref: id}
}

func NewExpr(kind Kind, operands ...*Expr) *Expr {
	return &Expr{
		kind:     kind,
		operands: operands,
	}
}

// CopyOf describes a fresh vertex with the same kind, operands and attributes as v.
func CopyOf(v *Vertex) *Expr {
	operands := make([]*Expr, len(v.operands))
	for i := range v.operands {
		operands[i] = Existing(v.operands[i])
	}
	attributes := make([]Attribute, len(v.attributes))
	for i, attr := range v.attributes {
		attributes[i] = attr
		if ref, ok := attr.Value.(VertexRef); ok {
			attributes[i].Value = Existing(VertexID(ref))
		}
	}
	return &Expr{
		kind:       v.kind,
		operands:   operands,
		attributes: attributes,
	}
}

// WithAttr sets the named attribute, replacing a previous value in place.
func (e *Expr) WithAttr(name string, value interface{}) *Expr {
	for i := range e.attributes {
		if e.attributes[i].Name == name {
			e.attributes[i].Value = value
			return e
		}
	}
	e.attributes = append(e.attributes, Attribute{Name: name, Value: value})
	return e
}

func (e *Expr) Existing() (VertexID, bool) {
	return e.ref, e.ref != 0
}

func (e *Expr) Kind() Kind {
	return e.kind
}

// CopyAs is CopyOf with the kind replaced.
func CopyAs(v *Vertex, kind Kind) *Expr {
	out := CopyOf(v)
	out.kind = kind
	return out
}

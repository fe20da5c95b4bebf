package graph

import (
	"github.com/google/btree"
	"github.com/pkg/errors"
)

var (
	ErrUnknownVertex = errors.New("unknown vertex")
	ErrCycle         = errors.New("rewrite would introduce a cycle")
)

// Graph is an identity-keyed DAG of relational operators.
// A Graph is not safe for concurrent use.
type Graph struct {
	vertices map[VertexID]*Vertex
	live     *btree.BTreeG[VertexID]
	root     VertexID
	lastID   VertexID
	version  uint64
}

func New() *Graph {
	return &Graph{
		vertices: make(map[VertexID]*Vertex),
		live:     btree.NewOrderedG[VertexID](16),
	}
}

// Add creates a new vertex. All operands and attribute references must already be part of the graph.
func (g *Graph) Add(kind Kind, operands []VertexID, attributes ...Attribute) (VertexID, error) {
	for _, operand := range operands {
		if !g.Contains(operand) {
			return 0, errors.Wrapf(ErrUnknownVertex, "operand %s of new %s", operand, kind)
		}
	}
	for _, attr := range attributes {
		if ref, ok := attr.Value.(VertexRef); ok && !g.Contains(VertexID(ref)) {
			return 0, errors.Wrapf(ErrUnknownVertex, "attribute %s of new %s", attr.Name, kind)
		}
	}

	ops := make([]VertexID, len(operands))
	copy(ops, operands)
	attrs := make([]Attribute, len(attributes))
	copy(attrs, attributes)

	id := g.insert(kind, ops, attrs)
	g.version++
	return id, nil
}

func (g *Graph) insert(kind Kind, operands []VertexID, attributes []Attribute) VertexID {
	g.lastID++
	v := &Vertex{
		id:         g.lastID,
		kind:       kind,
		operands:   operands,
		attributes: attributes,
	}
	g.vertices[v.id] = v
	g.live.ReplaceOrInsert(v.id)
	return v.id
}

func (g *Graph) SetRoot(id VertexID) error {
	if !g.Contains(id) {
		return errors.Wrapf(ErrUnknownVertex, "root %s", id)
	}
	g.root = id
	return nil
}

// Root returns the root vertex, or 0 if none has been set.
func (g *Graph) Root() VertexID {
	return g.root
}

func (g *Graph) Vertex(id VertexID) (*Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

func (g *Graph) Contains(id VertexID) bool {
	_, ok := g.vertices[id]
	return ok
}

func (g *Graph) Len() int {
	return len(g.vertices)
}

// Version increases on every structural mutation of the graph.
func (g *Graph) Version() uint64 {
	return g.version
}

// Vertices returns all live vertices in ascending handle order.
func (g *Graph) Vertices() []VertexID {
	out := make([]VertexID, 0, g.live.Len())
	g.live.Ascend(func(id VertexID) bool {
		out = append(out, id)
		return true
	})
	return out
}

// Parents returns the distinct vertices referencing id through an operand or an attribute.
func (g *Graph) Parents(id VertexID) []VertexID {
	var out []VertexID
	g.live.Ascend(func(candidate VertexID) bool {
		for _, child := range g.vertices[candidate].children() {
			if child == id {
				out = append(out, candidate)
				break
			}
		}
		return true
	})
	return out
}

// Reaches reports whether target is reachable from start, start included.
func (g *Graph) Reaches(start, target VertexID) bool {
	visited := make(map[VertexID]bool)
	var walk func(id VertexID) bool
	walk = func(id VertexID) bool {
		if id == target {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		v, ok := g.vertices[id]
		if !ok {
			return false
		}
		for _, child := range v.children() {
			if walk(child) {
				return true
			}
		}
		return false
	}
	return walk(start)
}

// Substitute replaces old with the vertex described by replacement.
// The replacement is fully validated before the graph is touched, so a failed
// substitution leaves the graph exactly as it was.
func (g *Graph) Substitute(old VertexID, replacement *Expr) (VertexID, error) {
	if !g.Contains(old) {
		return 0, errors.Wrapf(ErrUnknownVertex, "substituted vertex %s", old)
	}
	if replacement == nil {
		return 0, errors.New("nil replacement")
	}
	if err := g.validate(old, replacement); err != nil {
		return 0, err
	}
	if id, ok := replacement.Existing(); ok {
		if err := g.Merge(old, id); err != nil {
			return 0, err
		}
		return id, nil
	}

	newRoot := g.materialize(replacement)
	g.redirect(old, newRoot)
	g.version++
	return newRoot, nil
}

func (g *Graph) validate(old VertexID, expr *Expr) error {
	checkExisting := func(id VertexID) error {
		if !g.Contains(id) {
			return errors.Wrapf(ErrUnknownVertex, "replacement references %s", id)
		}
		if g.Reaches(id, old) {
			return errors.Wrapf(ErrCycle, "replacement references %s which reaches %s", id, old)
		}
		return nil
	}

	if id, ok := expr.Existing(); ok {
		if id == old {
			// Replacing a vertex with itself is a no-op, not a cycle.
			return nil
		}
		return checkExisting(id)
	}
	if expr.kind == "" {
		return errors.New("replacement vertex without kind")
	}
	for _, operand := range expr.operands {
		if operand == nil {
			return errors.Errorf("nil operand in replacement %s", expr.kind)
		}
		if err := g.validateNested(old, operand, checkExisting); err != nil {
			return err
		}
	}
	for _, attr := range expr.attributes {
		switch value := attr.Value.(type) {
		case *Expr:
			if err := g.validateNested(old, value, checkExisting); err != nil {
				return err
			}
		case VertexRef:
			if err := checkExisting(VertexID(value)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) validateNested(old VertexID, expr *Expr, checkExisting func(VertexID) error) error {
	if id, ok := expr.Existing(); ok {
		return checkExisting(id)
	}
	return g.validate(old, expr)
}

func (g *Graph) materialize(expr *Expr) VertexID {
	if id, ok := expr.Existing(); ok {
		return id
	}
	operands := make([]VertexID, len(expr.operands))
	for i := range expr.operands {
		operands[i] = g.materialize(expr.operands[i])
	}
	attributes := make([]Attribute, len(expr.attributes))
	for i, attr := range expr.attributes {
		attributes[i] = attr
		if nested, ok := attr.Value.(*Expr); ok {
			attributes[i].Value = VertexRef(g.materialize(nested))
		}
	}
	return g.insert(expr.kind, operands, attributes)
}

// Merge retires from, redirecting every reference to it onto into.
func (g *Graph) Merge(from, into VertexID) error {
	if !g.Contains(from) {
		return errors.Wrapf(ErrUnknownVertex, "merged vertex %s", from)
	}
	if !g.Contains(into) {
		return errors.Wrapf(ErrUnknownVertex, "merge target %s", into)
	}
	if from == into {
		return nil
	}
	if g.Reaches(into, from) {
		return errors.Wrapf(ErrCycle, "merging %s into %s", from, into)
	}
	g.redirect(from, into)
	g.version++
	return nil
}

func (g *Graph) redirect(from, to VertexID) {
	g.live.Ascend(func(id VertexID) bool {
		if id != from {
			g.vertices[id].replaceReferences(from, to)
		}
		return true
	})
	if g.root == from {
		g.root = to
	}
	g.retire(from)
	g.collectGarbage()
}

func (g *Graph) retire(id VertexID) {
	delete(g.vertices, id)
	g.live.Delete(id)
}

// collectGarbage retires every vertex no longer reachable from the root.
func (g *Graph) collectGarbage() {
	if g.root == 0 {
		return
	}
	reachable := make(map[VertexID]bool, len(g.vertices))
	var mark func(id VertexID)
	mark = func(id VertexID) {
		if reachable[id] {
			return
		}
		reachable[id] = true
		for _, child := range g.vertices[id].children() {
			mark(child)
		}
	}
	mark(g.root)

	for _, id := range g.Vertices() {
		if !reachable[id] {
			g.retire(id)
		}
	}
}

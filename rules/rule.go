package rules

// Class groups rules of the same family, e.g. all filter pushdown rules.
type Class string

// Rule is a host supplied rewrite: a predicate and a transformation over a single vertex.
type Rule interface {
	// Description uniquely identifies the rule within a Registry.
	Description() string
	Class() Class
	// Matches reports whether OnMatch should be attempted for the call's vertex.
	Matches(call *Call) bool
	// OnMatch computes the replacement and hands it to call.TransformTo.
	// Not calling TransformTo declines the match.
	OnMatch(call *Call) error
}

// ConverterRule is implemented by rules fired through converter instructions.
type ConverterRule interface {
	Rule
	Guaranteed() bool
}

// CommonSubExprRule is implemented by rules fired through common sub-expression instructions.
// Such rules are only attempted on vertices with more than one parent.
type CommonSubExprRule interface {
	Rule
	CommonSubExpr()
}

// Base carries the description and class of a rule, to be embedded by rule implementations.
type Base struct {
	description string
	class       Class
}

func NewBase(description string, class Class) Base {
	return Base{
		description: description,
		class:       class,
	}
}

func (b Base) Description() string {
	return b.description
}

func (b Base) Class() Class {
	return b.class
}

func (b Base) String() string {
	return b.description
}

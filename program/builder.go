package program

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cube2222/hep/rules"
)

var (
	ErrGroupAlreadyOpen = errors.New("group already open")
	ErrNoGroupOpen      = errors.New("no group open")
	ErrGroupNotClosed   = errors.New("group not closed")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// PreconditionError reports misuse of a Builder. Builder methods panic with it.
type PreconditionError struct {
	Op  string
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// Catch runs build and returns a PreconditionError raised inside it as an error.
// Any other panic is propagated.
func Catch(build func()) (outErr error) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(*PreconditionError); ok {
				outErr = err
				return
			}
			panic(r)
		}
	}()
	build()
	return nil
}

// openGroup records the index of the Placeholder of the group under construction.
type openGroup struct {
	start int
}

// Builder constructs Programs. The zero value is ready to use.
// After Build the Builder is empty and may be reused for an unrelated program.
type Builder struct {
	instructions []Instruction
	group        *openGroup
}

func NewBuilder() *Builder {
	return &Builder{}
}

func fail(op string, err error) {
	panic(&PreconditionError{Op: op, Err: err})
}

func (b *Builder) requireNoGroup(op string) {
	if b.group != nil {
		fail(op, errors.Wrapf(ErrGroupAlreadyOpen, "started at instruction %d", b.group.start))
	}
}

func (b *Builder) add(instruction Instruction) *Builder {
	b.instructions = append(b.instructions, instruction)
	return b
}

// AddRuleClass fires every registered rule of the given class.
// If no such rule is registered, the instruction does nothing.
func (b *Builder) AddRuleClass(class rules.Class) *Builder {
	return b.add(RuleClass{Class: class})
}

// AddRuleCollection fires the rules of the collection.
// The collection is read anew every time the instruction fires.
func (b *Builder) AddRuleCollection(collection rules.Collection) *Builder {
	if collection == nil {
		fail("AddRuleCollection", errors.Wrap(ErrInvalidArgument, "nil collection"))
	}
	return b.add(RuleCollection{Rules: collection})
}

func (b *Builder) AddRuleInstance(rule rules.Rule) *Builder {
	if rule == nil {
		fail("AddRuleInstance", errors.Wrap(ErrInvalidArgument, "nil rule"))
	}
	return b.add(RuleInstance{Rule: rule})
}

// AddRuleByDescription fires the registered rule with the given description.
// If the planner has no such rule, the instruction does nothing.
func (b *Builder) AddRuleByDescription(description string) *Builder {
	return b.add(RuleLookup{Description: description})
}

// AddGroupBegin starts a group. Rules added until AddGroupEnd are fired collectively.
func (b *Builder) AddGroupBegin() *Builder {
	b.requireNoGroup("AddGroupBegin")
	b.group = &openGroup{start: len(b.instructions)}
	return b.add(Placeholder{})
}

// AddGroupEnd closes the current group.
func (b *Builder) AddGroupEnd() *Builder {
	if b.group == nil {
		fail("AddGroupEnd", ErrNoGroupOpen)
	}
	end := len(b.instructions)
	b.instructions[b.group.start] = BeginGroup{End: end}
	b.add(EndGroup{Begin: b.group.start})
	b.group = nil
	return b
}

// AddConverters fires converter rules, only those with the given guarantee.
func (b *Builder) AddConverters(guaranteed bool) *Builder {
	b.requireNoGroup("AddConverters")
	return b.add(ConverterRules{Guaranteed: guaranteed})
}

// AddCommonRelSubExprInstruction fires common sub-expression rules on vertices with more than one parent.
func (b *Builder) AddCommonRelSubExprInstruction() *Builder {
	b.requireNoGroup("AddCommonRelSubExprInstruction")
	return b.add(CommonRelSubExprRules{})
}

// AddMatchOrder changes the match order for the rest of the program, subprograms excluded.
func (b *Builder) AddMatchOrder(order MatchOrder) *Builder {
	b.requireNoGroup("AddMatchOrder")
	switch order {
	case Arbitrary, DepthFirst, BottomUp, TopDown:
	default:
		fail("AddMatchOrder", errors.Wrapf(ErrInvalidArgument, "unknown match order %d", int(order)))
	}
	return b.add(SetMatchOrder{Order: order})
}

// AddMatchLimit changes the match limit for the rest of the program, subprograms excluded.
func (b *Builder) AddMatchLimit(limit MatchLimit) *Builder {
	b.requireNoGroup("AddMatchLimit")
	if !limit.Valid() {
		fail("AddMatchLimit", errors.Wrapf(ErrInvalidArgument, "match limit %d", int(limit)))
	}
	return b.add(SetMatchLimit{Limit: limit})
}

// AddSubprogram runs program repeatedly, with its own match order and limit,
// until a complete run leaves the graph unchanged.
func (b *Builder) AddSubprogram(program *Program) *Builder {
	b.requireNoGroup("AddSubprogram")
	if program == nil {
		fail("AddSubprogram", errors.Wrap(ErrInvalidArgument, "nil program"))
	}
	return b.add(SubProgram{Program: program})
}

// Build returns the program built so far and resets the builder.
func (b *Builder) Build() *Program {
	if b.group != nil {
		fail("Build", errors.Wrapf(ErrGroupNotClosed, "started at instruction %d", b.group.start))
	}
	program := newProgram(b.instructions)
	b.instructions = nil
	b.group = nil
	return program
}

package program

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube2222/hep/rules"
)

func precondition(t *testing.T, f func()) error {
	t.Helper()
	err := Catch(f)
	require.Error(t, err)
	var precondition *PreconditionError
	require.True(t, errors.As(err, &precondition), "expected precondition error, got %v", err)
	return err
}

func TestGroupsReferenceEachOther(t *testing.T) {
	prog := NewBuilder().
		AddRuleByDescription("first").
		AddGroupBegin().
		AddRuleClass("filter").
		AddRuleByDescription("second").
		AddGroupEnd().
		AddMatchLimit(3).
		AddGroupBegin().
		AddRuleByDescription("third").
		AddGroupEnd().
		Build()

	expected := []Instruction{
		RuleLookup{Description: "first"},
		BeginGroup{End: 4},
		RuleClass{Class: "filter"},
		RuleLookup{Description: "second"},
		EndGroup{Begin: 1},
		SetMatchLimit{Limit: 3},
		BeginGroup{End: 8},
		RuleLookup{Description: "third"},
		EndGroup{Begin: 6},
	}
	assert.Equal(t, expected, prog.Instructions())

	for i, instruction := range prog.Instructions() {
		switch instruction := instruction.(type) {
		case BeginGroup:
			assert.Equal(t, EndGroup{Begin: i}, prog.Instruction(instruction.End))
		case EndGroup:
			assert.Equal(t, BeginGroup{End: i}, prog.Instruction(instruction.Begin))
		case Placeholder:
			t.Errorf("placeholder left at %d", i)
		}
	}
}

func TestEmptyGroup(t *testing.T) {
	prog := NewBuilder().AddGroupBegin().AddGroupEnd().Build()
	assert.Equal(t, []Instruction{BeginGroup{End: 1}, EndGroup{Begin: 0}}, prog.Instructions())
}

func TestGroupPreconditions(t *testing.T) {
	err := precondition(t, func() {
		NewBuilder().AddGroupBegin().AddGroupBegin()
	})
	assert.True(t, errors.Is(err, ErrGroupAlreadyOpen))

	err = precondition(t, func() {
		NewBuilder().AddGroupEnd()
	})
	assert.True(t, errors.Is(err, ErrNoGroupOpen))

	err = precondition(t, func() {
		NewBuilder().AddGroupBegin().AddGroupEnd().AddGroupEnd()
	})
	assert.True(t, errors.Is(err, ErrNoGroupOpen))
}

func TestProgramLevelDirectivesRejectedInsideGroup(t *testing.T) {
	sub := NewBuilder().Build()
	directives := map[string]func(b *Builder){
		"converters":   func(b *Builder) { b.AddConverters(true) },
		"common":       func(b *Builder) { b.AddCommonRelSubExprInstruction() },
		"match order":  func(b *Builder) { b.AddMatchOrder(TopDown) },
		"match limit":  func(b *Builder) { b.AddMatchLimit(1) },
		"subprogram":   func(b *Builder) { b.AddSubprogram(sub) },
		"nested group": func(b *Builder) { b.AddGroupBegin() },
	}
	for name, directive := range directives {
		t.Run(name, func(t *testing.T) {
			err := precondition(t, func() {
				directive(NewBuilder().AddGroupBegin())
			})
			assert.True(t, errors.Is(err, ErrGroupAlreadyOpen))
		})
	}
}

func TestRuleFiringAllowedInsideGroup(t *testing.T) {
	collection := rules.NewLiveCollection()
	prog := NewBuilder().
		AddGroupBegin().
		AddRuleClass("filter").
		AddRuleCollection(collection).
		AddRuleByDescription("x").
		AddGroupEnd().
		Build()
	assert.Equal(t, 5, prog.Len())
	assert.Equal(t, RuleCollection{Rules: collection}, prog.Instruction(2))
}

func TestInvalidArguments(t *testing.T) {
	err := precondition(t, func() { NewBuilder().AddMatchLimit(0) })
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	err = precondition(t, func() { NewBuilder().AddMatchLimit(-5) })
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	err = precondition(t, func() { NewBuilder().AddSubprogram(nil) })
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	err = precondition(t, func() { NewBuilder().AddRuleInstance(nil) })
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	err = precondition(t, func() { NewBuilder().AddMatchOrder(MatchOrder(42)) })
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	assert.NoError(t, Catch(func() { NewBuilder().AddMatchLimit(MatchUntilFixpoint) }))
}

func TestBuildWithOpenGroupFails(t *testing.T) {
	err := precondition(t, func() {
		NewBuilder().AddGroupBegin().AddRuleClass("filter").Build()
	})
	assert.True(t, errors.Is(err, ErrGroupNotClosed))
}

func TestBuildResetsBuilder(t *testing.T) {
	builder := NewBuilder()
	first := builder.AddRuleByDescription("a").AddMatchOrder(BottomUp).Build()

	builder.AddRuleByDescription("b")
	second := builder.Build()

	assert.Equal(t, []Instruction{RuleLookup{Description: "a"}, SetMatchOrder{Order: BottomUp}}, first.Instructions())
	assert.Equal(t, []Instruction{RuleLookup{Description: "b"}}, second.Instructions())
	assert.Greater(t, second.ID(), first.ID())
}

func TestBuilderReusableAfterGroup(t *testing.T) {
	builder := NewBuilder()
	builder.AddGroupBegin().AddRuleByDescription("a").AddGroupEnd().Build()

	prog := builder.AddGroupBegin().AddGroupEnd().Build()
	assert.Equal(t, []Instruction{BeginGroup{End: 1}, EndGroup{Begin: 0}}, prog.Instructions())
}

func TestProgramIsImmutable(t *testing.T) {
	prog := NewBuilder().AddRuleByDescription("a").Build()
	instructions := prog.Instructions()
	instructions[0] = RuleLookup{Description: "changed"}
	assert.Equal(t, RuleLookup{Description: "a"}, prog.Instruction(0))
}

func TestCatchPropagatesOtherPanics(t *testing.T) {
	assert.PanicsWithValue(t, "other", func() {
		_ = Catch(func() { panic("other") })
	})
}

func TestParseMatchOrder(t *testing.T) {
	for _, order := range []MatchOrder{Arbitrary, DepthFirst, BottomUp, TopDown} {
		parsed, err := ParseMatchOrder(order.String())
		require.NoError(t, err)
		assert.Equal(t, order, parsed)
	}
	parsed, err := ParseMatchOrder("Bottom-Up")
	require.NoError(t, err)
	assert.Equal(t, BottomUp, parsed)

	_, err = ParseMatchOrder("sideways")
	assert.Error(t, err)
}

func TestMatchLimit(t *testing.T) {
	assert.False(t, MatchUntilFixpoint.Reached(1<<30))
	assert.True(t, MatchLimit(2).Reached(2))
	assert.False(t, MatchLimit(2).Reached(1))
	assert.Equal(t, "fixpoint", MatchUntilFixpoint.String())
}

package program

import (
	"fmt"

	"github.com/cube2222/hep/rules"
)

// Instruction is a single opcode of a Program.
type Instruction interface {
	fmt.Stringer
	instruction()
}

// RuleFiring is implemented by the instructions which fire rules.
// Only these may appear inside a group.
type RuleFiring interface {
	Instruction
	ruleFiring()
}

// RuleClass fires every registered rule of the given class.
type RuleClass struct {
	Class rules.Class
}

// RuleCollection fires the current contents of a host owned collection.
type RuleCollection struct {
	Rules rules.Collection
}

// RuleInstance fires a single rule.
type RuleInstance struct {
	Rule rules.Rule
}

// RuleLookup fires the registered rule with the given description, if any.
type RuleLookup struct {
	Description string
}

// Placeholder reserves the slot of a BeginGroup until the group is closed.
type Placeholder struct{}

// BeginGroup starts a group, End is the index of the matching EndGroup.
type BeginGroup struct {
	End int
}

// EndGroup closes a group, Begin is the index of the matching BeginGroup.
type EndGroup struct {
	Begin int
}

// ConverterRules fires the registered converter rules with the given guarantee.
type ConverterRules struct {
	Guaranteed bool
}

// CommonRelSubExprRules fires the registered common sub-expression rules on shared vertices.
type CommonRelSubExprRules struct{}

type SetMatchOrder struct {
	Order MatchOrder
}

type SetMatchLimit struct {
	Limit MatchLimit
}

// SubProgram runs a nested program repeatedly until it stops changing the graph.
type SubProgram struct {
	Program *Program
}

func (RuleClass) instruction()             {}
func (RuleCollection) instruction()        {}
func (RuleInstance) instruction()          {}
func (RuleLookup) instruction()            {}
func (Placeholder) instruction()           {}
func (BeginGroup) instruction()            {}
func (EndGroup) instruction()              {}
func (ConverterRules) instruction()        {}
func (CommonRelSubExprRules) instruction() {}
func (SetMatchOrder) instruction()         {}
func (SetMatchLimit) instruction()         {}
func (SubProgram) instruction()            {}

func (RuleClass) ruleFiring()             {}
func (RuleCollection) ruleFiring()        {}
func (RuleInstance) ruleFiring()          {}
func (RuleLookup) ruleFiring()            {}
func (ConverterRules) ruleFiring()        {}
func (CommonRelSubExprRules) ruleFiring() {}

func (i RuleClass) String() string {
	return fmt.Sprintf("RuleClass(%s)", i.Class)
}

func (i RuleCollection) String() string {
	return "RuleCollection"
}

func (i RuleInstance) String() string {
	return fmt.Sprintf("RuleInstance(%s)", i.Rule.Description())
}

func (i RuleLookup) String() string {
	return fmt.Sprintf("RuleLookup(%s)", i.Description)
}

func (i Placeholder) String() string {
	return "Placeholder"
}

func (i BeginGroup) String() string {
	return fmt.Sprintf("BeginGroup(end=%d)", i.End)
}

func (i EndGroup) String() string {
	return fmt.Sprintf("EndGroup(begin=%d)", i.Begin)
}

func (i ConverterRules) String() string {
	return fmt.Sprintf("ConverterRules(guaranteed=%t)", i.Guaranteed)
}

func (i CommonRelSubExprRules) String() string {
	return "CommonRelSubExprRules"
}

func (i SetMatchOrder) String() string {
	return fmt.Sprintf("MatchOrder(%s)", i.Order)
}

func (i SetMatchLimit) String() string {
	return fmt.Sprintf("MatchLimit(%s)", i.Limit)
}

func (i SubProgram) String() string {
	return fmt.Sprintf("SubProgram(%d)", i.Program.ID())
}

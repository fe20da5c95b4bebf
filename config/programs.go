package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cube2222/hep/program"
	"github.com/cube2222/hep/rules"
)

// ProgramConfig describes a program as a list of instructions, e.g.
//
//	programs:
//	  simplify:
//	    - matchOrder: top_down
//	    - group:
//	        - rule: FilterMerge
//	        - class: project
//	  main:
//	    - subprogram: simplify
//	    - converters: true
type ProgramConfig []InstructionConfig

// InstructionConfig describes a single instruction. Exactly one field must be set.
type InstructionConfig struct {
	Rule          string              `yaml:"rule,omitempty"`
	Class         string              `yaml:"class,omitempty"`
	Group         []InstructionConfig `yaml:"group,omitempty"`
	Converters    *bool               `yaml:"converters,omitempty"`
	CommonSubExpr bool                `yaml:"commonSubExpr,omitempty"`
	MatchOrder    string              `yaml:"matchOrder,omitempty"`
	MatchLimit    *MatchLimit         `yaml:"matchLimit,omitempty"`
	Subprogram    string              `yaml:"subprogram,omitempty"`
}

// MatchLimit is a positive integer or "fixpoint".
type MatchLimit program.MatchLimit

func (l *MatchLimit) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: match limit must be a scalar", value.Line)
	}
	if strings.EqualFold(value.Value, "fixpoint") {
		*l = MatchLimit(program.MatchUntilFixpoint)
		return nil
	}
	n, err := strconv.Atoi(value.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d: match limit must be an integer or 'fixpoint'", value.Line)
	}
	*l = MatchLimit(n)
	return nil
}

func (i *InstructionConfig) set() int {
	count := 0
	for _, isSet := range []bool{
		i.Rule != "",
		i.Class != "",
		i.Group != nil,
		i.Converters != nil,
		i.CommonSubExpr,
		i.MatchOrder != "",
		i.MatchLimit != nil,
		i.Subprogram != "",
	} {
		if isSet {
			count++
		}
	}
	return count
}

// ProgramNames returns the names of all configured programs, sorted.
func (config *Config) ProgramNames() []string {
	out := make([]string, 0, len(config.Programs))
	for name := range config.Programs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Program builds the named program. Subprograms are built once and shared by all programs referencing them.
func (config *Config) Program(name string) (*program.Program, error) {
	c := &compiler{
		programs: config.Programs,
		built:    make(map[string]*program.Program),
		building: make(map[string]bool),
	}
	return c.program(name)
}

type compiler struct {
	programs map[string]ProgramConfig
	built    map[string]*program.Program
	building map[string]bool
}

func (c *compiler) program(name string) (*program.Program, error) {
	if prog, ok := c.built[name]; ok {
		return prog, nil
	}
	instructions, ok := c.programs[name]
	if !ok {
		return nil, errors.Errorf("unknown program '%s'", name)
	}
	if c.building[name] {
		return nil, errors.Errorf("program '%s' includes itself as a subprogram", name)
	}
	c.building[name] = true
	defer delete(c.building, name)

	// Subprograms get built first, so that building this one can't fail halfway through on them.
	subprograms := make(map[string]*program.Program)
	for _, instruction := range instructions {
		if instruction.Subprogram == "" {
			continue
		}
		sub, err := c.program(instruction.Subprogram)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't build subprogram of '%s'", name)
		}
		subprograms[instruction.Subprogram] = sub
	}

	var prog *program.Program
	err := program.Catch(func() {
		builder := program.NewBuilder()
		for i := range instructions {
			c.add(builder, name, i, &instructions[i], subprograms)
		}
		prog = builder.Build()
	})
	if err != nil {
		return nil, errors.Wrapf(err, "invalid program '%s'", name)
	}
	c.built[name] = prog
	return prog, nil
}

type invalidInstruction struct {
	program string
	index   int
	msg     string
}

func (e *invalidInstruction) Error() string {
	return fmt.Sprintf("instruction %d of program '%s': %s", e.index, e.program, e.msg)
}

func (c *compiler) add(builder *program.Builder, name string, index int, instruction *InstructionConfig, subprograms map[string]*program.Program) {
	if instruction.set() != 1 {
		fail(name, index, "exactly one of rule, class, group, converters, commonSubExpr, matchOrder, matchLimit and subprogram must be set")
	}
	switch {
	case instruction.Rule != "":
		builder.AddRuleByDescription(instruction.Rule)
	case instruction.Class != "":
		builder.AddRuleClass(rules.Class(instruction.Class))
	case instruction.Group != nil:
		builder.AddGroupBegin()
		for i := range instruction.Group {
			c.add(builder, name, index, &instruction.Group[i], subprograms)
		}
		builder.AddGroupEnd()
	case instruction.Converters != nil:
		builder.AddConverters(*instruction.Converters)
	case instruction.CommonSubExpr:
		builder.AddCommonRelSubExprInstruction()
	case instruction.MatchOrder != "":
		order, err := program.ParseMatchOrder(instruction.MatchOrder)
		if err != nil {
			fail(name, index, err.Error())
		}
		builder.AddMatchOrder(order)
	case instruction.MatchLimit != nil:
		builder.AddMatchLimit(program.MatchLimit(*instruction.MatchLimit))
	case instruction.Subprogram != "":
		builder.AddSubprogram(subprograms[instruction.Subprogram])
	}
}

func fail(name string, index int, msg string) {
	panic(&program.PreconditionError{
		Op:  "config",
		Err: &invalidInstruction{program: name, index: index, msg: msg},
	})
}

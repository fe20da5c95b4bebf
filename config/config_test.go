package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cube2222/hep/graph"
	"github.com/cube2222/hep/planner"
	"github.com/cube2222/hep/program"
)

func TestReadConfig(t *testing.T) {
	config, err := Read("fixtures/example.yaml")
	require.NoError(t, err)

	assert.Equal(t, PlannerConfig{MaxPasses: 50}, config.Planner)
	assert.Equal(t, LoggingConfig{Level: "debug", Format: "json"}, config.Logging)
	assert.Equal(t, []string{"main", "simplify"}, config.ProgramNames())

	main, err := config.Program("main")
	require.NoError(t, err)
	require.Equal(t, 7, main.Len())

	sub, ok := main.Instruction(0).(program.SubProgram)
	require.True(t, ok)
	assert.Equal(t, []program.Instruction{
		program.SetMatchOrder{Order: program.TopDown},
		program.BeginGroup{End: 4},
		program.RuleLookup{Description: "FilterRemoveTrivial"},
		program.RuleLookup{Description: "FilterMerge"},
		program.EndGroup{Begin: 1},
		program.RuleClass{Class: "project"},
	}, sub.Program.Instructions())

	assert.Equal(t, []program.Instruction{
		program.CommonRelSubExprRules{},
		program.SetMatchOrder{Order: program.BottomUp},
		program.SetMatchLimit{Limit: 10},
		program.ConverterRules{Guaranteed: true},
		program.SetMatchLimit{Limit: program.MatchUntilFixpoint},
		program.ConverterRules{Guaranteed: false},
	}, main.Instructions()[1:])
}

func TestReadConfigDefaults(t *testing.T) {
	homedir.DisableCache = true
	defer func() { homedir.DisableCache = false }()
	t.Setenv("HOME", t.TempDir())

	config, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
	assert.Equal(t, planner.DefaultMaxPasses, config.Planner.MaxPasses)

	_, err = Read(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestReadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644))

	config, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "console", config.Logging.Format)
	assert.Equal(t, planner.DefaultMaxPasses, config.Planner.MaxPasses)
}

func TestInvalidPrograms(t *testing.T) {
	tests := []struct {
		name         string
		programs     string
		precondition error
	}{
		{
			name: "subprogram cycle",
			programs: `
a:
  - subprogram: b
b:
  - rule: x
  - subprogram: a
`,
		},
		{
			name: "self reference",
			programs: `
a:
  - subprogram: a
`,
		},
		{
			name: "unknown subprogram",
			programs: `
a:
  - subprogram: b
`,
		},
		{
			name: "two fields",
			programs: `
a:
  - rule: x
    class: y
`,
		},
		{
			name: "empty instruction",
			programs: `
a:
  - {}
`,
		},
		{
			name: "directive inside group",
			programs: `
a:
  - group:
      - rule: x
      - matchOrder: top_down
`,
			precondition: program.ErrGroupAlreadyOpen,
		},
		{
			name: "nested group",
			programs: `
a:
  - group:
      - group:
          - rule: x
`,
			precondition: program.ErrGroupAlreadyOpen,
		},
		{
			name: "zero match limit",
			programs: `
a:
  - matchLimit: 0
`,
			precondition: program.ErrInvalidArgument,
		},
		{
			name: "unknown match order",
			programs: `
a:
  - matchOrder: sideways
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			require.NoError(t, yaml.Unmarshal([]byte(tt.programs), &config.Programs))

			err := config.Validate()
			require.Error(t, err)
			if tt.precondition != nil {
				assert.True(t, errors.Is(err, tt.precondition), "got %v", err)
			}
		})
	}
}

func TestMatchLimitMustBeNumber(t *testing.T) {
	var programs map[string]ProgramConfig
	err := yaml.Unmarshal([]byte("a:\n  - matchLimit: many\n"), &programs)
	assert.Error(t, err)
}

func TestSharedSubprogramBuiltOnce(t *testing.T) {
	config := Default()
	require.NoError(t, yaml.Unmarshal([]byte(`
leaf:
  - rule: x
main:
  - subprogram: leaf
  - subprogram: leaf
`), &config.Programs))

	main, err := config.Program("main")
	require.NoError(t, err)
	first := main.Instruction(0).(program.SubProgram)
	second := main.Instruction(1).(program.SubProgram)
	assert.Same(t, first.Program, second.Program)
}

func TestReadPlan(t *testing.T) {
	plan, err := ReadPlan("fixtures/plan.yaml")
	require.NoError(t, err)

	g, ids, err := plan.Graph()
	require.NoError(t, err)
	assert.Equal(t, 5, g.Len())
	assert.Equal(t, ids["names"], g.Root())

	rich, ok := g.Vertex(ids["rich"])
	require.True(t, ok)
	assert.Equal(t, graph.Kind("Filter"), rich.Kind())
	assert.Equal(t, []graph.VertexID{ids["emp"]}, rich.Operands())
	assert.Equal(t, []graph.Attribute{
		{Name: "condition", Value: []string{"sal > 1000"}},
		{Name: "selectivity", Value: 0.1},
	}, rich.Attributes())

	lookup, _ := g.Vertex(ids["lookup"])
	sub, ok := lookup.Attribute("sub")
	require.True(t, ok)
	assert.Equal(t, graph.VertexRef(ids["depts"]), sub)
	assert.Equal(t, []graph.VertexID{ids["lookup"]}, g.Parents(ids["depts"]))
}

func TestInvalidPlans(t *testing.T) {
	tests := map[string]string{
		"undeclared input": `
vertices:
  - {name: a, kind: Filter, inputs: [b]}
  - {name: b, kind: TableScan}
`,
		"duplicate name": `
vertices:
  - {name: a, kind: TableScan}
  - {name: a, kind: TableScan}
`,
		"missing kind": `
vertices:
  - {name: a}
`,
		"undeclared reference": `
vertices:
  - name: a
    kind: Filter
    attributes:
      sub: {ref: b}
`,
		"unknown root": `
root: z
vertices:
  - {name: a, kind: TableScan}
`,
		"empty": `
vertices: []
`,
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			var plan PlanConfig
			require.NoError(t, yaml.Unmarshal([]byte(text), &plan))
			_, _, err := plan.Graph()
			assert.Error(t, err)
		})
	}
}

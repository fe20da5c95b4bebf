package optimizer

import (
	"context"

	"github.com/cube2222/hep/graph"
	"github.com/cube2222/hep/planner"
	"github.com/cube2222/hep/program"
	"github.com/cube2222/hep/rules"
)

// DefaultRules returns fresh instances of every rule of this package.
func DefaultRules() []rules.Rule {
	out := []rules.Rule{
		NewFilterRemoveTrivial(),
		NewFilterMerge(),
		NewFilterProjectTranspose(),
		NewProjectRemove(),
		NewProjectMerge(),
		NewSharedSubExprSpool(),
	}
	return append(out, Converters()...)
}

// Register adds the default rules to registry.
func Register(registry *rules.Registry) error {
	for _, rule := range DefaultRules() {
		if err := registry.Register(rule); err != nil {
			return err
		}
	}
	return nil
}

func NewRegistry() *rules.Registry {
	registry := rules.NewRegistry()
	registry.MustRegister(DefaultRules()...)
	return registry
}

// DefaultProgram simplifies filters and projections until neither changes anymore,
// shares common sub-expressions and finally converts everything to enumerable operators.
func DefaultProgram() *program.Program {
	simplify := program.NewBuilder().
		AddMatchOrder(program.TopDown).
		AddGroupBegin().
		AddRuleByDescription("FilterRemoveTrivial").
		AddRuleByDescription("FilterMerge").
		AddRuleByDescription("FilterProjectTranspose").
		AddGroupEnd().
		AddRuleClass(ClassProject).
		Build()

	return program.NewBuilder().
		AddSubprogram(simplify).
		AddCommonRelSubExprInstruction().
		AddMatchOrder(program.BottomUp).
		AddConverters(true).
		AddConverters(false).
		Build()
}

// Optimize runs the default program with the default rules over g.
func Optimize(ctx context.Context, g *graph.Graph, opts ...planner.Option) (*planner.Result, error) {
	return planner.New(NewRegistry(), opts...).Execute(ctx, DefaultProgram(), g)
}

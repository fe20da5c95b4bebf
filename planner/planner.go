package planner

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cube2222/hep/graph"
	"github.com/cube2222/hep/program"
	"github.com/cube2222/hep/rules"
	"github.com/cube2222/hep/telemetry"
)

const DefaultMaxPasses = 1000

// Planner executes programs against expression graphs.
// A Planner holds no per-execution state, so one Planner may execute
// programs on different graphs concurrently.
type Planner struct {
	registry  *rules.Registry
	logger    *zap.Logger
	metrics   *telemetry.Metrics
	maxPasses int
}

type Option func(p *Planner)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(p *Planner) {
		p.metrics = metrics
	}
}

// WithMaxPasses bounds the passes of a single firing and the repetitions of a subprogram.
func WithMaxPasses(maxPasses int) Option {
	return func(p *Planner) {
		if maxPasses > 0 {
			p.maxPasses = maxPasses
		}
	}
}

// New creates a planner resolving class, description, converter and
// common sub-expression instructions against registry.
func New(registry *rules.Registry, opts ...Option) *Planner {
	if registry == nil {
		registry = rules.NewRegistry()
	}
	p := &Planner{
		registry:  registry,
		logger:    zap.NewNop(),
		maxPasses: DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Planner) Registry() *rules.Registry {
	return p.registry
}

// FiringStats describes a single firing of a rule set.
type FiringStats struct {
	Program      uint64
	Instruction  int
	Name         string
	Rules        int
	Passes       int
	Applications int
	LimitReached bool
}

type Result struct {
	RunID        string
	Applications int
	Passes       int
	Firings      []FiringStats
	Failures     []*ApplicationError
}

// Err joins all failed rule applications, or returns nil if there were none.
func (r *Result) Err() error {
	var out *multierror.Error
	for _, failure := range r.Failures {
		out = multierror.Append(out, failure)
	}
	return out.ErrorOrNil()
}

// ErrNoRoot is returned when executing a program against a graph without a root.
// Vertices are only retired once nothing reachable from the root uses them.
var ErrNoRoot = errors.New("graph has no root")

// Execute runs prog against g, rewriting g in place.
// Failed rule applications don't stop the execution, they're reported in the Result.
// An error is returned if g has no root, or if the execution didn't converge or ctx got cancelled,
// in which latter cases the graph holds every application completed so far.
func (p *Planner) Execute(ctx context.Context, prog *program.Program, g *graph.Graph) (*Result, error) {
	if g.Root() == 0 {
		return nil, ErrNoRoot
	}
	runID := ulid.MustNew(ulid.Now(), rand.Reader).String()
	e := &execution{
		planner: p,
		ctx:     ctx,
		graph:   g,
		logger:  p.logger.With(zap.String("run_id", runID)),
		result: &Result{
			RunID: runID,
		},
	}

	start := time.Now()
	err := e.run(prog)
	p.metrics.ObserveExecution(time.Since(start))

	e.logger.Debug("program executed",
		zap.Uint64("program", prog.ID()),
		zap.Int("applications", e.result.Applications),
		zap.Int("passes", e.result.Passes),
		zap.Int("failures", len(e.result.Failures)),
		zap.Duration("duration", time.Since(start)),
	)
	return e.result, err
}

type execution struct {
	planner *Planner
	ctx     context.Context
	graph   *graph.Graph
	logger  *zap.Logger
	result  *Result
}

// activation is the state of a single run of a program.
type activation struct {
	program *program.Program
	order   program.MatchOrder
	limit   program.MatchLimit
}

func (e *execution) run(prog *program.Program) error {
	act := &activation{
		program: prog,
		order:   program.DefaultMatchOrder,
		limit:   program.DefaultMatchLimit,
	}

	for i := 0; i < prog.Len(); i++ {
		switch instruction := prog.Instruction(i).(type) {
		case program.SetMatchOrder:
			act.order = instruction.Order

		case program.SetMatchLimit:
			act.limit = instruction.Limit

		case program.BeginGroup:
			var set ruleSet
			for j := i + 1; j < instruction.End; j++ {
				firing, ok := prog.Instruction(j).(program.RuleFiring)
				if !ok {
					return errors.Errorf("instruction %d of program %d inside group is not a rule firing: %s", j, prog.ID(), prog.Instruction(j))
				}
				set.add(e.resolve(firing)...)
			}
			if err := e.fire(act, i, instruction, set, false); err != nil {
				return err
			}
			i = instruction.End

		case program.EndGroup, program.Placeholder:
			return errors.Errorf("unexpected %s at instruction %d of program %d", instruction, i, prog.ID())

		case program.SubProgram:
			if err := e.runSubprogram(act, i, instruction); err != nil {
				return err
			}

		case program.CommonRelSubExprRules:
			var set ruleSet
			set.add(e.resolve(instruction)...)
			if err := e.fire(act, i, instruction, set, true); err != nil {
				return err
			}

		case program.RuleFiring:
			var set ruleSet
			set.add(e.resolve(instruction)...)
			if err := e.fire(act, i, instruction, set, false); err != nil {
				return err
			}

		default:
			return errors.Errorf("unknown instruction %T", instruction)
		}
	}
	return nil
}

// runSubprogram runs the nested program in a fresh activation until a complete run leaves the graph unchanged.
func (e *execution) runSubprogram(parent *activation, index int, instruction program.SubProgram) error {
	for runs := 0; ; runs++ {
		if runs == e.planner.maxPasses {
			e.planner.metrics.ObserveNonConvergence()
			return &NonConvergenceError{
				Program:     parent.program.ID(),
				Instruction: index,
				What:        firingName(instruction),
				Passes:      runs,
			}
		}
		if err := e.ctx.Err(); err != nil {
			return errors.Wrap(err, "execution interrupted")
		}

		before := e.graph.Version()
		if err := e.run(instruction.Program); err != nil {
			return err
		}
		if e.graph.Version() == before {
			return nil
		}
	}
}

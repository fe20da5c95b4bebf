package program

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

type MatchOrder int

const (
	// Arbitrary visits vertices in an unspecified but consistent order.
	Arbitrary MatchOrder = iota
	// DepthFirst visits the operands of a vertex, left to right, before the vertex itself.
	DepthFirst
	// BottomUp sweeps the graph from the leaves towards the root.
	BottomUp
	// TopDown sweeps the graph from the root towards the leaves.
	TopDown
)

const DefaultMatchOrder = DepthFirst

func (o MatchOrder) String() string {
	switch o {
	case Arbitrary:
		return "arbitrary"
	case DepthFirst:
		return "depth_first"
	case BottomUp:
		return "bottom_up"
	case TopDown:
		return "top_down"
	default:
		return fmt.Sprintf("MatchOrder(%d)", int(o))
	}
}

func ParseMatchOrder(text string) (MatchOrder, error) {
	switch strings.ToLower(strings.ReplaceAll(text, "-", "_")) {
	case "arbitrary":
		return Arbitrary, nil
	case "depth_first":
		return DepthFirst, nil
	case "bottom_up":
		return BottomUp, nil
	case "top_down":
		return TopDown, nil
	default:
		return 0, errors.Errorf("unknown match order: %s", text)
	}
}

// MatchLimit caps the number of successful rule applications of a single firing.
type MatchLimit int

// MatchUntilFixpoint removes the limit: the firing runs until it stops making progress.
const MatchUntilFixpoint MatchLimit = -1

const DefaultMatchLimit = MatchUntilFixpoint

func (l MatchLimit) Valid() bool {
	return l > 0 || l == MatchUntilFixpoint
}

// Reached reports whether the given count of applications exhausts the limit.
func (l MatchLimit) Reached(applications int) bool {
	return l != MatchUntilFixpoint && applications >= int(l)
}

func (l MatchLimit) String() string {
	if l == MatchUntilFixpoint {
		return "fixpoint"
	}
	return strconv.Itoa(int(l))
}

var lastProgramID uint64

// Program is an immutable sequence of instructions.
// A Program may be executed by many planners concurrently.
type Program struct {
	id           uint64
	instructions []Instruction
}

func newProgram(instructions []Instruction) *Program {
	out := make([]Instruction, len(instructions))
	copy(out, instructions)
	return &Program{
		id:           atomic.AddUint64(&lastProgramID, 1),
		instructions: out,
	}
}

// ID is the sequential build identifier of the program.
func (p *Program) ID() uint64 {
	return p.id
}

func (p *Program) Len() int {
	return len(p.instructions)
}

func (p *Program) Instruction(i int) Instruction {
	return p.instructions[i]
}

func (p *Program) Instructions() []Instruction {
	out := make([]Instruction, len(p.instructions))
	copy(out, p.instructions)
	return out
}

func (p *Program) String() string {
	parts := make([]string, len(p.instructions))
	for i := range p.instructions {
		parts[i] = p.instructions[i].String()
	}
	return fmt.Sprintf("Program#%d[%s]", p.id, strings.Join(parts, ", "))
}

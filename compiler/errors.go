package compiler

import "fmt"

// Phase identifies the pipeline stage an Error originated from.
type Phase int

const (
	PhaseLex Phase = iota
	PhaseParse
	PhaseSemantic
	PhaseCodeGen
)

var phaseNames = map[Phase]string{
	PhaseLex:      "lex",
	PhaseParse:    "parse",
	PhaseSemantic: "semantic",
	PhaseCodeGen:  "codegen",
}

func (phase Phase) String() string { return phaseNames[phase] }

// Error is the structured failure value produced by every stage. Line and
// Col are 1-based; both zero means the stage had no position to report.
type Error struct {
	Phase Phase
	Msg   string
	Line  int
	Col   int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s error at line %d, col %d: %s", e.Phase, e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s error: %s", e.Phase, e.Msg)
}

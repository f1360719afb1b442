// Package model holds the page-level content model shared by the analyzer,
// the raster tooling and the PDF adapter.
package model

import (
	"strconv"
	"strings"
)

// InstructionKind is the closed set of path construction operations.
type InstructionKind int

const (
	KindOther InstructionKind = iota
	KindMove
	KindLine
	KindCurveCubic
	KindCurveQuadV
	KindCurveQuadY
	KindRectangle
)

var operatorKinds = map[string]InstructionKind{
	"m":  KindMove,
	"l":  KindLine,
	"c":  KindCurveCubic,
	"v":  KindCurveQuadV,
	"y":  KindCurveQuadY,
	"re": KindRectangle,
}

// KindFromOperator maps a content stream operator to its instruction kind.
func KindFromOperator(op string) InstructionKind {
	if k, ok := operatorKinds[op]; ok {
		return k
	}
	return KindOther
}

func (k InstructionKind) String() string {
	switch k {
	case KindMove:
		return "m"
	case KindLine:
		return "l"
	case KindCurveCubic:
		return "c"
	case KindCurveQuadV:
		return "v"
	case KindCurveQuadY:
		return "y"
	case KindRectangle:
		return "re"
	}
	return "other"
}

// Instruction is a single drawing instruction of a path.
type Instruction struct {
	Kind     InstructionKind
	Operands []float64
}

// Color is an RGB triple with components in 0..1. A nil Color means the
// attribute is absent.
type Color []float64

// String renders the color as a tuple, e.g. "(1.0, 0.0, 0.0)".
func (c Color) String() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = FormatFloat(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FormatFloat formats v with the shortest exact representation and always
// keeps a fractional part ("2.0", "0.5").
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Path groups the instructions painted by one painting operator.
type Path struct {
	Instructions []Instruction
	Color        Color // stroke color, nil when the path is not stroked
	Fill         Color // fill color, nil when the path is not filled
}

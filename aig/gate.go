// Package aig implements the And-Inverter Graph data model: a labeled DAG of
// INPUT, AND, NOT, and constant gates with a reverse "users" index, the
// structure the cube-and-conquer pipeline operates on directly instead of
// going through a general-purpose boolean expression tree.
package aig

import "fmt"

// GateType identifies the function a Gate computes.
type GateType int

const (
	// Input is a free boolean variable with no operands.
	Input GateType = iota
	// And computes the conjunction of exactly two operands.
	And
	// Not computes the negation of exactly one operand.
	Not
	// AlwaysTrue is the nullary constant true gate.
	AlwaysTrue
	// AlwaysFalse is the nullary constant false gate.
	AlwaysFalse
)

// String renders the gate type as an upper-case name for log and error messages.
func (t GateType) String() string {
	switch t {
	case Input:
		return "INPUT"
	case And:
		return "AND"
	case Not:
		return "NOT"
	case AlwaysTrue:
		return "ALWAYS_TRUE"
	case AlwaysFalse:
		return "ALWAYS_FALSE"
	default:
		return fmt.Sprintf("GateType(%d)", int(t))
	}
}

// Arity returns the number of operands a gate of this type must have.
func (t GateType) Arity() int {
	switch t {
	case And:
		return 2
	case Not:
		return 1
	default:
		return 0
	}
}

// Gate is one node of an AIG: a label, a type, and the labels of its operand
// gates (empty for INPUT and the constant gates).
type Gate struct {
	Label    string
	Type     GateType
	Operands []string
}

// Operator evaluates the gate's boolean function given the values of its
// operands, in the same order as Operands.
func (g *Gate) Operator(args ...bool) bool {
	switch g.Type {
	case And:
		return args[0] && args[1]
	case Not:
		return !args[0]
	case AlwaysTrue:
		return true
	case AlwaysFalse:
		return false
	default:
		panic(fmt.Sprintf("aig: Operator called on %s gate %q", g.Type, g.Label))
	}
}

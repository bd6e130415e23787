package aig

import "fmt"

// StructuralError reports a violation of the AIG's structural invariants:
// wrong operand arity, an unsupported gate type, a reference to a gate that
// does not exist, or a cycle.
type StructuralError struct {
	Op      string
	Label   string
	Message string
}

func (e *StructuralError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("aig: %s: gate %q: %s", e.Op, e.Label, e.Message)
	}
	return fmt.Sprintf("aig: %s: %s", e.Op, e.Message)
}

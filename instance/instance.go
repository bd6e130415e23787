// Package instance implements the mutable (circuit, CNF) pair the cube
// driver assigns variables into: CircuitSatInstance mirrors both the AIG
// structure and its Tseytin encoding so a gate decision can be applied as a
// structural rewrite (cheap branching) and recorded as a unit clause (so the
// eventual CDCL backend sees it too).
package instance

import (
	"github.com/aigcube/aigcube/aig"
	"github.com/aigcube/aigcube/cnf"
	"github.com/aigcube/aigcube/simplify"
)

// AssignmentStatus is the outcome of an Assign call.
type AssignmentStatus int

const (
	// OK means the assignment was applied without contradiction.
	OK AssignmentStatus = iota
	// Conflict means the assignment contradicts a gate already forced to the
	// opposite constant.
	Conflict
)

func (s AssignmentStatus) String() string {
	if s == Conflict {
		return "CONFLICT"
	}
	return "OK"
}

// GateConfig records, for one gate, the CNF variable Tseytin encoding gave
// it, whether it is an input, and (for inputs only) the value it was fixed
// to. Non-input gates never have Value set: model reconstruction never
// consults it, because by the time a non-input gate is decided it has
// already been folded to a constant gate, not recorded as a value.
type GateConfig struct {
	Label   string
	Var     int
	IsInput bool
	Value   *bool
}

// CircuitSatInstance is a circuit and its CNF encoding, kept in sync: an
// Assign call rewrites both.
type CircuitSatInstance struct {
	Circuit     *aig.Circuit
	CNF         *cnf.CNF
	GatesConfig map[string]*GateConfig

	constProp  simplify.Transformer
	collapseNN simplify.Transformer
}

// New builds an instance from circuit, Tseytin-encoding it immediately.
func New(circuit *aig.Circuit) (*CircuitSatInstance, error) {
	if err := checkCircuit(circuit); err != nil {
		return nil, err
	}

	formula, err := cnf.Encode(circuit)
	if err != nil {
		return nil, err
	}

	inst := &CircuitSatInstance{
		Circuit:     circuit,
		CNF:         formula,
		GatesConfig: make(map[string]*GateConfig, len(circuit.Gates())),
		constProp:   simplify.NewConstantPropagation(),
		collapseNN:  simplify.NewCollapseDoubleNegations(),
	}

	for _, label := range circuit.Gates() {
		g, err := circuit.Gate(label)
		if err != nil {
			return nil, err
		}
		v, _ := formula.Var(label)
		inst.GatesConfig[label] = &GateConfig{
			Label:   label,
			Var:     v,
			IsInput: g.Type == aig.Input,
		}
	}

	return inst, nil
}

// FromCircuit builds an instance for circuit and immediately asserts its
// single output true, the root of every cube-and-conquer search tree.
func FromCircuit(circuit *aig.Circuit) (*CircuitSatInstance, AssignmentStatus, error) {
	if circuit.OutputSize() != 1 {
		return nil, Conflict, &aig.StructuralError{Op: "FromCircuit", Message: "circuit must have exactly one output"}
	}
	inst, err := New(circuit)
	if err != nil {
		return nil, Conflict, err
	}
	status, err := inst.Assign(circuit.Outputs()[0], true)
	if err != nil {
		return nil, Conflict, err
	}
	return inst, status, nil
}

func checkCircuit(circuit *aig.Circuit) error {
	for _, label := range circuit.Gates() {
		g, err := circuit.Gate(label)
		if err != nil {
			return err
		}
		switch g.Type {
		case aig.Input, aig.AlwaysTrue, aig.AlwaysFalse:
			continue
		case aig.And:
			if len(g.Operands) != 2 {
				return &aig.StructuralError{Op: "checkCircuit", Label: label, Message: "AND gate must have exactly two operands"}
			}
		case aig.Not:
			if len(g.Operands) != 1 {
				return &aig.StructuralError{Op: "checkCircuit", Label: label, Message: "NOT gate must have exactly one operand"}
			}
		default:
			return &aig.StructuralError{Op: "checkCircuit", Label: label, Message: "unsupported gate type"}
		}
	}
	return nil
}

// Clone returns a deep copy of the instance: its circuit, CNF, and gate
// configs are all independent of the original, so branching a cube decision
// can mutate the clone without disturbing a sibling branch or the parent.
func (inst *CircuitSatInstance) Clone() *CircuitSatInstance {
	next := &CircuitSatInstance{
		Circuit:     inst.Circuit.Clone(),
		CNF:         inst.CNF.Clone(),
		GatesConfig: make(map[string]*GateConfig, len(inst.GatesConfig)),
		constProp:   inst.constProp,
		collapseNN:  inst.collapseNN,
	}
	for label, cfg := range inst.GatesConfig {
		copied := *cfg
		if cfg.Value != nil {
			v := *cfg.Value
			copied.Value = &v
		}
		next.GatesConfig[label] = &copied
	}
	return next
}

// Simplify runs constant propagation and double-negation collapsing over the
// instance's circuit. GatesConfig is left untouched: it is built once, from
// the original gate set, and every later Assign only ever updates a Value in
// place, because the conquer stage needs the CNF variable and fixed value of
// every decided input — including ones simplification has since folded
// away — to reconstruct a model.
func (inst *CircuitSatInstance) Simplify() error {
	circuit, err := inst.constProp.Apply(inst.Circuit)
	if err != nil {
		return err
	}
	circuit, err = inst.collapseNN.Apply(circuit)
	if err != nil {
		return err
	}
	inst.Circuit = circuit
	return nil
}

// Assign fixes label to value, appends the corresponding unit clause to the
// CNF, structurally rewrites the AIG, and propagates the consequence through
// the circuit before running the simplifier.
func (inst *CircuitSatInstance) Assign(label string, value bool) (AssignmentStatus, error) {
	status, err := inst.assignAndPropagate(label, value)
	if err != nil || status != OK {
		return status, err
	}
	if err := inst.Simplify(); err != nil {
		return OK, err
	}
	return OK, nil
}

func (inst *CircuitSatInstance) assignAndPropagate(label string, value bool) (AssignmentStatus, error) {
	gate, err := inst.Circuit.Gate(label)
	if err != nil {
		return Conflict, err
	}

	if gate.Type == aig.AlwaysTrue || gate.Type == aig.AlwaysFalse {
		if gate.Operator() != value {
			return Conflict, nil
		}
		return OK, nil
	}

	lit, err := inst.CNF.Lit(label, value)
	if err != nil {
		return Conflict, err
	}
	inst.CNF.AddClause(lit)

	if gate.Type == aig.Input {
		if value {
			err = inst.Circuit.ReplaceInputs([]string{label}, nil)
		} else {
			err = inst.Circuit.ReplaceInputs(nil, []string{label})
		}
		if err != nil {
			return Conflict, err
		}
		if cfg, ok := inst.GatesConfig[label]; ok {
			v := value
			cfg.Value = &v
		}
		return OK, nil
	}

	for _, operand := range gate.Operands {
		inst.Circuit.RemoveUser(operand, label)
	}

	newType := aig.AlwaysFalse
	if value {
		newType = aig.AlwaysTrue
	}
	if err := inst.Circuit.ReplaceGate(label, newType); err != nil {
		return Conflict, err
	}

	switch gate.Type {
	case aig.Not:
		return inst.assignAndPropagate(gate.Operands[0], !value)

	case aig.And:
		if value {
			for _, operand := range gate.Operands {
				status, err := inst.assignAndPropagate(operand, true)
				if err != nil || status != OK {
					return status, err
				}
			}
			return OK, nil
		}
		lit0, err := inst.CNF.Lit(gate.Operands[0], true)
		if err != nil {
			return Conflict, err
		}
		lit1, err := inst.CNF.Lit(gate.Operands[1], true)
		if err != nil {
			return Conflict, err
		}
		inst.CNF.AddClause(lit0.Negate(), lit1.Negate())
		return OK, nil

	default:
		return Conflict, &aig.StructuralError{Op: "assignAndPropagate", Label: label, Message: "unsupported gate type during propagation"}
	}
}

package simplify

import "github.com/aigcube/aigcube/aig"

// CollapseDoubleNegations rewrites NOT(NOT(x)) to x throughout the circuit.
// It supplements ConstantPropagation: the original cubing pipeline always
// runs a unary-chain merge alongside constant folding, and double negations
// appear naturally once ConstantPropagation forwards a folded AND gate to its
// surviving operand: if that operand is a NOT, a NOT that used the AND now
// sits directly on it. The pass is idempotent.
type CollapseDoubleNegations struct{}

// NewCollapseDoubleNegations creates a CollapseDoubleNegations transformer.
func NewCollapseDoubleNegations() *CollapseDoubleNegations { return &CollapseDoubleNegations{} }

func (CollapseDoubleNegations) Name() string { return "CollapseDoubleNegations" }

// Apply rewrites circuit, folding every NOT(NOT(x)) chain down to x.
func (CollapseDoubleNegations) Apply(circuit *aig.Circuit) (*aig.Circuit, error) {
	order, err := circuit.TopSort()
	if err != nil {
		return nil, err
	}

	next := aig.NewCircuit()
	labelRemap := make(map[string]string)

	resolve := func(label string) string {
		if remapped, ok := labelRemap[label]; ok {
			return remapped
		}
		return label
	}

	for _, g := range order {
		resolvedOperands := make([]string, len(g.Operands))
		for i, op := range g.Operands {
			resolvedOperands[i] = resolve(op)
		}

		if g.Type == aig.Not {
			operandGate, err := next.Gate(resolvedOperands[0])
			if err == nil && operandGate.Type == aig.Not {
				labelRemap[g.Label] = operandGate.Operands[0]
				continue
			}
		}

		if err := next.EmplaceGate(g.Label, g.Type, resolvedOperands...); err != nil {
			return nil, err
		}
	}

	finalInputs := make([]string, 0, len(circuit.Inputs()))
	for _, label := range circuit.Inputs() {
		finalInputs = append(finalInputs, resolve(label))
	}
	next.SetInputs(finalInputs)

	finalOutputs := make([]string, 0, len(circuit.Outputs()))
	for _, label := range circuit.Outputs() {
		finalOutputs = append(finalOutputs, resolve(label))
	}
	next.SetOutputs(finalOutputs)

	return next, nil
}

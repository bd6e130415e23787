// Package simplify implements the AIG rewrite passes the cube driver runs
// after every assignment: constant propagation and double-negation
// collapsing, both expressed as pure functions from one circuit to another
// rather than in-place mutation, so a cube branch can never leak rewrites
// into a sibling branch.
package simplify

import "github.com/aigcube/aigcube/aig"

// Transformer rewrites a circuit into an equivalent, simplified one.
type Transformer interface {
	Apply(circuit *aig.Circuit) (*aig.Circuit, error)
	Name() string
}

// ConstantPropagation folds ALWAYS_TRUE/ALWAYS_FALSE operands through AND and
// NOT gates: a gate with every operand constant becomes a constant itself; an
// AND gate with exactly one constant operand either folds to a constant,
// forwards to its non-constant operand, or is rewritten as a NOT of it,
// depending on the gate's truth table under the two possible values of the
// non-constant operand. The pass is idempotent: running it on an
// already-simplified circuit is a no-op.
type ConstantPropagation struct{}

// NewConstantPropagation creates a ConstantPropagation transformer.
func NewConstantPropagation() *ConstantPropagation { return &ConstantPropagation{} }

func (ConstantPropagation) Name() string { return "ConstantPropagation" }

// Apply rewrites circuit, returning a new circuit with every gate reachable
// through a constant operand folded away.
func (ConstantPropagation) Apply(circuit *aig.Circuit) (*aig.Circuit, error) {
	order, err := circuit.TopSort()
	if err != nil {
		return nil, err
	}

	next := aig.NewCircuit()
	constMap := make(map[string]bool)
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

		switch g.Type {
		case aig.Input:
			if err := next.EmplaceGate(g.Label, aig.Input); err != nil {
				return nil, err
			}
			continue
		case aig.AlwaysTrue:
			constMap[g.Label] = true
			continue
		case aig.AlwaysFalse:
			constMap[g.Label] = false
			continue
		}

		constIdx := -1
		constCount := 0
		for i, op := range resolvedOperands {
			if _, ok := constMap[op]; ok {
				constIdx = i
				constCount++
			}
		}

		if constCount == 0 {
			if err := next.EmplaceGate(g.Label, g.Type, resolvedOperands...); err != nil {
				return nil, err
			}
			continue
		}

		if constCount == 1 && len(resolvedOperands) == 2 {
			nonConstIdx := 1 - constIdx
			nonConstOp := resolvedOperands[nonConstIdx]
			constVal := constMap[resolvedOperands[constIdx]]

			args0 := make([]bool, 2)
			args0[constIdx] = constVal
			args0[nonConstIdx] = false
			val0 := g.Operator(args0[0], args0[1])

			args1 := make([]bool, 2)
			args1[constIdx] = constVal
			args1[nonConstIdx] = true
			val1 := g.Operator(args1[0], args1[1])

			switch {
			case val0 == val1:
				constMap[g.Label] = val0
			case !val0 && val1:
				labelRemap[g.Label] = nonConstOp
			case val0 && !val1:
				if operandGate, err := next.Gate(nonConstOp); err == nil && operandGate.Type == aig.Not {
					labelRemap[g.Label] = operandGate.Operands[0]
				} else if err := next.EmplaceGate(g.Label, aig.Not, nonConstOp); err != nil {
					return nil, err
				}
			default:
				return nil, &aig.StructuralError{Op: "ConstantPropagation", Label: g.Label, Message: "inconsistent truth table"}
			}
			continue
		}

		if constCount == len(resolvedOperands) {
			args := make([]bool, len(resolvedOperands))
			for i, op := range resolvedOperands {
				args[i] = constMap[op]
			}
			var val bool
			switch len(args) {
			case 0:
				val = g.Operator()
			case 1:
				val = g.Operator(args[0])
			default:
				val = g.Operator(args[0], args[1])
			}
			constMap[g.Label] = val
			continue
		}

		return nil, &aig.StructuralError{Op: "ConstantPropagation", Label: g.Label, Message: "unexpected constant-operand arity"}
	}

	finalInputs := make([]string, 0, len(circuit.Inputs()))
	for _, label := range circuit.Inputs() {
		if _, folded := constMap[label]; !folded {
			finalInputs = append(finalInputs, label)
		}
	}
	next.SetInputs(finalInputs)

	finalOutputs := make([]string, 0, len(circuit.Outputs()))
	for _, label := range circuit.Outputs() {
		resolved := resolve(label)
		if _, folded := constMap[resolved]; !folded {
			finalOutputs = append(finalOutputs, resolved)
		}
	}
	next.SetOutputs(finalOutputs)

	return next, nil
}

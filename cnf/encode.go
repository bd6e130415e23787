package cnf

import "github.com/aigcube/aigcube/aig"

// stackFrame is one entry of the explicit post-order traversal stack: a gate
// label plus whether its operands have already been pushed.
type stackFrame struct {
	label    string
	expanded bool
}

// Encode converts an AIG into CNF via an iterative Tseytin transformation:
// one fresh dense variable per gate, a fixed clause template per gate type,
// and the circuit's single output asserted true by a unit clause. The
// traversal is iterative (an explicit stack, not recursion) so encoding does
// not blow the goroutine's stack on a deep circuit.
func Encode(circuit *aig.Circuit) (*CNF, error) {
	c := NewCNF()

	for _, label := range circuit.Inputs() {
		c.VarMap[label] = c.NewVar()
	}

	processAll := func(root string) (int, error) {
		stack := []stackFrame{{label: root}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if _, done := c.VarMap[top.label]; done {
				continue
			}

			gate, err := circuit.Gate(top.label)
			if err != nil {
				return 0, err
			}

			if !top.expanded {
				stack = append(stack, stackFrame{label: top.label, expanded: true})
				for i := len(gate.Operands) - 1; i >= 0; i-- {
					op := gate.Operands[i]
					if _, done := c.VarMap[op]; !done {
						stack = append(stack, stackFrame{label: op})
					}
				}
				continue
			}

			lits := make([]int, len(gate.Operands))
			for i, op := range gate.Operands {
				lits[i] = c.VarMap[op]
			}
			v := c.NewVar()
			c.VarMap[top.label] = v

			switch gate.Type {
			case aig.Input:
				// already allocated above; nothing to encode
			case aig.AlwaysTrue:
				c.AddClause(Literal(v))
			case aig.AlwaysFalse:
				c.AddClause(Literal(-v))
			case aig.Not:
				c.AddClause(Literal(lits[0]), Literal(v))
				c.AddClause(Literal(-lits[0]), Literal(-v))
			case aig.And:
				common := Clause{Literal(v)}
				for _, lit := range lits {
					common = append(common, Literal(-lit))
					c.AddClause(Literal(lit), Literal(-v))
				}
				c.Clauses = append(c.Clauses, common)
			default:
				return 0, &EncodeError{Label: top.label, Message: "unsupported gate type"}
			}
		}
		return c.VarMap[root], nil
	}

	for i := 0; i < circuit.OutputSize(); i++ {
		outLit, err := processAll(circuit.Outputs()[i])
		if err != nil {
			return nil, err
		}
		c.AddClause(Literal(outLit))
	}

	return c, nil
}

// EncodeError reports a gate the Tseytin transform cannot encode.
type EncodeError struct {
	Label   string
	Message string
}

func (e *EncodeError) Error() string {
	return "cnf: encode: gate " + e.Label + ": " + e.Message
}

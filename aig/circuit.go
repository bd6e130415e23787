package aig

// Circuit is a mutable And-Inverter Graph: a set of labeled gates, a
// distinguished input and output set, and a reverse index from a gate to the
// gates that use it as an operand. The reverse index is what lets the
// circuit-SAT instance sever an operand edge in O(1) instead of scanning
// every gate when it replaces a decided gate with a constant.
type Circuit struct {
	gates   map[string]*Gate
	order   []string // insertion order, for deterministic iteration
	inputs  []string
	outputs []string
	users   map[string][]string
}

// NewCircuit creates an empty circuit.
func NewCircuit() *Circuit {
	return &Circuit{
		gates: make(map[string]*Gate),
		users: make(map[string][]string),
	}
}

// EmplaceGate adds a new gate to the circuit and registers it as a user of
// each of its operands. It returns a StructuralError if the label is already
// taken, an operand does not exist, or the operand count does not match the
// gate type's arity.
func (c *Circuit) EmplaceGate(label string, t GateType, operands ...string) error {
	if _, exists := c.gates[label]; exists {
		return &StructuralError{Op: "EmplaceGate", Label: label, Message: "gate already exists"}
	}
	if len(operands) != t.Arity() {
		return &StructuralError{Op: "EmplaceGate", Label: label, Message: "wrong operand arity for gate type"}
	}
	for _, op := range operands {
		if _, ok := c.gates[op]; !ok {
			return &StructuralError{Op: "EmplaceGate", Label: label, Message: "operand " + op + " does not exist"}
		}
	}

	ops := append([]string(nil), operands...)
	c.gates[label] = &Gate{Label: label, Type: t, Operands: ops}
	c.order = append(c.order, label)
	for _, op := range ops {
		c.users[op] = append(c.users[op], label)
	}
	return nil
}

// ReplaceGate overwrites the gate at label with a new type and operand list,
// without touching the users index. Callers that sever operand edges (via
// RemoveUser) before replacing a gate are responsible for keeping the users
// index consistent; this mirrors the direct `_gates[label] = new_gate`
// mutation the constant-propagation algorithm performs.
func (c *Circuit) ReplaceGate(label string, t GateType, operands ...string) error {
	if _, exists := c.gates[label]; !exists {
		return &StructuralError{Op: "ReplaceGate", Label: label, Message: "gate does not exist"}
	}
	if len(operands) != t.Arity() {
		return &StructuralError{Op: "ReplaceGate", Label: label, Message: "wrong operand arity for gate type"}
	}
	c.gates[label] = &Gate{Label: label, Type: t, Operands: append([]string(nil), operands...)}
	return nil
}

// Gate returns the gate with the given label.
func (c *Circuit) Gate(label string) (*Gate, error) {
	g, ok := c.gates[label]
	if !ok {
		return nil, &StructuralError{Op: "Gate", Label: label, Message: "gate does not exist"}
	}
	return g, nil
}

// Gates returns every gate label in insertion order.
func (c *Circuit) Gates() []string {
	return append([]string(nil), c.order...)
}

// Len returns the number of gates in the circuit.
func (c *Circuit) Len() int { return len(c.gates) }

// SetInputs declares the circuit's input gates.
func (c *Circuit) SetInputs(labels []string) {
	c.inputs = append([]string(nil), labels...)
}

// SetOutputs declares the circuit's output gates. The labels are trusted to
// exist; use MarkAsOutput to designate a single output with validation.
func (c *Circuit) SetOutputs(labels []string) {
	c.outputs = append([]string(nil), labels...)
}

// MarkAsOutput appends label to the circuit's output list, failing if no such
// gate exists.
func (c *Circuit) MarkAsOutput(label string) error {
	if _, ok := c.gates[label]; !ok {
		return &StructuralError{Op: "MarkAsOutput", Label: label, Message: "gate does not exist"}
	}
	c.outputs = append(c.outputs, label)
	return nil
}

// Inputs returns the circuit's declared input labels.
func (c *Circuit) Inputs() []string { return append([]string(nil), c.inputs...) }

// Outputs returns the circuit's declared output labels.
func (c *Circuit) Outputs() []string { return append([]string(nil), c.outputs...) }

// OutputSize returns the number of declared outputs.
func (c *Circuit) OutputSize() int { return len(c.outputs) }

// Users returns the labels of the gates that use label as an operand.
func (c *Circuit) Users(label string) []string {
	return append([]string(nil), c.users[label]...)
}

// RemoveUser severs the edge recording that user consumes gateLabel as an
// operand. It is a no-op if the edge is not present.
func (c *Circuit) RemoveUser(gateLabel, user string) {
	users := c.users[gateLabel]
	for i, u := range users {
		if u == user {
			c.users[gateLabel] = append(users[:i], users[i+1:]...)
			return
		}
	}
}

// ReplaceInputs rewrites the named inputs into constant gates: toTrue
// becomes ALWAYS_TRUE, toFalse becomes ALWAYS_FALSE. The rewritten labels are
// removed from the input list. It is an error to name a label that is not a
// current input.
func (c *Circuit) ReplaceInputs(toTrue, toFalse []string) error {
	fixed := make(map[string]bool, len(toTrue)+len(toFalse))
	for _, label := range toTrue {
		fixed[label] = true
	}
	for _, label := range toFalse {
		fixed[label] = false
	}

	for label, value := range fixed {
		g, ok := c.gates[label]
		if !ok || g.Type != Input {
			return &StructuralError{Op: "ReplaceInputs", Label: label, Message: "not a current input"}
		}
		t := AlwaysFalse
		if value {
			t = AlwaysTrue
		}
		c.gates[label] = &Gate{Label: label, Type: t}
	}

	remaining := c.inputs[:0:0]
	for _, label := range c.inputs {
		if _, fixedNow := fixed[label]; !fixedNow {
			remaining = append(remaining, label)
		}
	}
	c.inputs = remaining
	return nil
}

// Clone returns a deep copy of the circuit: every gate, the users index, and
// the input/output lists are copied so mutating the clone (as a cube branch
// does) never affects the original.
func (c *Circuit) Clone() *Circuit {
	next := &Circuit{
		gates:   make(map[string]*Gate, len(c.gates)),
		order:   append([]string(nil), c.order...),
		inputs:  append([]string(nil), c.inputs...),
		outputs: append([]string(nil), c.outputs...),
		users:   make(map[string][]string, len(c.users)),
	}
	for label, g := range c.gates {
		next.gates[label] = &Gate{
			Label:    g.Label,
			Type:     g.Type,
			Operands: append([]string(nil), g.Operands...),
		}
	}
	for label, users := range c.users {
		next.users[label] = append([]string(nil), users...)
	}
	return next
}

// Evaluate computes the value of every gate under a complete input
// assignment, returning a map from gate label to value. Besides tests, the
// solving path uses it only to decide a circuit whose output simplifies to a
// constant.
func (c *Circuit) Evaluate(assignment map[string]bool) (map[string]bool, error) {
	order, err := c.TopSort()
	if err != nil {
		return nil, err
	}
	values := make(map[string]bool, len(order))
	for _, g := range order {
		switch g.Type {
		case Input:
			v, ok := assignment[g.Label]
			if !ok {
				return nil, &StructuralError{Op: "Evaluate", Label: g.Label, Message: "input has no assigned value"}
			}
			values[g.Label] = v
		case AlwaysTrue, AlwaysFalse:
			values[g.Label] = g.Operator()
		case Not:
			values[g.Label] = g.Operator(values[g.Operands[0]])
		case And:
			values[g.Label] = g.Operator(values[g.Operands[0]], values[g.Operands[1]])
		default:
			return nil, &StructuralError{Op: "Evaluate", Label: g.Label, Message: "unsupported gate type"}
		}
	}
	return values, nil
}

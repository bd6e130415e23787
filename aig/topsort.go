package aig

// TopSort returns every gate in the circuit ordered so that a gate always
// appears after its operands (Kahn's algorithm over the operand relation).
// Constant propagation and double-negation collapsing both rely on this order to
// guarantee an operand's replacement value is already known by the time its
// dependent gate is visited.
func (c *Circuit) TopSort() ([]*Gate, error) {
	indegree := make(map[string]int, len(c.gates))
	for label, g := range c.gates {
		indegree[label] = len(g.Operands)
	}

	queue := make([]string, 0, len(c.gates))
	for _, label := range c.order {
		if indegree[label] == 0 {
			queue = append(queue, label)
		}
	}

	// users[op] lists dependents; decrementing their indegree as operands are
	// emitted is the standard Kahn's-algorithm frontier expansion.
	result := make([]*Gate, 0, len(c.gates))
	visited := make(map[string]bool, len(c.gates))
	for len(queue) > 0 {
		label := queue[0]
		queue = queue[1:]
		if visited[label] {
			continue
		}
		visited[label] = true
		result = append(result, c.gates[label])

		for _, dependent := range c.users[label] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(c.gates) {
		return nil, &StructuralError{Op: "TopSort", Message: "circuit contains a cycle"}
	}
	return result, nil
}

// TopSortFromOutputs returns the gates in the opposite orientation: every
// gate appears before its operands, outputs first.
func (c *Circuit) TopSortFromOutputs() ([]*Gate, error) {
	order, err := c.TopSort()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order, nil
}

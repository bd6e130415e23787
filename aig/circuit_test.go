package aig

import "testing"

func buildAndCircuit(t *testing.T) *Circuit {
	t.Helper()
	c := NewCircuit()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	must(c.EmplaceGate("a", Input))
	must(c.EmplaceGate("b", Input))
	must(c.EmplaceGate("g1", And, "a", "b"))
	must(c.EmplaceGate("g2", Not, "g1"))
	c.SetInputs([]string{"a", "b"})
	c.SetOutputs([]string{"g2"})
	return c
}

func TestCircuitEmplaceGateValidatesArity(t *testing.T) {
	c := NewCircuit()
	if err := c.EmplaceGate("a", Input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.EmplaceGate("bad", And, "a"); err == nil {
		t.Fatalf("expected arity error for AND gate with one operand")
	}
	if err := c.EmplaceGate("missing", Not, "does-not-exist"); err == nil {
		t.Fatalf("expected error for missing operand")
	}
}

func TestCircuitUsersAndRemoveUser(t *testing.T) {
	c := buildAndCircuit(t)
	users := c.Users("g1")
	if len(users) != 1 || users[0] != "g2" {
		t.Fatalf("Users(g1) = %v, want [g2]", users)
	}
	c.RemoveUser("g1", "g2")
	if len(c.Users("g1")) != 0 {
		t.Fatalf("expected no users after RemoveUser")
	}
}

func TestCircuitTopSortOrdersOperandsFirst(t *testing.T) {
	c := buildAndCircuit(t)
	order, err := c.TopSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := make(map[string]int, len(order))
	for i, g := range order {
		pos[g.Label] = i
	}
	if pos["a"] >= pos["g1"] || pos["b"] >= pos["g1"] {
		t.Fatalf("inputs must precede g1 in topological order: %v", pos)
	}
	if pos["g1"] >= pos["g2"] {
		t.Fatalf("g1 must precede g2 in topological order: %v", pos)
	}
}

func TestCircuitEvaluate(t *testing.T) {
	c := buildAndCircuit(t)
	values, err := c.Evaluate(map[string]bool{"a": true, "b": false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values["g1"] != false {
		t.Fatalf("g1 = %v, want false", values["g1"])
	}
	if values["g2"] != true {
		t.Fatalf("g2 = %v, want true", values["g2"])
	}
}

func TestCircuitReplaceInputs(t *testing.T) {
	c := buildAndCircuit(t)
	if err := c.ReplaceInputs([]string{"a"}, []string{"b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, err := c.Gate("a")
	if err != nil || g.Type != AlwaysTrue {
		t.Fatalf("a should be ALWAYS_TRUE, got %v, err=%v", g, err)
	}
	g, err = c.Gate("b")
	if err != nil || g.Type != AlwaysFalse {
		t.Fatalf("b should be ALWAYS_FALSE, got %v, err=%v", g, err)
	}
	if len(c.Inputs()) != 0 {
		t.Fatalf("expected no remaining inputs, got %v", c.Inputs())
	}
}

func TestCircuitMarkAsOutput(t *testing.T) {
	c := buildAndCircuit(t)
	c.SetOutputs(nil)
	if err := c.MarkAsOutput("g1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outs := c.Outputs(); len(outs) != 1 || outs[0] != "g1" {
		t.Fatalf("Outputs() = %v, want [g1]", outs)
	}
	if err := c.MarkAsOutput("does-not-exist"); err == nil {
		t.Fatalf("expected error for unknown gate")
	}
}

func TestCircuitTopSortFromOutputsReversesOrientation(t *testing.T) {
	c := buildAndCircuit(t)
	order, err := c.TopSortFromOutputs()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := make(map[string]int, len(order))
	for i, g := range order {
		pos[g.Label] = i
	}
	if pos["g2"] >= pos["g1"] || pos["g1"] >= pos["a"] {
		t.Fatalf("outputs must precede their operands: %v", pos)
	}
}

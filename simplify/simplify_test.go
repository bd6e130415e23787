package simplify

import (
	"testing"

	"github.com/aigcube/aigcube/aig"
)

func mustEmplace(t *testing.T, c *aig.Circuit, label string, gt aig.GateType, operands ...string) {
	t.Helper()
	if err := c.EmplaceGate(label, gt, operands...); err != nil {
		t.Fatalf("EmplaceGate(%q): %v", label, err)
	}
}

func TestConstantPropagationFoldsAndWithFalseOperand(t *testing.T) {
	c := aig.NewCircuit()
	mustEmplace(t, c, "a", aig.Input)
	mustEmplace(t, c, "zero", aig.AlwaysFalse)
	mustEmplace(t, c, "g1", aig.And, "a", "zero")
	c.SetInputs([]string{"a"})
	c.SetOutputs([]string{"g1"})

	out, err := ConstantPropagation{}.Apply(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Outputs()) != 0 {
		t.Fatalf("expected g1 to fold away as a constant output, got %v", out.Outputs())
	}
}

func TestConstantPropagationForwardsThroughTrueOperand(t *testing.T) {
	c := aig.NewCircuit()
	mustEmplace(t, c, "a", aig.Input)
	mustEmplace(t, c, "one", aig.AlwaysTrue)
	mustEmplace(t, c, "g1", aig.And, "a", "one")
	c.SetInputs([]string{"a"})
	c.SetOutputs([]string{"g1"})

	out, err := ConstantPropagation{}.Apply(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Outputs()) != 1 || out.Outputs()[0] != "a" {
		t.Fatalf("expected output to forward to gate a, got %v", out.Outputs())
	}
}

func TestConstantPropagationIsIdempotent(t *testing.T) {
	c := aig.NewCircuit()
	mustEmplace(t, c, "a", aig.Input)
	mustEmplace(t, c, "b", aig.Input)
	mustEmplace(t, c, "g1", aig.And, "a", "b")
	c.SetInputs([]string{"a", "b"})
	c.SetOutputs([]string{"g1"})

	once, err := ConstantPropagation{}.Apply(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := ConstantPropagation{}.Apply(once)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(once.Gates()) != len(twice.Gates()) {
		t.Fatalf("second application changed gate count: %d vs %d", len(once.Gates()), len(twice.Gates()))
	}
}

func TestCollapseDoubleNegations(t *testing.T) {
	c := aig.NewCircuit()
	mustEmplace(t, c, "a", aig.Input)
	mustEmplace(t, c, "n1", aig.Not, "a")
	mustEmplace(t, c, "n2", aig.Not, "n1")
	c.SetInputs([]string{"a"})
	c.SetOutputs([]string{"n2"})

	out, err := CollapseDoubleNegations{}.Apply(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Outputs()) != 1 || out.Outputs()[0] != "a" {
		t.Fatalf("expected double negation to collapse to a, got %v", out.Outputs())
	}
}

func TestConstantPropagationPreservesOutputFunction(t *testing.T) {
	c := aig.NewCircuit()
	mustEmplace(t, c, "a", aig.Input)
	mustEmplace(t, c, "b", aig.Input)
	mustEmplace(t, c, "one", aig.AlwaysTrue)
	mustEmplace(t, c, "g1", aig.And, "a", "one")
	mustEmplace(t, c, "n1", aig.Not, "g1")
	mustEmplace(t, c, "g2", aig.And, "n1", "b")
	c.SetInputs([]string{"a", "b"})
	c.SetOutputs([]string{"g2"})

	out, err := ConstantPropagation{}.Apply(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for mask := 0; mask < 4; mask++ {
		assignment := map[string]bool{"a": mask&1 != 0, "b": mask&2 != 0}
		origValues, err := c.Evaluate(assignment)
		if err != nil {
			t.Fatalf("Evaluate(original): %v", err)
		}
		simpValues, err := out.Evaluate(assignment)
		if err != nil {
			t.Fatalf("Evaluate(simplified): %v", err)
		}
		want := origValues[c.Outputs()[0]]
		got := simpValues[out.Outputs()[0]]
		if got != want {
			t.Fatalf("output differs at a=%v b=%v: original %v, simplified %v", assignment["a"], assignment["b"], want, got)
		}
	}
}

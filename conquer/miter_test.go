package conquer

import (
	"testing"

	"github.com/aigcube/aigcube/aig"
	"github.com/aigcube/aigcube/cube"
)

// buildXOR wires XOR(a,b) out of AND and NOT gates under the given label
// prefix and returns the label of the resulting gate:
// XOR(a,b) = AND(NOT(AND(a,b)), NOT(AND(NOT(a),NOT(b)))).
func buildXOR(t *testing.T, c *aig.Circuit, prefix, a, b string) string {
	t.Helper()
	mustEmplace(t, c, prefix+"_na", aig.Not, a)
	mustEmplace(t, c, prefix+"_nb", aig.Not, b)
	mustEmplace(t, c, prefix+"_both", aig.And, a, b)
	mustEmplace(t, c, prefix+"_neither", aig.And, prefix+"_na", prefix+"_nb")
	mustEmplace(t, c, prefix+"_nboth", aig.Not, prefix+"_both")
	mustEmplace(t, c, prefix+"_nneither", aig.Not, prefix+"_neither")
	mustEmplace(t, c, prefix+"_xor", aig.And, prefix+"_nboth", prefix+"_nneither")
	return prefix + "_xor"
}

// bruteForceSAT decides satisfiability of the circuit's single output by
// exhaustive truth-table enumeration. Only usable for small input counts.
func bruteForceSAT(t *testing.T, c *aig.Circuit) bool {
	t.Helper()
	inputs := c.Inputs()
	for mask := 0; mask < 1<<len(inputs); mask++ {
		assignment := make(map[string]bool, len(inputs))
		for i, label := range inputs {
			assignment[label] = mask&(1<<i) != 0
		}
		values, err := c.Evaluate(assignment)
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if values[c.Outputs()[0]] {
			return true
		}
	}
	return false
}

func checkAgainstBruteForce(t *testing.T, c *aig.Circuit) {
	t.Helper()
	want := bruteForceSAT(t, c)
	result, err := Solve(c, cube.NewDriver(), NewCDCLBackend(), nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Unknown {
		t.Fatalf("Solve returned UNKNOWN; brute force says SAT=%v", want)
	}
	if result.Satisfiable != want {
		t.Fatalf("Solve = %v, brute force = %v", result.Satisfiable, want)
	}
}

func TestMiterOfIdenticalXORCircuitsIsUnsat(t *testing.T) {
	c := aig.NewCircuit()
	mustEmplace(t, c, "a", aig.Input)
	mustEmplace(t, c, "b", aig.Input)
	x1 := buildXOR(t, c, "x1", "a", "b")
	x2 := buildXOR(t, c, "x2", "a", "b")
	m := buildXOR(t, c, "m", x1, x2)
	c.SetInputs([]string{"a", "b"})
	c.SetOutputs([]string{m})

	result, err := Solve(c, cube.NewDriver(), NewCDCLBackend(), nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Satisfiable || result.Unknown {
		t.Fatalf("miter of a circuit against itself must be UNSAT, got %+v", result)
	}
	checkAgainstBruteForce(t, c)
}

func TestMiterOfXORAgainstANDIsSat(t *testing.T) {
	c := aig.NewCircuit()
	mustEmplace(t, c, "a", aig.Input)
	mustEmplace(t, c, "b", aig.Input)
	x1 := buildXOR(t, c, "x1", "a", "b")
	mustEmplace(t, c, "g_and", aig.And, "a", "b")
	m := buildXOR(t, c, "m", x1, "g_and")
	c.SetInputs([]string{"a", "b"})
	c.SetOutputs([]string{m})

	result, err := Solve(c, cube.NewDriver(), NewCDCLBackend(), nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !result.Satisfiable {
		t.Fatalf("XOR and AND differ on a=1,b=0 and a=0,b=1; miter must be SAT")
	}
	checkAgainstBruteForce(t, c)
}

func TestMiterDetectsStuckAtOne(t *testing.T) {
	// Reference circuit computes NOT(x); the faulty one is stuck at constant
	// true. The miter simplifies to x, so the only distinguishing input is x=1.
	c := aig.NewCircuit()
	mustEmplace(t, c, "x", aig.Input)
	mustEmplace(t, c, "nx", aig.Not, "x")
	mustEmplace(t, c, "stuck", aig.AlwaysTrue)
	m := buildXOR(t, c, "m", "nx", "stuck")
	c.SetInputs([]string{"x"})
	c.SetOutputs([]string{m})

	result, err := Solve(c, cube.NewDriver(), NewCDCLBackend(), nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !result.Satisfiable {
		t.Fatalf("stuck-at-one miter must be SAT (at x=1)")
	}
	checkAgainstBruteForce(t, c)
}

func TestMiterOfCircuitAgainstItsNegationIsSat(t *testing.T) {
	c := aig.NewCircuit()
	mustEmplace(t, c, "a", aig.Input)
	mustEmplace(t, c, "b", aig.Input)
	mustEmplace(t, c, "g_and", aig.And, "a", "b")
	mustEmplace(t, c, "g_nand", aig.Not, "g_and")
	m := buildXOR(t, c, "m", "g_and", "g_nand")
	c.SetInputs([]string{"a", "b"})
	c.SetOutputs([]string{m})

	result, err := Solve(c, cube.NewDriver(), NewCDCLBackend(), nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !result.Satisfiable {
		t.Fatalf("a circuit always differs from its own negation; miter must be SAT")
	}
	checkAgainstBruteForce(t, c)
}

func TestCandidatesLimitDoesNotChangeAnswer(t *testing.T) {
	build := func() *aig.Circuit {
		c := aig.NewCircuit()
		mustEmplace(t, c, "a", aig.Input)
		mustEmplace(t, c, "b", aig.Input)
		x1 := buildXOR(t, c, "x1", "a", "b")
		mustEmplace(t, c, "g_and", aig.And, "a", "b")
		m := buildXOR(t, c, "m", x1, "g_and")
		c.SetInputs([]string{"a", "b"})
		c.SetOutputs([]string{m})
		return c
	}

	for _, k := range []int{1, 2, 10} {
		driver := cube.NewDriverWithLimits(cube.DefaultMaxDepth, k)
		result, err := Solve(build(), driver, NewCDCLBackend(), nil)
		if err != nil {
			t.Fatalf("Solve(k=%d): %v", k, err)
		}
		if !result.Satisfiable {
			t.Fatalf("answer must not depend on the candidate limit; k=%d gave UNSAT", k)
		}
	}
}

package cnf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aigcube/aigcube/aig"
)

func buildNotAndCircuit(t *testing.T) *aig.Circuit {
	t.Helper()
	c := aig.NewCircuit()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	must(c.EmplaceGate("a", aig.Input))
	must(c.EmplaceGate("b", aig.Input))
	must(c.EmplaceGate("g1", aig.And, "a", "b"))
	must(c.EmplaceGate("g2", aig.Not, "g1"))
	c.SetInputs([]string{"a", "b"})
	c.SetOutputs([]string{"g2"})
	return c
}

func TestEncodeAssignsOneVariablePerGate(t *testing.T) {
	circuit := buildNotAndCircuit(t)
	formula, err := Encode(circuit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if formula.NumVars != 4 {
		t.Fatalf("NumVars = %d, want 4", formula.NumVars)
	}
	for _, label := range []string{"a", "b", "g1", "g2"} {
		if _, ok := formula.Var(label); !ok {
			t.Fatalf("expected a variable for gate %q", label)
		}
	}
}

func TestEncodeAssertsOutputTrue(t *testing.T) {
	circuit := buildNotAndCircuit(t)
	formula, err := Encode(circuit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outVar, _ := formula.Var("g2")
	found := false
	for _, clause := range formula.Clauses {
		if len(clause) == 1 && clause[0] == Literal(outVar) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a unit clause asserting the output variable true")
	}
}

func TestWriteDIMACSFormat(t *testing.T) {
	circuit := buildNotAndCircuit(t)
	formula, err := Encode(circuit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteDIMACS(&buf, formula); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if !strings.HasPrefix(lines[0], "p cnf ") {
		t.Fatalf("first line = %q, want DIMACS header", lines[0])
	}
	if len(lines) != len(formula.Clauses)+1 {
		t.Fatalf("got %d lines, want %d (header + one per clause)", len(lines), len(formula.Clauses)+1)
	}
	for _, line := range lines[1:] {
		if !strings.HasSuffix(line, " 0") {
			t.Fatalf("clause line %q does not end in terminating 0", line)
		}
	}
}

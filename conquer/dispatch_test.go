package conquer

import (
	"testing"

	"github.com/aigcube/aigcube/aig"
	"github.com/aigcube/aigcube/cnf"
	"github.com/aigcube/aigcube/cube"
	"github.com/aigcube/aigcube/instance"
)

func mustEmplace(t *testing.T, c *aig.Circuit, label string, gt aig.GateType, operands ...string) {
	t.Helper()
	if err := c.EmplaceGate(label, gt, operands...); err != nil {
		t.Fatalf("EmplaceGate(%q): %v", label, err)
	}
}

func TestSolveSatisfiableCircuit(t *testing.T) {
	c := aig.NewCircuit()
	mustEmplace(t, c, "a", aig.Input)
	mustEmplace(t, c, "b", aig.Input)
	mustEmplace(t, c, "g1", aig.And, "a", "b")
	c.SetInputs([]string{"a", "b"})
	c.SetOutputs([]string{"g1"})

	result, err := Solve(c, cube.NewDriver(), NewCDCLBackend(), nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !result.Satisfiable {
		t.Fatalf("expected SAT")
	}
}

func TestSolveUnsatisfiableCircuit(t *testing.T) {
	c := aig.NewCircuit()
	mustEmplace(t, c, "a", aig.Input)
	mustEmplace(t, c, "na", aig.Not, "a")
	mustEmplace(t, c, "g1", aig.And, "a", "na")
	c.SetInputs([]string{"a"})
	c.SetOutputs([]string{"g1"})

	result, err := Solve(c, cube.NewDriver(), NewCDCLBackend(), nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Satisfiable {
		t.Fatalf("expected UNSAT")
	}
}

func TestSolveTrivialOutputNeverCallsBackend(t *testing.T) {
	c := aig.NewCircuit()
	mustEmplace(t, c, "a", aig.Input)
	mustEmplace(t, c, "zero", aig.AlwaysFalse)
	mustEmplace(t, c, "g1", aig.And, "a", "zero")
	c.SetInputs([]string{"a"})
	c.SetOutputs([]string{"g1"})

	result, err := Solve(c, cube.NewDriver(), &panicBackend{t: t}, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if result.Satisfiable {
		t.Fatalf("expected UNSAT")
	}
}

type panicBackend struct{ t *testing.T }

func (p *panicBackend) Name() string { return "panic" }
func (p *panicBackend) Solve(formula *cnf.CNF) (*Result, error) {
	p.t.Fatalf("backend should not be invoked for a trivial circuit")
	return nil, nil
}

type scriptedBackend struct {
	results []*Result
	calls   int
}

func (s *scriptedBackend) Name() string { return "scripted" }
func (s *scriptedBackend) Solve(formula *cnf.CNF) (*Result, error) {
	res := s.results[s.calls]
	s.calls++
	return res, nil
}

func buildCubes(t *testing.T, n int) []*instance.CircuitSatInstance {
	t.Helper()
	c := aig.NewCircuit()
	mustEmplace(t, c, "a", aig.Input)
	mustEmplace(t, c, "b", aig.Input)
	mustEmplace(t, c, "g1", aig.And, "a", "b")
	c.SetInputs([]string{"a", "b"})
	c.SetOutputs([]string{"g1"})
	inst, status, err := instance.FromCircuit(c)
	if err != nil || status != instance.OK {
		t.Fatalf("FromCircuit: status=%v err=%v", status, err)
	}
	cubes := make([]*instance.CircuitSatInstance, n)
	for i := range cubes {
		cubes[i] = inst.Clone()
	}
	return cubes
}

func TestDispatchContinuesPastUnknownCube(t *testing.T) {
	backend := &scriptedBackend{results: []*Result{
		{Unknown: true},
		{Satisfiable: true, Model: []int{1, 2}},
	}}
	result, err := Dispatch(backend, buildCubes(t, 2), nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !result.Satisfiable {
		t.Fatalf("expected SAT from the second cube after an unknown first one")
	}
	if backend.calls != 2 {
		t.Fatalf("backend called %d times, want 2", backend.calls)
	}
}

func TestDispatchReportsUnknownWhenNoCubeIsSat(t *testing.T) {
	backend := &scriptedBackend{results: []*Result{
		{Satisfiable: false},
		{Unknown: true},
	}}
	result, err := Dispatch(backend, buildCubes(t, 2), nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !result.Unknown {
		t.Fatalf("an undecided cube with no SAT cube must make the answer UNKNOWN, got %+v", result)
	}
}

func TestDispatchAllUnsatCubesIsUnsat(t *testing.T) {
	backend := &scriptedBackend{results: []*Result{
		{Satisfiable: false},
		{Satisfiable: false},
	}}
	result, err := Dispatch(backend, buildCubes(t, 2), nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Satisfiable || result.Unknown {
		t.Fatalf("all-UNSAT cubes must yield UNSAT, got %+v", result)
	}
}

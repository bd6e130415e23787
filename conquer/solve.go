package conquer

import (
	"github.com/aigcube/aigcube/aig"
	"github.com/aigcube/aigcube/cube"
)

// Solve runs the full cube-and-conquer pipeline: the Cube stage decomposes
// circuit with driver, then Dispatch hands every leaf cube to backend,
// short-circuiting the moment one comes back satisfiable. If the Cube stage
// can decide the answer on its own (a constant-output circuit), backend is
// never invoked.
func Solve(circuit *aig.Circuit, driver *cube.Driver, backend Backend, progress Progress) (*Result, error) {
	outcome, err := driver.Cube(circuit)
	if err != nil {
		return nil, err
	}
	if outcome.Trivial != nil {
		return &Result{Satisfiable: *outcome.Trivial}, nil
	}
	return Dispatch(backend, outcome.Cubes, progress)
}

package conquer

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/aigcube/aigcube/instance"
)

// Progress is called once per cube as it is dispatched, letting a caller
// (typically the CLI) print per-cube status the way the upstream scripts do.
type Progress func(index, total int, result *Result, elapsed time.Duration)

// Dispatch runs backend over cubes in order, stopping at the first cube it
// proves satisfiable. An Unknown verdict for a cube is not fatal: dispatch
// moves on to the next one, and a backend error is logged and counted as an
// Unknown verdict for that cube. The formula is UNSAT only if every cube is;
// if no cube is SAT but at least one came back Unknown, the overall result
// is Unknown too, since the undecided cube could hide a model.
func Dispatch(b Backend, cubes []*instance.CircuitSatInstance, progress Progress) (*Result, error) {
	sawUnknown := false
	for i, cube := range cubes {
		start := time.Now()
		res, err := b.Solve(cube.CNF)
		elapsed := time.Since(start)
		if err != nil {
			log.Warnf("cube %d/%d: backend %s failed: %v", i+1, len(cubes), b.Name(), err)
			res = &Result{Unknown: true}
		}
		if progress != nil {
			progress(i, len(cubes), res, elapsed)
		}
		if res.Unknown {
			log.Warnf("cube %d/%d: backend %s could not decide, continuing", i+1, len(cubes), b.Name())
			sawUnknown = true
			continue
		}
		if res.Satisfiable {
			log.Debugf("cube %d/%d: SAT after %s, stopping", i+1, len(cubes), elapsed)
			return reconstructModel(cube), nil
		}
		log.Debugf("cube %d/%d: UNSAT after %s", i+1, len(cubes), elapsed)
	}
	if sawUnknown {
		return &Result{Unknown: true}, nil
	}
	return &Result{Satisfiable: false}, nil
}

// reconstructModel builds a full DIMACS-style model from the values the cube
// stage fixed on input gates along the path to this leaf. A gate whose value
// was instead resolved inside the backend's own search (because cubing
// stopped at max depth with inputs still free) is left at 0: the same
// limitation the cube-and-conquer algorithm this is based on has, since the
// model comes from the cube's decision history, not from the backend result.
func reconstructModel(cube *instance.CircuitSatInstance) *Result {
	model := make([]int, cube.CNF.NumVars)
	for _, cfg := range cube.GatesConfig {
		if !cfg.IsInput || cfg.Value == nil {
			continue
		}
		idx := cfg.Var - 1
		if idx < 0 || idx >= len(model) {
			continue
		}
		if *cfg.Value {
			model[idx] = cfg.Var
		} else {
			model[idx] = -cfg.Var
		}
	}
	return &Result{Satisfiable: true, Model: model}
}

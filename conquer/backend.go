// Package conquer implements the Conquer stage of cube-and-conquer: it
// drives a pluggable SAT backend over the leaf instances the cube driver
// produced, stopping at the first satisfiable cube and reconstructing the
// input values the cube stage fixed from the cube's gate configuration.
package conquer

import (
	"fmt"
	"strconv"

	"github.com/aigcube/aigcube/backend"
	"github.com/aigcube/aigcube/cnf"
)

// Backend decides the satisfiability of one cube's CNF encoding.
type Backend interface {
	Name() string
	Solve(formula *cnf.CNF) (*Result, error)
}

// Result is the outcome of solving one cube.
type Result struct {
	// Satisfiable is only meaningful when Unknown is false.
	Satisfiable bool
	// Model is a DIMACS-style array, one entry per CNF variable: Model[v-1]
	// is v if the variable is true, -v if false, 0 if undetermined. Nil
	// unless Satisfiable.
	Model []int
	// Unknown reports that the backend could not decide this cube (e.g. an
	// external solver timed out or exited with an unrecognized code). An
	// unknown cube is not a failure: the conquer loop moves on to the next
	// one instead of aborting.
	Unknown bool
}

// BackendFailure reports a hard failure in a Backend (not a inconclusive
// "unknown" verdict, which is not an error).
type BackendFailure struct {
	Op      string
	Message string
}

func (e *BackendFailure) Error() string {
	return fmt.Sprintf("conquer: %s: %s", e.Op, e.Message)
}

// cdclBackend adapts backend.CDCLBackend, which is string-keyed, to the
// int-keyed cnf.CNF the cube stage produces.
type cdclBackend struct {
	impl *backend.CDCLBackend
}

// NewCDCLBackend returns the default in-process Backend: the package's own
// CDCL solver, bridged from DIMACS-style integer variables to the backend's
// named-literal representation.
func NewCDCLBackend() Backend {
	return &cdclBackend{impl: backend.New()}
}

func (b *cdclBackend) Name() string { return b.impl.Name() }

func (b *cdclBackend) Solve(formula *cnf.CNF) (*Result, error) {
	bridged := backend.NewCNF()
	for _, clause := range formula.Clauses {
		lits := make([]backend.Literal, len(clause))
		for i, lit := range clause {
			lits[i] = backend.Literal{Variable: varName(lit.Var()), Negated: lit.Negated()}
		}
		bridged.AddClause(backend.NewClause(lits...))
	}

	res := b.impl.Solve(bridged)
	if res.Error != nil {
		return &Result{Unknown: true}, nil
	}
	if !res.Satisfiable {
		return &Result{Satisfiable: false}, nil
	}

	model := make([]int, formula.NumVars)
	for v := 1; v <= formula.NumVars; v++ {
		value, ok := res.Assignment[varName(v)]
		if !ok {
			continue
		}
		if value {
			model[v-1] = v
		} else {
			model[v-1] = -v
		}
	}
	return &Result{Satisfiable: true, Model: model}, nil
}

func varName(v int) string { return "v" + strconv.Itoa(v) }

// Package cube implements the Cube stage of cube-and-conquer: it picks
// branching gates directly on the AIG (instead of on its CNF encoding) and
// recursively splits a circuit-SAT instance into a set of leaf instances,
// each simple enough to hand to a CDCL backend in the Conquer stage.
package cube

import (
	"sort"

	"github.com/aigcube/aigcube/aig"
	"github.com/aigcube/aigcube/instance"
	"github.com/aigcube/aigcube/simplify"
)

// Defaults for the two tunables of the gate-selection heuristic: how deep
// the cube recursion goes, and how many top-scoring candidates the
// lookahead stage re-examines.
const (
	DefaultMaxDepth        = 4
	DefaultCandidatesLimit = 10
)

// InternalInvariantViolation reports a cube-selection invariant that the
// algorithm guarantees can never fail (every candidate weighs at least one,
// a non-empty candidate list always yields a best label). Seeing one means
// a bug in the driver, not a problem with the input circuit.
type InternalInvariantViolation struct {
	Op      string
	Label   string
	Message string
}

func (e *InternalInvariantViolation) Error() string {
	msg := "cube: " + e.Op + ": " + e.Message
	if e.Label != "" {
		msg += " (gate " + e.Label + ")"
	}
	return msg
}

// Driver runs the Cube stage with a fixed max depth and candidates limit.
type Driver struct {
	MaxDepth        int
	CandidatesLimit int

	constProp  simplify.Transformer
	mergeUnary simplify.Transformer
}

// NewDriver creates a Driver with the default depth and candidates limit.
func NewDriver() *Driver {
	return NewDriverWithLimits(DefaultMaxDepth, DefaultCandidatesLimit)
}

// NewDriverWithLimits creates a Driver with explicit tunables.
func NewDriverWithLimits(maxDepth, candidatesLimit int) *Driver {
	return &Driver{
		MaxDepth:        maxDepth,
		CandidatesLimit: candidatesLimit,
		constProp:       simplify.NewConstantPropagation(),
		mergeUnary:      simplify.NewCollapseDoubleNegations(),
	}
}

// Outcome is the result of the Cube stage: either the circuit's satisfiability
// was decided trivially (Trivial non-nil, Cubes empty) or it was split into a
// set of leaf instances for the Conquer stage to solve.
type Outcome struct {
	Trivial *bool
	Cubes   []*instance.CircuitSatInstance
}

// Cube runs the Cube stage on circuit, which must have exactly one output.
func (d *Driver) Cube(circuit *aig.Circuit) (*Outcome, error) {
	if circuit.OutputSize() != 1 {
		return nil, &aig.StructuralError{Op: "Cube", Message: "circuit must have exactly one output"}
	}

	simplified, err := d.constProp.Apply(circuit)
	if err != nil {
		return nil, err
	}
	simplified, err = d.mergeUnary.Apply(simplified)
	if err != nil {
		return nil, err
	}

	if simplified.OutputSize() == 0 {
		zeroInputs := make(map[string]bool, len(circuit.Inputs()))
		for _, label := range circuit.Inputs() {
			zeroInputs[label] = false
		}
		values, err := circuit.Evaluate(zeroInputs)
		if err != nil {
			return nil, err
		}
		answer := values[circuit.Outputs()[0]]
		return &Outcome{Trivial: &answer}, nil
	}

	inst, status, err := instance.FromCircuit(simplified)
	if err != nil {
		return nil, err
	}
	if status == instance.Conflict {
		return &Outcome{}, nil
	}

	cubes, err := d.cube(inst, 0)
	if err != nil {
		return nil, err
	}
	return &Outcome{Cubes: cubes}, nil
}

func (d *Driver) cube(inst *instance.CircuitSatInstance, depth int) ([]*instance.CircuitSatInstance, error) {
	if d.shouldStop(inst, depth) {
		return []*instance.CircuitSatInstance{inst}, nil
	}

	selection, err := d.selectGate(inst)
	if err != nil {
		return nil, err
	}
	if selection == nil {
		return []*instance.CircuitSatInstance{inst}, nil
	}

	if selection.forced {
		status, err := inst.Assign(selection.label, selection.forcedValue)
		if err != nil {
			return nil, err
		}
		if status == instance.Conflict {
			// both polarities conflict: this whole branch is unsatisfiable
			return nil, nil
		}
		return d.cube(inst, depth+1)
	}

	var result []*instance.CircuitSatInstance
	for _, value := range [...]bool{false, true} {
		branch := inst.Clone()
		status, err := branch.Assign(selection.label, value)
		if err != nil {
			return nil, err
		}
		if status == instance.Conflict {
			continue
		}
		sub, err := d.cube(branch, depth+1)
		if err != nil {
			return nil, err
		}
		result = append(result, sub...)
	}
	return result, nil
}

func (d *Driver) shouldStop(inst *instance.CircuitSatInstance, depth int) bool {
	if len(inst.Circuit.Inputs()) == 0 {
		return true
	}
	return depth >= d.MaxDepth
}

type gateSelection struct {
	label       string
	forced      bool
	forcedValue bool
}

type gateWeight struct {
	weight      int
	forcedValue *bool
}

// selectGate picks the next branching gate in two stages: a structural score
// ranks candidates, then a lookahead weight (how much each polarity shrinks
// the circuit) picks among the top-ranked ones. A candidate whose opposite
// polarity conflicts is immediately forced.
func (d *Driver) selectGate(inst *instance.CircuitSatInstance) (*gateSelection, error) {
	candidates := d.rankCandidates(inst)
	if len(candidates) == 0 {
		return nil, nil
	}

	var bestLabel string
	bestWeight := 0

	for _, label := range candidates {
		wr, err := d.weightGate(inst, label)
		if err != nil {
			return nil, err
		}
		if wr.forcedValue != nil {
			return &gateSelection{label: label, forced: true, forcedValue: *wr.forcedValue}, nil
		}
		if wr.weight > bestWeight {
			bestLabel, bestWeight = label, wr.weight
		}
	}

	if bestLabel == "" {
		return nil, &InternalInvariantViolation{Op: "selectGate", Message: "no candidate produced a positive weight"}
	}
	return &gateSelection{label: bestLabel}, nil
}

// rankCandidates computes sigma(g) = (indegree+1)*(outdegree+1) for every
// AND/INPUT gate, where outdegree counts NOT-transparent fanout, and returns
// the top CandidatesLimit labels by descending score.
func (d *Driver) rankCandidates(inst *instance.CircuitSatInstance) []string {
	circuit := inst.Circuit
	type scored struct {
		score int
		label string
	}
	var scores []scored

	for _, label := range circuit.Gates() {
		g, err := circuit.Gate(label)
		if err != nil {
			continue
		}
		switch g.Type {
		case aig.AlwaysTrue, aig.AlwaysFalse, aig.Not:
			continue
		}

		indegree := len(g.Operands)

		outdegree := 0
		for _, userLabel := range circuit.Users(label) {
			user, err := circuit.Gate(userLabel)
			if err != nil {
				continue
			}
			if user.Type == aig.Not {
				outdegree += len(circuit.Users(userLabel))
			} else {
				outdegree++
			}
		}

		score := (indegree + 1) * (outdegree + 1)
		scores = append(scores, scored{score: score, label: label})
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	limit := d.CandidatesLimit
	if limit > len(scores) {
		limit = len(scores)
	}
	labels := make([]string, limit)
	for i := 0; i < limit; i++ {
		labels[i] = scores[i].label
	}
	return labels
}

// weightGate computes mu(g) = delta_false(g) * delta_true(g), the product of
// how much each polarity shrinks the circuit after simplification. If either
// polarity conflicts, the gate is forced to the other one.
func (d *Driver) weightGate(inst *instance.CircuitSatInstance, label string) (*gateWeight, error) {
	startSize := inst.Circuit.Len()
	weight := 1

	for _, val := range [...]bool{false, true} {
		branch := inst.Clone()
		status, err := branch.Assign(label, val)
		if err != nil {
			return nil, err
		}
		if status == instance.Conflict {
			forced := !val
			return &gateWeight{forcedValue: &forced}, nil
		}
		delta := startSize - branch.Circuit.Len()
		if delta <= 0 {
			return nil, &InternalInvariantViolation{Op: "weightGate", Label: label, Message: "assignment did not shrink the circuit"}
		}
		weight *= delta
	}

	return &gateWeight{weight: weight}, nil
}

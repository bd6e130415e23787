package backend

import "sort"

// VSIDSHeuristic implements Variable State Independent Decaying Sum: the
// classic activity-bump-and-decay scoring used by competitive CDCL solvers.
type VSIDSHeuristic struct {
	activity  map[string]float64
	increment float64
	decay     float64
}

// NewVSIDSHeuristic creates a VSIDS heuristic with standard decay parameters.
func NewVSIDSHeuristic() *VSIDSHeuristic {
	return &VSIDSHeuristic{
		activity:  make(map[string]float64),
		increment: 1.0,
		decay:     0.95,
	}
}

func (v *VSIDSHeuristic) Name() string { return "VSIDS" }

// ChooseVariable returns the unassigned variable with the highest activity.
func (v *VSIDSHeuristic) ChooseVariable(unassigned []string, _ Assignment) string {
	if len(unassigned) == 0 {
		return ""
	}
	best := unassigned[0]
	bestScore := v.activity[best]
	for _, variable := range unassigned[1:] {
		if score := v.activity[variable]; score > bestScore {
			bestScore = score
			best = variable
		}
	}
	return best
}

// Update bumps the activity of every literal in the conflict clause and
// applies the periodic decay.
func (v *VSIDSHeuristic) Update(conflictClause *Clause) {
	for _, lit := range conflictClause.Literals {
		v.activity[lit.Variable] += v.increment
	}
	v.increment /= v.decay
	if v.increment > 1e100 {
		v.rescale()
	}
}

func (v *VSIDSHeuristic) rescale() {
	for variable := range v.activity {
		v.activity[variable] *= 1e-100
	}
	v.increment *= 1e-100
}

func (v *VSIDSHeuristic) Reset() {
	v.activity = make(map[string]float64)
	v.increment = 1.0
	v.decay = 0.95
}

// LubyRestartStrategy restarts search on the Luby sequence, scaled by a base
// conflict count, the same scheme MiniSat-derived solvers use to bound the
// expected cost of an unlucky run.
type LubyRestartStrategy struct {
	sequence      []int
	index         int
	baseUnit      int
	lastRestartAt int64
}

// NewLubyRestartStrategy creates a restart strategy with the standard base unit of 100 conflicts.
func NewLubyRestartStrategy() *LubyRestartStrategy {
	return &LubyRestartStrategy{
		sequence: []int{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8},
		baseUnit: 100,
	}
}

func (l *LubyRestartStrategy) Name() string { return "Luby" }

// ShouldRestart reports whether the conflict count has crossed the next
// threshold in the Luby sequence.
func (l *LubyRestartStrategy) ShouldRestart(stats Statistics) bool {
	if l.index >= len(l.sequence) {
		l.extend()
	}
	threshold := l.lastRestartAt + int64(l.sequence[l.index]*l.baseUnit)
	return stats.Conflicts >= threshold
}

func (l *LubyRestartStrategy) OnRestart() {
	l.index++
	if l.index >= len(l.sequence) {
		l.extend()
	}
}

func (l *LubyRestartStrategy) extend() {
	current := len(l.sequence)
	for i := 0; i < current; i++ {
		l.sequence = append(l.sequence, l.sequence[i])
	}
	l.sequence = append(l.sequence, 1<<uint(len(l.sequence)%20))
}

func (l *LubyRestartStrategy) Reset() {
	l.index = 0
	l.lastRestartAt = 0
}

// ActivityBasedDeletion keeps glue clauses (LBD <= 2) and deletes the least
// active of the remaining learned clauses once the database grows too large.
type ActivityBasedDeletion struct {
	activityThreshold float64
}

// NewActivityBasedDeletion creates a deletion policy with a modest initial activity threshold.
func NewActivityBasedDeletion() *ActivityBasedDeletion {
	return &ActivityBasedDeletion{activityThreshold: 0.1}
}

func (a *ActivityBasedDeletion) Name() string { return "ActivityBased" }

// ShouldDelete keeps unit/original/glue clauses and deletes low-activity
// learned clauses.
func (a *ActivityBasedDeletion) ShouldDelete(clause *Clause, _ Statistics) bool {
	if !clause.Learned || len(clause.Literals) <= 1 || clause.Glue {
		return false
	}
	return clause.Activity < a.activityThreshold
}

// Update recalibrates the activity threshold to 30% of the median activity of
// the learned clauses, so deletion pressure tracks the current clause population.
func (a *ActivityBasedDeletion) Update(clauses []*Clause) {
	var activities []float64
	for _, clause := range clauses {
		if clause.Learned {
			activities = append(activities, clause.Activity)
		}
	}
	if len(activities) == 0 {
		return
	}
	sort.Float64s(activities)
	a.activityThreshold = activities[len(activities)/2] * 0.3
}

func (a *ActivityBasedDeletion) Reset() {
	a.activityThreshold = 0.1
}

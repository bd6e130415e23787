package backend

import "time"

// Solver is the pluggable contract every in-process backend implementation satisfies.
type Solver interface {
	Solve(cnf *CNF) *Result
	SolveWithTimeout(cnf *CNF, timeout time.Duration) *Result
	GetStatistics() Statistics
	Reset()
	Name() string
}

// Heuristic selects the next decision variable.
type Heuristic interface {
	ChooseVariable(unassigned []string, assignment Assignment) string
	Update(conflictClause *Clause)
	Reset()
	Name() string
}

// RestartStrategy decides when the search should restart.
type RestartStrategy interface {
	ShouldRestart(stats Statistics) bool
	OnRestart()
	Reset()
	Name() string
}

// ClauseDeletionPolicy decides which learned clauses to forget.
type ClauseDeletionPolicy interface {
	ShouldDelete(clause *Clause, stats Statistics) bool
	Update(clauses []*Clause)
	Reset()
	Name() string
}

// ConflictAnalyzer turns a conflicting clause plus the trail into a learned
// clause and a backtrack level.
type ConflictAnalyzer interface {
	Analyze(conflictClause *Clause, trail DecisionTrail) (*Clause, int)
	Reset()
	Name() string
}

// DecisionTrail records assignments in chronological order together with
// their decision level and propagation reason.
type DecisionTrail interface {
	Assign(variable string, value bool, level int, reason *Clause)
	Backtrack(level int) []string
	GetLevel(variable string) int
	GetReason(variable string) *Clause
	GetAssignment() Assignment
	GetCurrentLevel() int
	Clear()
}

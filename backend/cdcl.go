package backend

import (
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// CDCLBackend implements conflict-driven clause learning with two-watched-
// literal propagation: the default in-process conquer.Backend for a residual
// cube once the cube driver has pruned away everything it could decide
// structurally.
type CDCLBackend struct {
	statistics Statistics
	assignment Assignment
	cnf        *CNF
	trail      DecisionTrail
	startTime  time.Time

	heuristic       Heuristic
	restartStrategy RestartStrategy
	deletionPolicy  ClauseDeletionPolicy
	analyzer        ConflictAnalyzer

	watchLists       map[Literal][]*Clause
	propagationQueue []Literal

	learnedClauses []*Clause
	maxLearnedSize int

	decisionLevel int
}

// Config customizes the pluggable components of a CDCLBackend. A zero Config
// selects the package defaults (VSIDS, Luby restarts, activity-based
// deletion, first-UIP analysis).
type Config struct {
	Heuristic        Heuristic
	RestartStrategy  RestartStrategy
	DeletionPolicy   ClauseDeletionPolicy
	ConflictAnalyzer ConflictAnalyzer
	MaxLearnedSize   int
}

// New creates a CDCLBackend with default components.
func New() *CDCLBackend {
	return &CDCLBackend{
		assignment:      make(Assignment),
		trail:           NewTrail(),
		watchLists:      make(map[Literal][]*Clause),
		maxLearnedSize:  1000,
		heuristic:       NewVSIDSHeuristic(),
		restartStrategy: NewLubyRestartStrategy(),
		deletionPolicy:  NewActivityBasedDeletion(),
		analyzer:        NewFirstUIPAnalyzer(),
	}
}

// NewWithConfig creates a CDCLBackend overriding any of the pluggable
// components supplied in config.
func NewWithConfig(config Config) *CDCLBackend {
	s := New()
	if config.Heuristic != nil {
		s.heuristic = config.Heuristic
	}
	if config.RestartStrategy != nil {
		s.restartStrategy = config.RestartStrategy
	}
	if config.DeletionPolicy != nil {
		s.deletionPolicy = config.DeletionPolicy
	}
	if config.ConflictAnalyzer != nil {
		s.analyzer = config.ConflictAnalyzer
	}
	if config.MaxLearnedSize > 0 {
		s.maxLearnedSize = config.MaxLearnedSize
	}
	return s
}

// Name returns the backend's identifier.
func (c *CDCLBackend) Name() string { return "CDCL" }

// Solve runs the solver to completion with no timeout.
func (c *CDCLBackend) Solve(cnf *CNF) *Result {
	return c.SolveWithTimeout(cnf, 0)
}

// GetStatistics returns the statistics of the most recent solve.
func (c *CDCLBackend) GetStatistics() Statistics { return c.statistics }

// Reset clears all solver state for reuse.
func (c *CDCLBackend) Reset() {
	c.statistics = Statistics{}
	c.assignment = make(Assignment)
	c.trail.Clear()
	c.watchLists = make(map[Literal][]*Clause)
	c.learnedClauses = nil
	c.decisionLevel = 0
	c.heuristic.Reset()
	c.restartStrategy.Reset()
	c.deletionPolicy.Reset()
	c.analyzer.Reset()
}

// SolveWithTimeout runs CDCL search, returning UNKNOWN (a non-nil Error) if
// the timeout elapses first.
func (c *CDCLBackend) SolveWithTimeout(cnf *CNF, timeout time.Duration) *Result {
	c.startTime = time.Now()
	c.cnf = cnf
	c.assignment = make(Assignment)
	c.statistics = Statistics{}
	c.decisionLevel = 0
	c.trail.Clear()
	c.watchLists = make(map[Literal][]*Clause)
	c.learnedClauses = nil

	c.initializeWatchLists()

	var deadline <-chan time.Time
	if timeout > 0 {
		deadline = time.After(timeout)
	}

	for {
		select {
		case <-deadline:
			c.statistics.TimeElapsed = time.Since(c.startTime).Nanoseconds()
			return &Result{
				Error:      &SolverError{Op: "SolveWithTimeout", Message: "timeout exceeded"},
				Statistics: c.statistics,
			}
		default:
		}

		conflictClause := c.propagate()

		if conflictClause != nil {
			c.statistics.Conflicts++

			if c.decisionLevel == 0 {
				c.statistics.TimeElapsed = time.Since(c.startTime).Nanoseconds()
				return &Result{Satisfiable: false, Statistics: c.statistics}
			}

			learnedClause, backtrackLevel := c.analyzer.Analyze(conflictClause, c.trail)
			if learnedClause != nil {
				c.learnClause(learnedClause)
				c.statistics.LearnedClauses++
			}

			c.backtrack(backtrackLevel)
			c.heuristic.Update(conflictClause)

			if c.restartStrategy.ShouldRestart(c.statistics) {
				c.restart()
				c.statistics.Restarts++
			}
			if len(c.learnedClauses) > c.maxLearnedSize {
				c.deleteClauses()
			}
			continue
		}

		if c.allVariablesAssigned() {
			c.statistics.TimeElapsed = time.Since(c.startTime).Nanoseconds()
			return &Result{
				Satisfiable: true,
				Assignment:  c.assignment.Clone(),
				Statistics:  c.statistics,
			}
		}

		decisionVar := c.chooseDecisionVariable()
		if decisionVar == "" {
			return &Result{
				Error:      &SolverError{Op: "SolveWithTimeout", Message: "no decision variable found but not all assigned"},
				Statistics: c.statistics,
			}
		}

		c.decisionLevel++
		c.statistics.Decisions++
		c.assign(decisionVar, true, nil)
	}
}

func (c *CDCLBackend) propagate() *Clause {
	for len(c.propagationQueue) > 0 {
		lit := c.propagationQueue[0]
		c.propagationQueue = c.propagationQueue[1:]

		for _, clause := range c.watchLists[lit] {
			if c.assignment.Satisfies(clause) {
				continue
			}
			newWatch, isUnit, isConflict := c.findNewWatch(clause, lit)
			if isConflict {
				return clause
			}
			if isUnit {
				unitLit := c.getUnitLiteral(clause)
				c.assign(unitLit.Variable, !unitLit.Negated, clause)
				c.statistics.Propagations++
			}
			if newWatch != (Literal{}) {
				c.updateWatchList(clause, lit, newWatch)
			}
		}
	}
	return nil
}

func (c *CDCLBackend) assign(variable string, value bool, reason *Clause) {
	c.assignment[variable] = value
	c.trail.Assign(variable, value, c.decisionLevel, reason)
	c.propagationQueue = append(c.propagationQueue, Literal{Variable: variable, Negated: value})
}

func (c *CDCLBackend) allVariablesAssigned() bool {
	for _, variable := range c.cnf.Variables {
		if !c.assignment.IsAssigned(variable) {
			return false
		}
	}
	return true
}

func (c *CDCLBackend) chooseDecisionVariable() string {
	unassigned := make([]string, 0)
	for _, variable := range c.cnf.Variables {
		if !c.assignment.IsAssigned(variable) {
			unassigned = append(unassigned, variable)
		}
	}
	if len(unassigned) == 0 {
		return ""
	}
	return c.heuristic.ChooseVariable(unassigned, c.assignment)
}

func (c *CDCLBackend) learnClause(clause *Clause) {
	clause.Learned = true
	c.cnf.AddClause(clause)
	c.learnedClauses = append(c.learnedClauses, clause)
	if len(clause.Literals) >= 2 {
		c.watchLists[clause.Literals[0]] = append(c.watchLists[clause.Literals[0]], clause)
		c.watchLists[clause.Literals[1]] = append(c.watchLists[clause.Literals[1]], clause)
	} else if len(clause.Literals) == 1 {
		c.watchLists[clause.Literals[0]] = append(c.watchLists[clause.Literals[0]], clause)
	}
}

func (c *CDCLBackend) backtrack(level int) {
	unassigned := c.trail.Backtrack(level)
	for _, variable := range unassigned {
		delete(c.assignment, variable)
	}
	c.decisionLevel = level
}

func (c *CDCLBackend) restart() {
	log.Debugf("CDCL restart #%d after %d conflicts", c.statistics.Restarts+1, c.statistics.Conflicts)
	c.assignment = make(Assignment)
	c.trail.Clear()
	c.decisionLevel = 0
	c.restartStrategy.OnRestart()
}

func (c *CDCLBackend) deleteClauses() {
	sort.Slice(c.learnedClauses, func(i, j int) bool {
		return c.learnedClauses[i].Activity < c.learnedClauses[j].Activity
	})
	c.deletionPolicy.Update(c.learnedClauses)

	kept := c.learnedClauses[:0]
	deleted := 0
	for _, clause := range c.learnedClauses {
		if c.deletionPolicy.ShouldDelete(clause, c.statistics) {
			c.removeFromWatchLists(clause)
			c.statistics.DeletedClauses++
			deleted++
			continue
		}
		kept = append(kept, clause)
	}
	c.learnedClauses = kept
	if deleted > 0 {
		log.Debugf("clause deletion: dropped %d learned clauses, kept %d", deleted, len(kept))
	} else {
		log.Warnf("clause deletion freed nothing: %d learned clauses all retained", len(kept))
	}
}

func (c *CDCLBackend) initializeWatchLists() {
	c.watchLists = make(map[Literal][]*Clause)
	for _, clause := range c.cnf.Clauses {
		if len(clause.Literals) >= 2 {
			c.watchLists[clause.Literals[0]] = append(c.watchLists[clause.Literals[0]], clause)
			c.watchLists[clause.Literals[1]] = append(c.watchLists[clause.Literals[1]], clause)
		} else if len(clause.Literals) == 1 {
			c.watchLists[clause.Literals[0]] = append(c.watchLists[clause.Literals[0]], clause)
		}
	}
}

func (c *CDCLBackend) removeFromWatchLists(clause *Clause) {
	for _, lit := range clause.Literals {
		watching := c.watchLists[lit]
		for i, w := range watching {
			if w.ID == clause.ID {
				c.watchLists[lit] = append(watching[:i], watching[i+1:]...)
				break
			}
		}
	}
}

// findNewWatch looks for a replacement watch among clause's literals other
// than falseLit, which just became assigned false.
func (c *CDCLBackend) findNewWatch(clause *Clause, falseLit Literal) (newWatch Literal, isUnit bool, isConflict bool) {
	unassigned := 0
	for _, lit := range clause.Literals {
		if lit.Equals(falseLit) {
			continue
		}
		if !c.assignment.IsAssigned(lit.Variable) {
			unassigned++
			if newWatch == (Literal{}) {
				newWatch = lit
			}
			continue
		}
		value := c.assignment[lit.Variable]
		if value != lit.Negated {
			return lit, false, false
		}
	}

	if unassigned == 0 {
		return Literal{}, false, true
	}
	if unassigned == 1 {
		return Literal{}, true, false
	}
	return newWatch, false, false
}

func (c *CDCLBackend) getUnitLiteral(clause *Clause) Literal {
	for _, lit := range clause.Literals {
		if !c.assignment.IsAssigned(lit.Variable) {
			return lit
		}
	}
	return clause.Literals[0]
}

func (c *CDCLBackend) updateWatchList(clause *Clause, oldWatch, newWatch Literal) {
	watching := c.watchLists[oldWatch]
	for i, w := range watching {
		if w.ID == clause.ID {
			c.watchLists[oldWatch] = append(watching[:i], watching[i+1:]...)
			break
		}
	}
	c.watchLists[newWatch] = append(c.watchLists[newWatch], clause)
}

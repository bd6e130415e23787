// Package backend implements the in-process CDCL SAT solver used as the
// default conquer-stage backend for residual cubes.
package backend

import (
	"fmt"
	"strings"
)

// Literal represents a boolean variable or its negation.
type Literal struct {
	Variable string
	Negated  bool
}

// String returns a human-readable form of the literal.
func (l Literal) String() string {
	if l.Negated {
		return "¬" + l.Variable
	}
	return l.Variable
}

// Negate returns the negation of this literal.
func (l Literal) Negate() Literal {
	return Literal{Variable: l.Variable, Negated: !l.Negated}
}

// Equals reports whether two literals are identical.
func (l Literal) Equals(other Literal) bool {
	return l.Variable == other.Variable && l.Negated == other.Negated
}

// Clause is a disjunction of literals. An empty clause is unsatisfiable.
type Clause struct {
	Literals []Literal
	ID       int
	Learned  bool
	Activity float64
	LBD      int
	Glue     bool
}

// NewClause builds a clause from the given literals.
func NewClause(literals ...Literal) *Clause {
	return &Clause{Literals: literals}
}

// SetLBD records the literal block distance and derives the Glue flag.
func (c *Clause) SetLBD(lbd int) {
	c.LBD = lbd
	c.Glue = lbd <= 2
}

// IsUnit reports whether the clause has exactly one literal.
func (c *Clause) IsUnit() bool { return len(c.Literals) == 1 }

// IsEmpty reports whether the clause has no literals.
func (c *Clause) IsEmpty() bool { return len(c.Literals) == 0 }

// String renders the clause in infix form.
func (c *Clause) String() string {
	if len(c.Literals) == 0 {
		return "⊥"
	}
	parts := make([]string, len(c.Literals))
	for i, lit := range c.Literals {
		parts[i] = lit.String()
	}
	return "(" + strings.Join(parts, " ∨ ") + ")"
}

// CNF is a conjunction of clauses over a fixed variable set.
type CNF struct {
	Clauses   []*Clause
	Variables []string
	nextID    int

	seen map[string]bool
}

// NewCNF creates an empty CNF formula.
func NewCNF() *CNF {
	return &CNF{nextID: 1, seen: make(map[string]bool)}
}

// AddClause appends a clause, assigning it a fresh ID and registering any new variables.
func (f *CNF) AddClause(clause *Clause) {
	clause.ID = f.nextID
	f.nextID++
	f.Clauses = append(f.Clauses, clause)
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	for _, lit := range clause.Literals {
		if !f.seen[lit.Variable] {
			f.seen[lit.Variable] = true
			f.Variables = append(f.Variables, lit.Variable)
		}
	}
}

// Assignment is a partial or total truth assignment keyed by variable name.
type Assignment map[string]bool

// Clone returns a deep copy of the assignment.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// IsAssigned reports whether the variable has a value.
func (a Assignment) IsAssigned(variable string) bool {
	_, ok := a[variable]
	return ok
}

// Satisfies reports whether the assignment satisfies the clause, treating an
// unassigned literal as a reason to not yet call the clause falsified.
func (a Assignment) Satisfies(clause *Clause) bool {
	if clause == nil || len(clause.Literals) == 0 {
		return false
	}
	for _, lit := range clause.Literals {
		if value, ok := a[lit.Variable]; ok {
			if value != lit.Negated {
				return true
			}
		} else {
			return true
		}
	}
	return false
}

// Result is the outcome of a solve attempt.
type Result struct {
	Satisfiable bool
	Assignment  Assignment
	Statistics  Statistics
	Error       error
}

// Statistics tracks solver performance counters.
type Statistics struct {
	Decisions      int64
	Propagations   int64
	Conflicts      int64
	Restarts       int64
	LearnedClauses int64
	DeletedClauses int64
	TimeElapsed    int64
}

// String renders the statistics in one line.
func (s Statistics) String() string {
	return fmt.Sprintf(
		"Decisions: %d, Propagations: %d, Conflicts: %d, Restarts: %d, Learned: %d",
		s.Decisions, s.Propagations, s.Conflicts, s.Restarts, s.LearnedClauses,
	)
}

// SolverError reports a failure internal to the backend package.
type SolverError struct {
	Op      string
	Message string
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("backend: %s: %s", e.Op, e.Message)
}

// Package cnf is the int-keyed Conjunctive Normal Form representation and
// the Tseytin transformation that produces it from an AIG, matching the
// dense-positive-integer variable numbering a DIMACS SAT solver expects.
package cnf

import "fmt"

// Literal is a DIMACS-style signed variable reference: a positive integer
// for the variable, negated by flipping its sign. Variable 0 is never used.
type Literal int

// Var returns the unsigned variable this literal refers to.
func (l Literal) Var() int {
	if l < 0 {
		return int(-l)
	}
	return int(l)
}

// Negate returns the opposite-polarity literal for the same variable.
func (l Literal) Negate() Literal { return -l }

// Negated reports whether this is a negative literal.
func (l Literal) Negated() bool { return l < 0 }

// Clause is a disjunction of literals.
type Clause []Literal

// CNF is a conjunction of clauses over variables 1..NumVars, plus the map
// from AIG gate label to the variable Tseytin encoding assigned it.
type CNF struct {
	Clauses []Clause
	VarMap  map[string]int
	NumVars int
}

// NewCNF creates an empty CNF formula.
func NewCNF() *CNF {
	return &CNF{VarMap: make(map[string]int)}
}

// NewVar allocates and returns a fresh dense variable number.
func (c *CNF) NewVar() int {
	c.NumVars++
	return c.NumVars
}

// AddClause appends a clause to the formula.
func (c *CNF) AddClause(lits ...Literal) {
	c.Clauses = append(c.Clauses, Clause(append([]Literal(nil), lits...)))
}

// Var returns the variable assigned to an AIG gate label, if any.
func (c *CNF) Var(label string) (int, bool) {
	v, ok := c.VarMap[label]
	return v, ok
}

// Clone returns a deep copy of the formula: clauses, the variable map, and
// the variable counter are all copied independently of the original.
func (c *CNF) Clone() *CNF {
	next := &CNF{
		Clauses: make([]Clause, len(c.Clauses)),
		VarMap:  make(map[string]int, len(c.VarMap)),
		NumVars: c.NumVars,
	}
	for i, clause := range c.Clauses {
		next.Clauses[i] = append(Clause(nil), clause...)
	}
	for label, v := range c.VarMap {
		next.VarMap[label] = v
	}
	return next
}

// Lit builds the literal for label with the given polarity (true = positive).
func (c *CNF) Lit(label string, positive bool) (Literal, error) {
	v, ok := c.VarMap[label]
	if !ok {
		return 0, fmt.Errorf("cnf: no variable assigned to gate %q", label)
	}
	if positive {
		return Literal(v), nil
	}
	return Literal(-v), nil
}

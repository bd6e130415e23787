package backend

import "sort"

// FirstUIPAnalyzer implements First Unique Implication Point conflict
// analysis: resolve the conflicting clause against propagation reasons until
// exactly one literal at the current decision level remains, which becomes
// the asserting literal of the learned clause.
type FirstUIPAnalyzer struct {
	seen map[string]bool
}

// NewFirstUIPAnalyzer creates a first-UIP analyzer.
func NewFirstUIPAnalyzer() *FirstUIPAnalyzer {
	return &FirstUIPAnalyzer{seen: make(map[string]bool)}
}

func (f *FirstUIPAnalyzer) Name() string { return "FirstUIP" }

// Reset clears analyzer state between solves.
func (f *FirstUIPAnalyzer) Reset() { f.seen = make(map[string]bool) }

// Analyze resolves the conflict clause back to its first UIP and returns the
// learned clause plus the level to backtrack to. A nil clause with level 0
// means the conflict is rooted at decision level 0: the formula is UNSAT.
func (f *FirstUIPAnalyzer) Analyze(conflictClause *Clause, trail DecisionTrail) (*Clause, int) {
	if conflictClause == nil {
		return nil, 0
	}
	currentLevel := trail.GetCurrentLevel()
	if currentLevel == 0 {
		return nil, 0
	}

	f.seen = make(map[string]bool)

	learnt := make([]Literal, 0, len(conflictClause.Literals))
	for _, lit := range conflictClause.Literals {
		learnt = append(learnt, lit.Negate())
		f.seen[lit.Variable] = true
	}

	for f.countAtLevel(learnt, trail, currentLevel) > 1 {
		resolveVar := f.mostRecentAtLevel(learnt, trail, currentLevel)
		if resolveVar == "" {
			break
		}
		reason := trail.GetReason(resolveVar)
		if reason == nil {
			break
		}
		learnt = f.resolve(learnt, reason, resolveVar)
	}

	return f.build(learnt, trail, currentLevel)
}

func (f *FirstUIPAnalyzer) countAtLevel(clause []Literal, trail DecisionTrail, level int) int {
	count := 0
	for _, lit := range clause {
		if trail.GetLevel(lit.Variable) == level {
			count++
		}
	}
	return count
}

// mostRecentAtLevel returns the variable in clause at level whose assignment
// happened last, i.e. the one whose reason clause is still eligible for
// resolution before we reach a decision variable.
func (f *FirstUIPAnalyzer) mostRecentAtLevel(clause []Literal, trail DecisionTrail, level int) string {
	impl, ok := trail.(*Trail)
	if !ok {
		for _, lit := range clause {
			if trail.GetLevel(lit.Variable) == level && trail.GetReason(lit.Variable) != nil {
				return lit.Variable
			}
		}
		return ""
	}
	levelEntries := impl.AtLevel(level)
	for i := len(levelEntries) - 1; i >= 0; i-- {
		v := levelEntries[i].Variable
		for _, lit := range clause {
			if lit.Variable == v {
				return v
			}
		}
	}
	return ""
}

func (f *FirstUIPAnalyzer) resolve(clause []Literal, reason *Clause, resolveVar string) []Literal {
	out := make([]Literal, 0, len(clause)+len(reason.Literals))
	for _, lit := range clause {
		if lit.Variable != resolveVar {
			out = append(out, lit)
		}
	}
	for _, lit := range reason.Literals {
		if lit.Variable == resolveVar || f.contains(out, lit.Variable) {
			continue
		}
		out = append(out, lit)
		f.seen[lit.Variable] = true
	}
	return out
}

func (f *FirstUIPAnalyzer) contains(clause []Literal, variable string) bool {
	for _, lit := range clause {
		if lit.Variable == variable {
			return true
		}
	}
	return false
}

func (f *FirstUIPAnalyzer) build(literals []Literal, trail DecisionTrail, currentLevel int) (*Clause, int) {
	seen := make(map[string]bool, len(literals))
	unique := make([]Literal, 0, len(literals))
	levelSet := make(map[int]bool)
	for _, lit := range literals {
		key := lit.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, lit)
		if level := trail.GetLevel(lit.Variable); level >= 0 {
			levelSet[level] = true
		}
	}

	sort.Slice(unique, func(i, j int) bool {
		return trail.GetLevel(unique[i].Variable) > trail.GetLevel(unique[j].Variable)
	})

	clause := NewClause(unique...)
	clause.Learned = true
	clause.Activity = 1.0
	clause.SetLBD(len(levelSet))

	backtrack := 0
	if len(unique) > 1 {
		levels := make([]int, 0, len(unique)-1)
		for _, lit := range unique[1:] {
			if level := trail.GetLevel(lit.Variable); level >= 0 {
				levels = append(levels, level)
			}
		}
		if len(levels) > 0 {
			sort.Sort(sort.Reverse(sort.IntSlice(levels)))
			backtrack = levels[0]
		}
	}
	_ = currentLevel
	return clause, backtrack
}

package sat

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SearchLimitError reports that a solve exhausted its conflict budget
// without reaching a verdict. It is a typed, recoverable error: callers
// that probe many assumption sets (the MUS strategies in puzzlesolver)
// catch it with errors.As and treat the probe as inconclusive rather
// than failing the whole run.
type SearchLimitError struct {
	Conflicts int64
}

func (e *SearchLimitError) Error() string {
	return "sat: search limit reached"
}

// Core is the stateful wrapper the rest of the engine drives the solver
// through. One Core is built per immutable CNF and then reused across
// many assumption-based solves; Pool hands out one Core per goroutine so
// no solver state is ever shared across threads.
type Core struct {
	base   *CNF
	fixed  []Lit
	s      *solver
	budget *BudgetTracker
	log    *logrus.Entry
}

// NewCore builds a Core around an immutable CNF, sharing budget with any
// other Core constructed from the same BudgetTracker.
func NewCore(cnf *CNF, budget *BudgetTracker, log *logrus.Entry) *Core {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "satcore")
	c := &Core{base: cnf, budget: budget, log: log}
	c.s = newSolver(cnf, log)
	return c
}

// FixValues asserts lits as permanent unit facts. If lits is not a
// superset of the facts already fixed, the Core rebuilds its solver from
// the original immutable CNF and reapplies the new fixed set, since a
// CDCL solver's learned clauses and trail cannot safely be unwound past
// an assumption that is being retracted.
func (c *Core) FixValues(lits []Lit) error {
	if supersetOf(lits, c.fixed) {
		c.fixed = append([]Lit(nil), lits...)
		return c.propagateFixed()
	}
	c.log.Debug("rebuilding solver: fixed set is not monotonic")
	c.s = newSolver(c.base, c.log)
	c.fixed = append([]Lit(nil), lits...)
	return c.propagateFixed()
}

func (c *Core) propagateFixed() error {
	for _, l := range c.fixed {
		if v, ok := c.s.valueOf(l); ok {
			if !v {
				return errors.New("sat: fixed values are contradictory")
			}
			continue
		}
		c.s.setTrue(l, nil)
	}
	if conflict := c.s.propagate(); conflict != nil {
		return errors.New("sat: fixed values are contradictory")
	}
	return nil
}

func supersetOf(candidate, of []Lit) bool {
	set := make(map[Lit]bool, len(candidate))
	for _, l := range candidate {
		set[l] = true
	}
	for _, l := range of {
		if !set[l] {
			return false
		}
	}
	return true
}

// Solve attempts to satisfy the formula under the given assumptions in
// addition to the Core's fixed facts.
func (c *Core) Solve(assumptions []Lit) (Result, error) {
	_, res, err := c.solveAssuming(assumptions, false)
	return res, err
}

// SolveWithCore additionally returns, on UNSAT, a subset of assumptions
// whose conjunction with the fixed facts is unsatisfiable.
func (c *Core) SolveWithCore(assumptions []Lit) ([]Lit, Result, error) {
	return c.solveAssuming(assumptions, true)
}

// SolveWithSolution additionally returns a complete model on SAT.
func (c *Core) SolveWithSolution(assumptions []Lit) (Assignment, Result, error) {
	res, err := c.Solve(assumptions)
	if err != nil || res != Sat {
		return nil, res, err
	}
	return c.s.assign.Clone(), res, nil
}

func (c *Core) solveAssuming(assumptions []Lit, wantCore bool) ([]Lit, Result, error) {
	budget := c.budget.Current()
	c.s.stats.Solves++

	pushed := 0
	var conflict *Clause
	for _, a := range assumptions {
		if v, ok := c.s.valueOf(a); ok {
			if !v {
				conflict = &Clause{Lits: []Lit{a}}
				break
			}
			continue
		}
		c.s.trail.newDecisionLevel()
		c.s.setTrue(a, nil)
		pushed++
		if conflict = c.s.propagate(); conflict != nil {
			break
		}
	}

	defer c.backtrackAssumptions(pushed)

	if conflict != nil {
		c.budget.RecordCompletion()
		if !wantCore {
			return nil, Unsat, nil
		}
		return c.s.analyzeFinal(conflict, assumptions), Unsat, nil
	}

	res, err := c.search(budget)
	if err != nil {
		var lim *SearchLimitError
		if errors.As(err, &lim) {
			c.budget.RecordLimit()
		}
		return nil, Unknown, err
	}
	c.budget.RecordCompletion()
	if res == Unsat && wantCore {
		// Conflict arose purely from clauses, not directly from an
		// assumption contradiction; degrade to returning every
		// assumption, since that is always a valid (if not minimal) core.
		return append([]Lit(nil), assumptions...), res, nil
	}
	return nil, res, nil
}

func (c *Core) backtrackAssumptions(pushed int) {
	if pushed == 0 {
		return
	}
	target := c.s.trail.level() - pushed
	if target < 0 {
		target = 0
	}
	c.s.trail.undoTo(target, c.s.unassign)
	c.s.queue = c.s.queue[:0]
}

// search runs the CDCL main loop until SAT, UNSAT, or the conflict
// budget is exhausted.
func (c *Core) search(budget int64) (Result, error) {
	var conflicts int64
	for {
		conflict := c.s.propagate()
		if conflict != nil {
			c.s.stats.Conflicts++
			conflicts++
			if c.s.trail.level() == 0 {
				return Unsat, nil
			}
			if conflicts > budget {
				return Unknown, &SearchLimitError{Conflicts: conflicts}
			}
			learnt, backtrack := c.s.analyzeConflict(conflict)
			c.s.trail.undoTo(backtrack, c.s.unassign)
			c.s.queue = c.s.queue[:0]
			c.s.decayActivity()
			if len(learnt.Lits) == 0 {
				return Unsat, nil
			}
			c.s.learned = append(c.s.learned, learnt)
			c.s.attach(learnt)
			if learnt.IsUnit() {
				c.s.setTrue(learnt.Lits[0], nil)
			} else {
				uip := learnt.Lits[0]
				c.s.setTrue(uip, learnt)
			}
			continue
		}
		if c.s.allAssigned() {
			return Sat, nil
		}
		lit := c.s.pickDecision()
		if lit == 0 {
			return Sat, nil
		}
		c.s.trail.newDecisionLevel()
		c.s.stats.Decisions++
		c.s.setTrue(lit, nil)
	}
}

// Stats returns a snapshot of solver activity counters.
func (c *Core) Stats() Statistics { return c.s.stats }

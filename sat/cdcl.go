package sat

import (
	"github.com/sirupsen/logrus"
)

// watcher records that clause c is watched at Lits[idx].
type watcher struct {
	c   *Clause
	idx int
}

// solver is a watched-literal CDCL engine with VSIDS-style activity and
// assumption support, adapted from a string-literal CDCL design into the
// spec's signed-integer Lit model. It is not safe for concurrent use;
// Core hands out one solver per goroutine via Pool.
type solver struct {
	cnf    *CNF
	assign Assignment
	trail  *trail
	watch  map[Lit][]watcher
	queue  []Lit

	activity []float64
	actInc   float64
	actDecay float64
	order    []int32 // variables sorted by activity (decision order, rebuilt lazily)

	learned []*Clause

	// assumptions currently forced true, in push order, used by
	// analyzeFinal to build the unsat core.
	assumeLevel []Lit

	stats Statistics

	log *logrus.Entry
}

func newSolver(cnf *CNF, log *logrus.Entry) *solver {
	n := cnf.NumVars
	s := &solver{
		cnf:      cnf,
		assign:   NewAssignment(n),
		trail:    newTrail(n),
		watch:    make(map[Lit][]watcher),
		activity: make([]float64, n+1),
		actInc:   1.0,
		actDecay: 0.95,
		log:      log,
	}
	for _, c := range cnf.Clauses {
		s.attach(c)
	}
	return s
}

func (s *solver) attach(c *Clause) {
	switch {
	case c.IsEmpty():
		return
	case c.IsUnit():
		s.watch[c.Lits[0]] = append(s.watch[c.Lits[0]], watcher{c: c, idx: 0})
	default:
		s.watch[c.Lits[0]] = append(s.watch[c.Lits[0]], watcher{c: c, idx: 0})
		s.watch[c.Lits[1]] = append(s.watch[c.Lits[1]], watcher{c: c, idx: 1})
	}
}

func (s *solver) valueOf(l Lit) (bool, bool) { return s.assign.Value(l) }

func (s *solver) setTrue(l Lit, reason *Clause) {
	v := l.Var()
	if l.Sign() {
		s.assign[v] = assignedF
	} else {
		s.assign[v] = assignedT
	}
	s.trail.push(l, reason)
	s.queue = append(s.queue, l)
	s.bumpActivity(v)
}

func (s *solver) unassign(l Lit) {
	s.assign[l.Var()] = unassigned
}

func (s *solver) bumpActivity(v int32) {
	s.activity[v] += s.actInc
	if s.activity[v] > 1e100 {
		for i := range s.activity {
			s.activity[i] *= 1e-100
		}
		s.actInc *= 1e-100
	}
}

func (s *solver) decayActivity() { s.actInc /= s.actDecay }

// propagate runs unit propagation to fixpoint, returning the clause that
// conflicted, or nil if propagation finished cleanly.
func (s *solver) propagate() *Clause {
	for len(s.queue) > 0 {
		lit := s.queue[0]
		s.queue = s.queue[1:]
		falseLit := lit.Negate()

		ws := s.watch[falseLit]
		keep := ws[:0]
		for i := 0; i < len(ws); i++ {
			w := ws[i]
			c := w.c
			if s.clauseSatisfied(c) {
				keep = append(keep, w)
				continue
			}
			moved, unit, conflict := s.rewatch(c, falseLit)
			switch {
			case conflict:
				keep = append(keep, ws[i+1:]...)
				s.watch[falseLit] = keep
				return c
			case moved:
				s.watch[c.Lits[w.idx]] = append(s.watch[c.Lits[w.idx]], w)
			case unit:
				keep = append(keep, w)
				s.stats.Propagations++
				unitLit := s.findUnassigned(c)
				s.setTrue(unitLit, c)
			default:
				keep = append(keep, w)
			}
		}
		s.watch[falseLit] = keep
	}
	return nil
}

func (s *solver) clauseSatisfied(c *Clause) bool {
	for _, l := range c.Lits {
		if v, ok := s.valueOf(l); ok && v {
			return true
		}
	}
	return false
}

func (s *solver) findUnassigned(c *Clause) Lit {
	for _, l := range c.Lits {
		if _, ok := s.valueOf(l); !ok {
			return l
		}
	}
	return 0
}

// rewatch tries to find a new literal to watch in c other than falseLit.
// Returns moved=true and updates c.Lits[w.idx] in place when it finds one;
// unit=true when no replacement exists and exactly one literal remains
// unassigned; conflict=true when the clause is fully falsified.
func (s *solver) rewatch(c *Clause, falseLit Lit) (moved, unit, conflict bool) {
	otherIdx := 0
	for i, l := range c.Lits {
		if l == falseLit {
			continue
		}
		if _, ok := s.valueOf(l); !ok {
			otherIdx = i
			for _, l2 := range c.Lits {
				if l2 != falseLit && l2 != l {
					if v, ok := s.valueOf(l2); ok && v {
						return false, false, false
					}
				}
			}
			c.Lits[0], c.Lits[otherIdx] = c.Lits[otherIdx], c.Lits[0]
			return true, false, false
		}
		if v, ok := s.valueOf(l); ok && v {
			return false, false, false
		}
	}
	unassignedCount := 0
	var last Lit
	for _, l := range c.Lits {
		if l == falseLit {
			continue
		}
		if _, ok := s.valueOf(l); !ok {
			unassignedCount++
			last = l
		}
	}
	_ = last
	if unassignedCount == 0 {
		return false, false, true
	}
	return false, true, false
}

func (s *solver) allAssigned() bool {
	for v := int32(1); v <= s.cnf.NumVars; v++ {
		if s.assign[v] == unassigned {
			return false
		}
	}
	return true
}

func (s *solver) pickDecision() Lit {
	best := int32(-1)
	bestAct := -1.0
	for v := int32(1); v <= s.cnf.NumVars; v++ {
		if s.assign[v] != unassigned {
			continue
		}
		if s.activity[v] > bestAct {
			bestAct = s.activity[v]
			best = v
		}
	}
	if best < 0 {
		return 0
	}
	return Lit(best)
}

// analyzeConflict derives a learned clause and backtrack level from a
// conflicting clause using 1-UIP resolution over the trail.
func (s *solver) analyzeConflict(conflict *Clause) (*Clause, int) {
	seen := make(map[int32]bool)
	learnt := []Lit{0} // placeholder for UIP literal
	counter := 0
	level := s.trail.level()

	p := Lit(0)
	reasonClause := conflict
	idx := len(s.trail.entries) - 1

	for {
		for _, q := range reasonClause.Lits {
			if q == p || q == p.Negate() {
				continue
			}
			v := q.Var()
			if seen[v] {
				continue
			}
			seen[v] = true
			if s.trail.levelOf(v) == level {
				counter++
			} else if s.trail.levelOf(v) > 0 {
				learnt = append(learnt, q)
			}
		}

		for idx >= 0 && !seen[s.trail.entries[idx].lit.Var()] {
			idx--
		}
		if idx < 0 {
			break
		}
		p = s.trail.entries[idx].lit
		v := p.Var()
		seen[v] = false
		counter--
		reasonClause = s.trail.reasonOf(v)
		idx--
		if counter <= 0 || reasonClause == nil {
			break
		}
	}

	if p != 0 {
		learnt[0] = p.Negate()
	} else if len(learnt) > 1 {
		learnt[0] = learnt[1]
		learnt = learnt[1:]
	} else {
		learnt = learnt[:0]
	}

	backtrack := 0
	for _, l := range learnt[1:] {
		if lv := s.trail.levelOf(l.Var()); lv > backtrack {
			backtrack = lv
		}
	}
	return NewClause(learnt...), backtrack
}

// analyzeFinal is the MiniSat-style failed-assumption routine: when
// solving under assumptions ends in UNSAT at decision level 0 (or the
// conflict clause only involves assumption variables), it walks the
// trail backward from the conflict to collect the subset of assumptions
// that caused it.
func (s *solver) analyzeFinal(conflict *Clause, assumptions []Lit) []Lit {
	inConflict := make(map[int32]bool)
	for _, l := range conflict.Lits {
		inConflict[l.Var()] = true
	}
	for i := len(s.trail.entries) - 1; i >= 0; i-- {
		e := s.trail.entries[i]
		v := e.lit.Var()
		if !inConflict[v] {
			continue
		}
		if e.reason == nil {
			// A decision/assumption literal: its negation is in the core.
			continue
		}
		for _, l := range e.reason.Lits {
			if l.Var() != v {
				inConflict[l.Var()] = true
			}
		}
	}
	assumeSet := make(map[Lit]bool, len(assumptions))
	for _, a := range assumptions {
		assumeSet[a] = true
	}
	var core []Lit
	for v := range inConflict {
		if assumeSet[Lit(v)] {
			core = append(core, Lit(v))
		} else if assumeSet[Lit(-v)] {
			core = append(core, Lit(-v))
		}
	}
	if len(core) == 0 {
		// Fall back to the full assumption set: the conflict involved no
		// assumption variable directly traceable, which only happens for
		// a formula that is unsat independent of assumptions.
		core = append(core, assumptions...)
	}
	return core
}

// Package sat implements an incremental, assumption-based CDCL SAT solver
// and the thin Core wrapper the rest of the engine drives it through.
package sat

import (
	"fmt"
	"strings"
)

// Lit is a DIMACS-style signed literal: a positive integer names a
// variable, its negation names the variable's negated occurrence. Lit 0
// is never valid.
type Lit int32

// Var returns the variable underlying l, always positive.
func (l Lit) Var() int32 {
	if l < 0 {
		return int32(-l)
	}
	return int32(l)
}

// Negate returns the complementary literal.
func (l Lit) Negate() Lit {
	return -l
}

// Sign reports whether l is a negative occurrence of its variable.
func (l Lit) Sign() bool {
	return l < 0
}

// String renders a literal the way DIMACS comments and debug logs do.
func (l Lit) String() string {
	if l < 0 {
		return fmt.Sprintf("-%d", -l)
	}
	return fmt.Sprintf("%d", l)
}

// Clause is a disjunction of literals. An empty clause is unsatisfiable;
// a single-literal clause is a unit.
type Clause struct {
	Lits    []Lit
	ID      int
	Learned bool
	LBD     int
}

// NewClause builds a clause, taking ownership of lits.
func NewClause(lits ...Lit) *Clause {
	return &Clause{Lits: lits}
}

// IsUnit reports whether the clause has exactly one literal.
func (c *Clause) IsUnit() bool { return len(c.Lits) == 1 }

// IsEmpty reports whether the clause has no literals.
func (c *Clause) IsEmpty() bool { return len(c.Lits) == 0 }

func (c *Clause) String() string {
	parts := make([]string, len(c.Lits))
	for i, l := range c.Lits {
		parts[i] = l.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// CNF is a conjunction of clauses over a known set of variables. It is
// built once by the compile package and then treated as immutable: the
// Core never mutates the CNF it was constructed from, so many Cores can
// safely share one.
type CNF struct {
	Clauses  []*Clause
	NumVars  int32
	nextID   int
}

// NewCNF creates an empty formula over numVars variables (1..numVars).
func NewCNF(numVars int32) *CNF {
	return &CNF{NumVars: numVars, nextID: 1}
}

// AddClause appends a clause, assigning it a stable ID.
func (f *CNF) AddClause(c *Clause) {
	c.ID = f.nextID
	f.nextID++
	f.Clauses = append(f.Clauses, c)
	for _, l := range c.Lits {
		if v := l.Var(); v > f.NumVars {
			f.NumVars = v
		}
	}
}

// Assignment is a complete or partial truth assignment indexed by
// variable number (index 0 unused).
type Assignment []int8

const (
	unassigned int8 = 0
	assignedT  int8 = 1
	assignedF  int8 = -1
)

// NewAssignment allocates an assignment large enough for numVars variables.
func NewAssignment(numVars int32) Assignment {
	return make(Assignment, numVars+1)
}

// Value reports the truth value of l under this assignment, and whether
// the underlying variable has been assigned at all.
func (a Assignment) Value(l Lit) (value bool, ok bool) {
	v := a[l.Var()]
	if v == unassigned {
		return false, false
	}
	truth := v == assignedT
	if l.Sign() {
		truth = !truth
	}
	return truth, true
}

// Clone returns an independent copy of the assignment.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	copy(out, a)
	return out
}

// Result is the outcome of a solve attempt.
type Result int

const (
	// Unknown means the solve did not complete (budget exhausted).
	Unknown Result = iota
	Sat
	Unsat
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// Statistics tracks solver activity, surfaced mostly for logging.
type Statistics struct {
	Decisions    int64
	Propagations int64
	Conflicts    int64
	Restarts     int64
	Solves       int64
}

package sat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCore(t *testing.T, cnf *CNF) *Core {
	t.Helper()
	return NewCore(cnf, NewBudgetTracker(1000), nil)
}

func TestSolveSatisfiable(t *testing.T) {
	cnf := NewCNF(2)
	cnf.AddClause(NewClause(1, 2))
	cnf.AddClause(NewClause(-1, 2))
	core := newTestCore(t, cnf)

	res, err := core.Solve(nil)
	require.NoError(t, err)
	assert.Equal(t, Sat, res)
}

func TestSolveUnsatisfiable(t *testing.T) {
	cnf := NewCNF(1)
	cnf.AddClause(NewClause(1))
	cnf.AddClause(NewClause(-1))
	core := newTestCore(t, cnf)

	res, err := core.Solve(nil)
	require.NoError(t, err)
	assert.Equal(t, Unsat, res)
}

func TestSolveWithAssumptionsConflict(t *testing.T) {
	cnf := NewCNF(2)
	cnf.AddClause(NewClause(1, 2))
	cnf.AddClause(NewClause(-1, -2))
	core := newTestCore(t, cnf)

	res, err := core.Solve([]Lit{1, 2})
	require.NoError(t, err)
	assert.Equal(t, Unsat, res)
}

func TestSolveWithCoreReturnsAssumptionSubset(t *testing.T) {
	cnf := NewCNF(3)
	cnf.AddClause(NewClause(1, 2, 3))
	core := newTestCore(t, cnf)

	coreLits, res, err := core.SolveWithCore([]Lit{-1, -2, -3})
	require.NoError(t, err)
	assert.Equal(t, Unsat, res)
	assert.NotEmpty(t, coreLits)
}

func TestSolveWithSolutionReturnsModel(t *testing.T) {
	cnf := NewCNF(2)
	cnf.AddClause(NewClause(1, 2))
	core := newTestCore(t, cnf)

	assignment, res, err := core.SolveWithSolution(nil)
	require.NoError(t, err)
	require.Equal(t, Sat, res)
	assert.Len(t, assignment, 3)
}

func TestFixValuesRebuildsOnNonMonotonicRetraction(t *testing.T) {
	cnf := NewCNF(2)
	cnf.AddClause(NewClause(1, 2))
	core := newTestCore(t, cnf)

	require.NoError(t, core.FixValues([]Lit{1}))
	require.NoError(t, core.FixValues([]Lit{2}))

	res, err := core.Solve(nil)
	require.NoError(t, err)
	assert.Equal(t, Sat, res)
}

func TestQuickMUSShrinksToMinimalSubset(t *testing.T) {
	cnf := NewCNF(3)
	cnf.AddClause(NewClause(1, 2, 3))
	core := newTestCore(t, cnf)

	mus, ok := core.QuickMUS(nil, []Lit{-1, -2, -3}, 0)
	assert.True(t, ok)
	assert.Len(t, mus, 3)
}

func TestBudgetTrackerWidensAfterRepeatedLimits(t *testing.T) {
	b := NewBudgetTracker(10)
	for i := 0; i < 4; i++ {
		b.RecordLimit()
	}
	assert.Equal(t, int64(100), b.Current())
	b.RecordCompletion()
	assert.Equal(t, int64(0), b.trips.Load())
}

package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacs-cp/demystify-go/model"
	"github.com/stacs-cp/demystify-go/musdict"
	"github.com/stacs-cp/demystify-go/puzzlesolver"
	"github.com/stacs-cp/demystify-go/sat"
)

// buildTwoCellPuzzle mirrors puzzlesolver's own fixture: two cells, each
// taking value 1 or 2, forced to differ, with one named constraint
// covering both cells. The constraint's own CON literal (100) isn't part
// of this CNF — size-0 deductions here follow from the known facts
// alone — but is still recorded on the ConstraintInfo so MusToUserMUS
// can resolve it the way a CON-gated constraint's MUS literal would
// resolve in a real compiled puzzle.
func buildTwoCellPuzzle(t *testing.T) (*sat.Pool, *model.Bijection, []model.ConstraintInfo) {
	t.Helper()
	cnf := sat.NewCNF(4)
	cnf.AddClause(sat.NewClause(1, 2))
	cnf.AddClause(sat.NewClause(-1, -2))
	cnf.AddClause(sat.NewClause(3, 4))
	cnf.AddClause(sat.NewClause(-3, -4))
	cnf.AddClause(sat.NewClause(-1, -3))
	cnf.AddClause(sat.NewClause(-2, -4))

	bij := model.NewBijection()
	cellA := model.NewVariable("cellA", nil)
	cellB := model.NewVariable("cellB", nil)
	bij.AddPair(model.VarValPair{Var: cellA, Val: 1}, sat.Lit(1))
	bij.AddPair(model.VarValPair{Var: cellA, Val: 2}, sat.Lit(2))
	bij.AddPair(model.VarValPair{Var: cellB, Val: 1}, sat.Lit(3))
	bij.AddPair(model.VarValPair{Var: cellB, Val: 2}, sat.Lit(4))

	cons := []model.ConstraintInfo{{
		Name:        "differ",
		Description: "cellA and cellB must differ",
		Scope:       map[string]struct{}{cellA.Key(): {}, cellB.Key(): {}},
		Lits:        []sat.Lit{100},
	}}

	pool := sat.NewPool(cnf, sat.NewBudgetTracker(1000), 2, nil)
	return pool, bij, cons
}

func TestNewMarksSizeZeroLitsAsDeduced(t *testing.T) {
	pool, bij, cons := buildTwoCellPuzzle(t)
	solver := puzzlesolver.NewSolver(pool, bij, nil, nil, nil)
	solver.AddKnownLit(sat.Lit(1))

	p, err := New(solver, bij, cons, nil)
	require.NoError(t, err)
	assert.NotNil(t, p)

	// cellB=2 followed from cellA=1 alone (size-0 MUS), so it should
	// already be known without needing a QuickSolve step for it.
	assert.Contains(t, solver.KnownLits(), sat.Lit(4))
}

func TestQuickSolveProducesNoStepsWhenAlreadyDecided(t *testing.T) {
	pool, bij, cons := buildTwoCellPuzzle(t)
	solver := puzzlesolver.NewSolver(pool, bij, nil, nil, nil)
	solver.AddKnownLit(sat.Lit(1))

	p, err := New(solver, bij, cons, nil)
	require.NoError(t, err)

	// cellA=1 alone already makes both cellB=2 and cellB!=1 provable
	// with a size-0 MUS, so the constructor deduces them both up front
	// and no provable literal remains for QuickSolve's loop to act on.
	assert.Contains(t, solver.KnownLits(), sat.Lit(-3))

	steps, err := p.QuickSolve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestCheckSolvabilityReportsConsistentPuzzle(t *testing.T) {
	pool, bij, cons := buildTwoCellPuzzle(t)
	solver := puzzlesolver.NewSolver(pool, bij, nil, nil, nil)
	solver.AddKnownLit(sat.Lit(1))

	p, err := New(solver, bij, cons, nil)
	require.NoError(t, err)

	_, solvable, err := p.CheckSolvability(context.Background())
	require.NoError(t, err)
	assert.True(t, solvable)
}

func TestCheckSolvabilityDetectsContradiction(t *testing.T) {
	pool, bij, cons := buildTwoCellPuzzle(t)
	solver := puzzlesolver.NewSolver(pool, bij, nil, nil, nil)
	solver.AddKnownLit(sat.Lit(1)) // cellA = 1
	solver.AddKnownLit(sat.Lit(3)) // cellB = 1, contradicts the differ constraint

	p, err := New(solver, bij, cons, nil)
	require.NoError(t, err)

	_, solvable, err := p.CheckSolvability(context.Background())
	require.NoError(t, err)
	assert.False(t, solvable)
}

func TestMusToUserMUSResolvesPuzLitsAndDescriptions(t *testing.T) {
	pool, bij, cons := buildTwoCellPuzzle(t)
	solver := puzzlesolver.NewSolver(pool, bij, nil, nil, nil)
	p, err := New(solver, bij, cons, nil)
	require.NoError(t, err)

	// allLits mixes a deduced fact literal (cellA=1) with the
	// constraint's own CON literal, exactly as musesToStep assembles a
	// step's literal set.
	puzLits, descriptions := p.MusToUserMUS([]sat.Lit{1, 100})
	require.Len(t, puzLits, 1)
	assert.Equal(t, 1, puzLits[0].VarVal.Val)
	assert.Contains(t, descriptions, "cellA and cellB must differ")
}

func TestFilteredMusesKeepsOnlyMatchingLiterals(t *testing.T) {
	dict := musdict.NewDict()
	dict.AddMus(sat.Lit(-3), []sat.Lit{4})
	dict.AddMus(sat.Lit(2), []sat.Lit{1, -2})

	filtered := FilteredMuses(dict, func(l sat.Lit) bool { return l == sat.Lit(-3) })
	assert.Contains(t, filtered.Lits(), sat.Lit(-3))
	assert.NotContains(t, filtered.Lits(), sat.Lit(2))
}

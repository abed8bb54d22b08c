package puzzlesolver

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacs-cp/demystify-go/sat"
)

func TestGetManyVarsSmallMusQuickRecordsJustifications(t *testing.T) {
	pool, bij := buildTwoCellPuzzle(t)
	s := NewSolver(pool, bij, nil, nil, nil)
	s.AddKnownLit(sat.Lit(1))

	provable, err := s.GetProvableVarLits(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, provable)

	dict, err := s.GetManyVarsSmallMusQuick(context.Background(), provable, 2)
	require.NoError(t, err)
	assert.False(t, dict.IsEmpty())
}

func TestGetAllLitsSolvedByMusExpandsCoverage(t *testing.T) {
	pool, bij := buildTwoCellPuzzle(t)
	s := NewSolver(pool, bij, nil, nil, nil)
	s.AddKnownLit(sat.Lit(1))

	solved, err := s.GetAllLitsSolvedByMus([]sat.Lit{1})
	require.NoError(t, err)
	assert.Contains(t, solved, sat.Lit(4))
}

func TestRandomSolutionReturnsCompleteModel(t *testing.T) {
	pool, bij := buildTwoCellPuzzle(t)
	s := NewSolver(pool, bij, nil, nil, nil)
	rng := rand.New(rand.NewPCG(7, 7))

	assignment, err := s.RandomSolution(rng, 0)
	require.NoError(t, err)
	require.NotNil(t, assignment)

	aVal1, ok1 := assignment.Value(sat.Lit(1))
	aVal2, ok2 := assignment.Value(sat.Lit(2))
	require.True(t, ok1)
	require.True(t, ok2)
	assert.NotEqual(t, aVal1, aVal2)
}

func TestMetTargetFindBiggerRequiresLargerMus(t *testing.T) {
	pool, bij := buildTwoCellPuzzle(t)
	s := NewSolver(pool, bij, nil, nil, nil)
	s.musConfig.FindBigger = true
	assert.False(t, s.metTarget(2, 5))
	assert.True(t, s.metTarget(0, 20))
}

// Without the CON literal threaded into the assumption prefix, the
// "differ" constraint's gated clauses can be trivially satisfied by
// leaving the gate false, so cellA=1 would no longer force cellB=2.
func TestGetProvableVarLitsRequiresConLitToForceGatedConstraint(t *testing.T) {
	pool, bij, con := buildTwoCellPuzzleWithCon(t)

	ungated := NewSolver(pool, bij, nil, nil, nil)
	ungated.AddKnownLit(sat.Lit(1))
	provable, err := ungated.GetProvableVarLits(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, provable, sat.Lit(4))

	gated := NewSolver(pool, bij, nil, []sat.Lit{con}, nil)
	gated.AddKnownLit(sat.Lit(1))
	provable, err = gated.GetProvableVarLits(context.Background())
	require.NoError(t, err)
	assert.Contains(t, provable, sat.Lit(4))
}

// GetManyVarsSmallMusQuick's MUS for the gated constraint must include
// the CON literal itself: it is the only thing making cellA=1 ^ cellB=1
// unsatisfiable.
func TestGetManyVarsSmallMusQuickIncludesConLit(t *testing.T) {
	pool, bij, con := buildTwoCellPuzzleWithCon(t)
	s := NewSolver(pool, bij, nil, []sat.Lit{con}, nil)
	s.AddKnownLit(sat.Lit(1))

	provable, err := s.GetProvableVarLits(context.Background())
	require.NoError(t, err)
	require.Contains(t, provable, sat.Lit(4))

	dict, err := s.GetManyVarsSmallMusQuick(context.Background(), []sat.Lit{4}, 2)
	require.NoError(t, err)
	muses := dict.MusesFor(sat.Lit(4))
	require.NotEmpty(t, muses)
	assert.Contains(t, muses[0], con)
}

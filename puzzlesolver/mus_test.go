package puzzlesolver

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacs-cp/demystify-go/sat"
)

func TestGetVarMusQuickShrinksToMinimalSubset(t *testing.T) {
	pool, bij := buildTwoCellPuzzle(t)
	s := NewSolver(pool, bij, nil, nil, nil)

	// Provide every other known-ish literal as a candidate; only lit 1
	// (cellA=1) is actually needed to force cellB=2 (lit 4).
	mus, err := s.GetVarMusQuick(sat.Lit(4), []sat.Lit{1, -2}, 0)
	require.NoError(t, err)
	assert.Contains(t, mus, sat.Lit(1))
}

func TestGetVarMusSizeOneFindsSingletonJustification(t *testing.T) {
	pool, bij := buildTwoCellPuzzle(t)
	s := NewSolver(pool, bij, nil, nil, nil)

	mus, err := s.GetVarMusSizeOne(sat.Lit(4), []sat.Lit{1, -2})
	require.NoError(t, err)
	assert.Equal(t, []sat.Lit{1}, mus)
}

func TestGetVarMusSliceConverges(t *testing.T) {
	pool, bij := buildTwoCellPuzzle(t)
	s := NewSolver(pool, bij, nil, nil, nil)
	rng := rand.New(rand.NewPCG(1, 2))

	mus, err := s.GetVarMusSlice(rng, sat.Lit(4), []sat.Lit{1, -2}, 0.5)
	require.NoError(t, err)
	assert.NotEmpty(t, mus)
}

func TestGetVarMusCakeConverges(t *testing.T) {
	pool, bij := buildTwoCellPuzzle(t)
	s := NewSolver(pool, bij, nil, nil, nil)

	mus, err := s.GetVarMusCake(sat.Lit(4), []sat.Lit{1, -2}, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, mus)
}

func TestPercentageReduceTrimsClampsToHalfLength(t *testing.T) {
	trims := percentageReduceTrims(0.99, 10)
	assert.Equal(t, 5, trims)
}

func TestChooseStrategyDynamicPicksCakeBelowFive(t *testing.T) {
	pool, bij := buildTwoCellPuzzle(t)
	s := NewSolver(pool, bij, nil, nil, nil)
	assert.Equal(t, StrategyCake, s.chooseStrategy(3))
	assert.Equal(t, StrategySlice, s.chooseStrategy(10))
}

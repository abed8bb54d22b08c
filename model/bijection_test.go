package model

import (
	"testing"

	"github.com/stacs-cp/demystify-go/sat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBijectionRoundTrip(t *testing.T) {
	b := NewBijection()
	vv := VarValPair{Var: NewVariable("cell", []int{1}), Val: 2}
	b.AddPair(vv, sat.Lit(5))

	assert.Equal(t, sat.Lit(5), b.PuzLitToLit(NewEqLit(vv)))
	assert.Equal(t, sat.Lit(-5), b.PuzLitToLit(NewNeqLit(vv)))

	p := b.LitToPuzLit(sat.Lit(5))
	assert.Equal(t, NewEqLit(vv), p)
}

func TestTryLitToPuzLitMissesGracefully(t *testing.T) {
	b := NewBijection()
	_, ok := b.TryLitToPuzLit(sat.Lit(99))
	assert.False(t, ok)
}

func TestPuzLitToLitPanicsOnUnknownLiteral(t *testing.T) {
	b := NewBijection()
	vv := VarValPair{Var: NewVariable("cell", []int{1}), Val: 2}
	require.Panics(t, func() { b.PuzLitToLit(NewEqLit(vv)) })
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariableCSSKeyReplacesIllegalChars(t *testing.T) {
	v := NewVariable("grid.row-1", []int{2, 3})
	assert.Equal(t, "grid_row_1_2_idx_3_idx", v.CSSKey())
}

func TestVariableKeyIsStableForEqualIndices(t *testing.T) {
	a := NewVariable("grid", []int{1, 2})
	b := NewVariable("grid", []int{1, 2})
	assert.Equal(t, a.Key(), b.Key())
}

func TestPuzLitNegateRoundTrips(t *testing.T) {
	vv := VarValPair{Var: NewVariable("cell", []int{0}), Val: 3}
	lit := NewEqLit(vv)
	assert.True(t, lit.Equal)
	neg := lit.Negate()
	assert.False(t, neg.Equal)
	assert.Equal(t, lit, neg.Negate())
}

func TestPuzLitStringFormsMatchEqualityIntent(t *testing.T) {
	vv := VarValPair{Var: NewVariable("cell", []int{0}), Val: 3}
	assert.Equal(t, "cell[0]=3", NewEqLit(vv).String())
	assert.Equal(t, "cell[0]!=3", NewNeqLit(vv).String())
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "VAR", RoleVar.String())
	assert.Equal(t, "AUX", RoleAux.String())
	assert.Equal(t, "CON", RoleCon.String())
	assert.Equal(t, "REVEAL", RoleReveal.String())
}

func TestConstraintInfoInScope(t *testing.T) {
	v := NewVariable("cell", []int{1})
	ci := ConstraintInfo{Name: "alldiff", Scope: map[string]struct{}{v.Key(): {}}}
	assert.True(t, ci.InScope(v))
	assert.False(t, ci.InScope(NewVariable("cell", []int{2})))
}

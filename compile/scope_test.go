package compile

import (
	"testing"

	"github.com/stacs-cp/demystify-go/sat"
	"github.com/stretchr/testify/assert"
)

func TestConstraintScopeFollowsSharedClauses(t *testing.T) {
	cnf := sat.NewCNF(4)
	cnf.AddClause(sat.NewClause(1, 2))
	cnf.AddClause(sat.NewClause(2, 3))
	cnf.AddClause(sat.NewClause(4))

	scope := ConstraintScope(cnf, []int32{1})
	_, hasTwo := scope[2]
	_, hasThree := scope[3]
	_, hasFour := scope[4]
	assert.True(t, hasTwo)
	assert.True(t, hasThree)
	assert.False(t, hasFour, "unit clauses must not connect unrelated variables")
}

func TestConstraintScopeIsolatedWhenNoSharedClauses(t *testing.T) {
	cnf := sat.NewCNF(2)
	cnf.AddClause(sat.NewClause(1, -1))

	scope := ConstraintScope(cnf, []int32{2})
	assert.Len(t, scope, 1)
}

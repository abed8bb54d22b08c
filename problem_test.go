package demystify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacs-cp/demystify-go/compile"
	"github.com/stacs-cp/demystify-go/planner"
)

// buildTestDimacs is a tiny two-cell puzzle in the same shape
// puzzlesolver's own fixtures use, expressed as a savilerow-style DIMACS
// file with both VAR and CON mapping comments.
func buildTestDimacs() string {
	return strings.Join([]string{
		`p cnf 4 6`,
		`c Var 'cell_1' direct represents '1' with '1'`,
		`c Var 'cell_1' direct represents '2' with '2'`,
		`c Var 'cell_2' direct represents '1' with '3'`,
		`c Var 'cell_2' direct represents '2' with '4'`,
		`c Var 'differ_1' direct represents '1' with '1'`,
		`1 2 0`,
		`-1 -2 0`,
		`3 4 0`,
		`-3 -4 0`,
		`-1 -3 0`,
		`-2 -4 0`,
	}, "\n")
}

func buildTestAnnotations() compile.ModelAnnotations {
	return compile.ModelAnnotations{
		Vars:    []string{"cell"},
		Cons:    map[string]string{"differ_1": "cells must differ"},
		Reveals: nil,
	}
}

func TestBuildConstraintInfosResolvesScope(t *testing.T) {
	tables := buildTestAnnotations().NameTables()
	parsed, err := compile.ParseDIMACS(strings.NewReader(buildTestDimacs()), tables)
	require.NoError(t, err)

	cons := buildConstraintInfos(buildTestAnnotations(), parsed)
	require.Len(t, cons, 1)
	assert.Equal(t, "cells must differ", cons[0].Description)
	assert.Len(t, cons[0].Scope, 2)
}

func TestBuildProblemWiresSolverAndPlanner(t *testing.T) {
	annotations := buildTestAnnotations()
	tables := annotations.NameTables()
	parsed, err := compile.ParseDIMACS(strings.NewReader(buildTestDimacs()), tables)
	require.NoError(t, err)

	cfg := Config{ConflictBudget: 1000, Workers: 2}

	// newProblemFromParsed is Compile's second half, split out so it can
	// be exercised directly without a real conjure/savilerow subprocess
	// run (Compile itself needs those binaries on PATH or in a
	// container, so it is not covered by this unit test).
	problem, err := newProblemFromParsed(cfg, annotations, parsed, planner.DefaultConfig(), nil)
	require.NoError(t, err)
	require.NotNil(t, problem.Solver)
	require.NotNil(t, problem.Planner)

	ok, err := problem.Solver.IsCurrentlySolvable()
	require.NoError(t, err)
	assert.True(t, ok)
}

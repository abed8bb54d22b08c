package compile

import "github.com/stacs-cp/demystify-go/sat"

// ConstraintScope computes which variables a constraint's clauses touch,
// directly or transitively, by treating the CNF as a hypergraph where
// two clauses are neighbors if they share a variable, and breadth-first
// searching out from the clauses the constraint's own indicator literals
// appear in (spec.md §4.3.1). Unit clauses are excluded from the
// neighbor relation: a unit clause pins one variable outright and does
// not represent the constraint actually relating that variable to
// anything else, so including it would make every constraint sharing a
// fixed variable look connected to every other one.
func ConstraintScope(cnf *sat.CNF, startVars []int32) map[int32]struct{} {
	varClauses := make(map[int32][]*sat.Clause)
	for _, c := range cnf.Clauses {
		if c.IsUnit() || c.IsEmpty() {
			continue
		}
		for _, l := range c.Lits {
			v := l.Var()
			varClauses[v] = append(varClauses[v], c)
		}
	}

	visited := make(map[int32]struct{})
	var queue []int32
	for _, v := range startVars {
		if _, ok := visited[v]; !ok {
			visited[v] = struct{}{}
			queue = append(queue, v)
		}
	}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, c := range varClauses[v] {
			for _, l := range c.Lits {
				nv := l.Var()
				if _, ok := visited[nv]; !ok {
					visited[nv] = struct{}{}
					queue = append(queue, nv)
				}
			}
		}
	}
	return visited
}

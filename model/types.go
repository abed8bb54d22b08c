// Package model holds the puzzle-level data types shared across the
// compile, SAT, puzzlesolver and planner packages: the named CSP
// variables, the literals built from them, and the role tags and
// bijections that tie them to DIMACS integers.
package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/stacs-cp/demystify-go/sat"
)

// Variable names one CSP variable, e.g. row 3 column 5 of a grid puzzle
// would be Variable{Name: "grid", Indices: []int{3, 5}}. Negative
// indices occur for savilerow's own auxiliary index encoding.
type Variable struct {
	Name    string
	Indices []int
}

// NewVariable builds a Variable, copying indices.
func NewVariable(name string, indices []int) Variable {
	return Variable{Name: name, Indices: append([]int(nil), indices...)}
}

// Key returns a canonical string usable as a map key, since a slice
// field keeps Variable from being comparable directly.
func (v Variable) Key() string {
	parts := make([]string, len(v.Indices))
	for i, idx := range v.Indices {
		parts[i] = strconv.Itoa(idx)
	}
	if len(parts) == 0 {
		return v.Name
	}
	return v.Name + "_" + strings.Join(parts, "_")
}

func (v Variable) String() string {
	if len(v.Indices) == 0 {
		return v.Name
	}
	parts := make([]string, len(v.Indices))
	for i, idx := range v.Indices {
		parts[i] = strconv.Itoa(idx)
	}
	return v.Name + "[" + strings.Join(parts, ",") + "]"
}

// CSSKey mirrors the original's to_css_string: periods and dashes are
// not legal in CSS identifiers, so they are rewritten to underscores,
// and each index is appended with an "_idx" suffix.
func (v Variable) CSSKey() string {
	name := strings.NewReplacer(".", "_", "-", "_").Replace(v.Name)
	for _, idx := range v.Indices {
		name += fmt.Sprintf("_%d_idx", idx)
	}
	return name
}

// VarValPair names one variable taking one concrete value — the atomic
// fact a direct-encoded SAT literal stands for.
type VarValPair struct {
	Var Variable
	Val int
}

func (vv VarValPair) String() string {
	return fmt.Sprintf("%s=%d", vv.Var, vv.Val)
}

// CSSKey mirrors the original's lit_{var}__{val} identifier form.
func (vv VarValPair) CSSKey() string {
	return fmt.Sprintf("lit_%s__%d", vv.Var.CSSKey(), vv.Val)
}

// PuzLit is a puzzle-level literal: a variable either equal to or not
// equal to a value. Equal true means "Var = Val"; Equal false means
// "Var != Val".
type PuzLit struct {
	VarVal VarValPair
	Equal  bool
}

// NewEqLit builds "Var = Val".
func NewEqLit(vv VarValPair) PuzLit { return PuzLit{VarVal: vv, Equal: true} }

// NewNeqLit builds "Var != Val".
func NewNeqLit(vv VarValPair) PuzLit { return PuzLit{VarVal: vv, Equal: false} }

// Negate flips equality: "Var = Val" becomes "Var != Val" and back.
func (p PuzLit) Negate() PuzLit { return PuzLit{VarVal: p.VarVal, Equal: !p.Equal} }

func (p PuzLit) String() string {
	if p.Equal {
		return fmt.Sprintf("%s=%d", p.VarVal.Var, p.VarVal.Val)
	}
	return fmt.Sprintf("%s!=%d", p.VarVal.Var, p.VarVal.Val)
}

// Role tags the purpose of a DIMACS variable or constraint identifier as
// declared by the model's $#VAR/$#AUX/$#CON/$#REVEAL annotations.
type Role int

const (
	RoleVar Role = iota
	RoleAux
	RoleCon
	RoleReveal
)

func (r Role) String() string {
	switch r {
	case RoleVar:
		return "VAR"
	case RoleAux:
		return "AUX"
	case RoleCon:
		return "CON"
	case RoleReveal:
		return "REVEAL"
	default:
		return "UNKNOWN"
	}
}

// ConstraintInfo names one constraint of the compiled model: its
// identifier, a human-readable template description (the $#CON
// annotation's quoted string), the set of puzzle variables its clauses
// mention (used for scope/connectivity queries), and the CON literal(s)
// savilerow reified it with. A constraint's CON literals must be forced
// true for the CNF to stay equisatisfiable to the real puzzle, so the
// solver assumes them alongside the known facts when checking
// provability and solvability, and its MUS searches draw candidates
// from them.
type ConstraintInfo struct {
	Name        string
	Description string
	Scope       map[string]struct{} // Variable.Key() set
	Lits        []sat.Lit
}

// InScope reports whether v appears in this constraint's clauses.
func (c ConstraintInfo) InScope(v Variable) bool {
	_, ok := c.Scope[v.Key()]
	return ok
}

// RevealRule describes a REVEAL annotation: learning Src triggers a
// cascade check of Dst (used by staged-information puzzles like
// Minesweeper, where revealing a cell's count depends on it having been
// uncovered).
type RevealRule struct {
	Src Variable
	Dst Variable
}

// SortedKeys returns the keys of a string set in deterministic order,
// used whenever map iteration order would otherwise leak into output
// (error messages, plan step descriptions).
func SortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

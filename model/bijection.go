package model

import "github.com/stacs-cp/demystify-go/sat"

// Bijection maps between puzzle literals and SAT literals in both
// directions. compile builds one of these from the annotation and
// DIMACS-mapping comments described in spec.md §6; puzzlesolver and
// planner use it to cross between the two worlds without ever guessing
// at the mapping themselves.
type Bijection struct {
	toSat map[string]sat.Lit // PuzLit canonical key -> sat.Lit
	toPuz map[sat.Lit]PuzLit
}

// NewBijection returns an empty bijection ready for Add calls.
func NewBijection() *Bijection {
	return &Bijection{toSat: make(map[string]sat.Lit), toPuz: make(map[sat.Lit]PuzLit)}
}

func puzLitKey(p PuzLit) string {
	if p.Equal {
		return p.VarVal.CSSKey() + "=t"
	}
	return p.VarVal.CSSKey() + "=f"
}

// Add registers a direct correspondence between a puzzle literal and the
// SAT literal that represents it. Both p and its negation must be added
// for full coverage — callers typically add a pair at a time via AddPair.
func (b *Bijection) Add(p PuzLit, l sat.Lit) {
	b.toSat[puzLitKey(p)] = l
	b.toPuz[l] = p
}

// AddPair registers a VarValPair's two complementary literals: the
// direct encoding's "Var=Val" against l, and "Var!=Val" against -l.
func (b *Bijection) AddPair(vv VarValPair, l sat.Lit) {
	b.Add(NewEqLit(vv), l)
	b.Add(NewNeqLit(vv), -l)
}

// PuzLitToLit resolves a puzzle literal to its SAT literal. It panics
// when the literal has no bijection entry: per spec.md's invariant 4,
// every PuzLit a caller constructs must come from the compiled model's
// own domain, so a missing entry means a caller built an impossible
// literal, which is a programming error, not recoverable input.
func (b *Bijection) PuzLitToLit(p PuzLit) sat.Lit {
	l, ok := b.toSat[puzLitKey(p)]
	if !ok {
		panic("model: no bijection entry for puzzle literal " + p.String())
	}
	return l
}

// LitToPuzLit is the inverse of PuzLitToLit, with the same panic
// contract for a SAT literal belonging to no known puzzle literal.
func (b *Bijection) LitToPuzLit(l sat.Lit) PuzLit {
	p, ok := b.toPuz[l]
	if !ok {
		panic("model: no bijection entry for sat literal")
	}
	return p
}

// TryLitToPuzLit is the non-panicking form, used when probing literals
// that may be internal auxiliary variables with no puzzle meaning.
func (b *Bijection) TryLitToPuzLit(l sat.Lit) (PuzLit, bool) {
	p, ok := b.toPuz[l]
	return p, ok
}

// AllPuzLits returns every puzzle literal the bijection knows, in no
// particular order.
func (b *Bijection) AllPuzLits() []PuzLit {
	out := make([]PuzLit, 0, len(b.toPuz))
	for _, p := range b.toPuz {
		out = append(out, p)
	}
	return out
}

// Package musdict stores the smallest minimal unsatisfiable subset found
// so far for each literal, and the set of other literals that were held
// fixed while finding it.
package musdict

import (
	"sort"

	"github.com/stacs-cp/demystify-go/sat"
)

// MusContext is one recorded justification: Mus is the minimal
// unsatisfiable subset itself, Lits is the broader set of literals that
// were known (fixed) when the MUS was found — kept alongside the MUS so
// callers can later ask "does this MUS still apply under a larger known
// set" via MergeMusContexts.
type MusContext struct {
	Lits map[sat.Lit]struct{}
	Mus  map[sat.Lit]struct{}
}

// NewMusContext builds a context from slices, deduplicating into sets.
func NewMusContext(lits, mus []sat.Lit) MusContext {
	return MusContext{Lits: toSet(lits), Mus: toSet(mus)}
}

func toSet(lits []sat.Lit) map[sat.Lit]struct{} {
	s := make(map[sat.Lit]struct{}, len(lits))
	for _, l := range lits {
		s[l] = struct{}{}
	}
	return s
}

// SortedMus returns Mus as a deterministically ordered slice, used
// whenever a MUS must be compared, displayed, or used as a dictionary
// key (Go lacks a BTreeSet, so canonicalized sorted slices take its
// place for ordering).
func (m MusContext) SortedMus() []sat.Lit {
	return sortedLits(m.Mus)
}

func sortedLits(set map[sat.Lit]struct{}) []sat.Lit {
	out := make([]sat.Lit, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func musKey(mus map[sat.Lit]struct{}) string {
	sorted := sortedLits(mus)
	// Comma-terminated decimal literals in sorted order: each literal's
	// text ends at its comma, so this never collides for distinct sets.
	key := make([]byte, 0, len(sorted)*6)
	for _, l := range sorted {
		key = append(key, []byte(l.String()+",")...)
	}
	return string(key)
}

// MergeMusContexts combines two contexts: the result holds the union of
// their Lits and the smaller of their two Mus sets (a's on a tie; an
// empty Mus counts as absent). The other Mus is not kept.
func MergeMusContexts(a, b MusContext) MusContext {
	lits := make(map[sat.Lit]struct{}, len(a.Lits)+len(b.Lits))
	for l := range a.Lits {
		lits[l] = struct{}{}
	}
	for l := range b.Lits {
		lits[l] = struct{}{}
	}
	// Mus itself only ever holds one MUS per context by construction;
	// the smaller of the two wins, matching add_mus's tie-break.
	if len(a.Mus) == 0 {
		return MusContext{Lits: lits, Mus: b.Mus}
	}
	if len(b.Mus) == 0 {
		return MusContext{Lits: lits, Mus: a.Mus}
	}
	if len(b.Mus) < len(a.Mus) {
		return MusContext{Lits: lits, Mus: b.Mus}
	}
	return MusContext{Lits: lits, Mus: a.Mus}
}

// Dict maps each literal to the distinct smallest MUSes found that
// justify it, mirroring the original MusDict's add_mus contract: a
// strictly smaller MUS replaces everything recorded so far, an
// equally-sized one is added alongside existing entries, and a larger
// one is discarded.
type Dict struct {
	entries map[sat.Lit]map[string][]sat.Lit
}

// NewDict returns an empty Dict.
func NewDict() *Dict {
	return &Dict{entries: make(map[sat.Lit]map[string][]sat.Lit)}
}

// AddMus records newMus as a justification for lit.
func (d *Dict) AddMus(lit sat.Lit, newMus []sat.Lit) {
	set := make(map[sat.Lit]struct{}, len(newMus))
	for _, l := range newMus {
		set[l] = struct{}{}
	}
	key := musKey(set)

	existing, ok := d.entries[lit]
	if !ok {
		d.entries[lit] = map[string][]sat.Lit{key: append([]sat.Lit(nil), newMus...)}
		return
	}

	curLen := -1
	for _, mus := range existing {
		curLen = len(mus)
		break
	}
	switch {
	case curLen < 0 || len(newMus) < curLen:
		d.entries[lit] = map[string][]sat.Lit{key: append([]sat.Lit(nil), newMus...)}
	case len(newMus) == curLen:
		existing[key] = append([]sat.Lit(nil), newMus...)
	}
}

// MinLit returns the size of the smallest MUS recorded for lit, and
// whether any has been recorded at all.
func (d *Dict) MinLit(lit sat.Lit) (int, bool) {
	existing, ok := d.entries[lit]
	if !ok {
		return 0, false
	}
	for k := range existing {
		return len(existing[k]), true
	}
	return 0, false
}

// Min returns the size of the smallest MUS recorded for any literal.
func (d *Dict) Min() (int, bool) {
	best := -1
	for _, muses := range d.entries {
		for _, mus := range muses {
			if best < 0 || len(mus) < best {
				best = len(mus)
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// IsEmpty reports whether the dictionary has no entries at all.
func (d *Dict) IsEmpty() bool { return len(d.entries) == 0 }

// MusesFor returns every distinct smallest MUS recorded for lit.
func (d *Dict) MusesFor(lit sat.Lit) [][]sat.Lit {
	existing, ok := d.entries[lit]
	if !ok {
		return nil
	}
	out := make([][]sat.Lit, 0, len(existing))
	for _, mus := range existing {
		out = append(out, mus)
	}
	return out
}

// Lits returns every literal the dictionary has a recorded MUS for.
func (d *Dict) Lits() []sat.Lit {
	out := make([]sat.Lit, 0, len(d.entries))
	for l := range d.entries {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

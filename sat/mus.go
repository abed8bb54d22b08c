package sat

// QuickMUS computes a minimal unsatisfiable subset of candidates by
// deletion-based shrinking: try dropping each candidate in turn, keep
// the drop if the remainder (intersected with whatever core the solver
// returns) is still unsatisfiable, and otherwise keep the candidate. The
// known literals are always present and never removed — the returned
// set names only candidates. maxSize, if positive, aborts early once the
// working set is no larger than maxSize literals (good enough for
// size-N probing rather than an exact minimum).
//
// The bool result reports whether a MUS exists at all: known+candidates
// must itself be unsatisfiable for there to be anything to shrink. When
// the initial solve comes back SAT, no subset of candidates can prove
// anything and QuickMUS returns (nil, false) without searching.
func (c *Core) QuickMUS(known, candidates []Lit, maxSize int) ([]Lit, bool) {
	working := append([]Lit(nil), candidates...)

	base := append(append([]Lit(nil), known...), working...)
	res, err := c.Solve(base)
	if err != nil || res != Unsat {
		return nil, false
	}

	for i := 0; i < len(working); {
		if maxSize > 0 && len(working) <= maxSize {
			break
		}
		trial := without(working, i)
		assume := append(append([]Lit(nil), known...), trial...)
		core, res, err := c.SolveWithCore(assume)
		if err != nil || res != Unsat {
			i++
			continue
		}
		shrunk := intersect(trial, core)
		if len(shrunk) < len(working) {
			working = shrunk
			continue
		}
		i++
	}
	return working, true
}

func without(lits []Lit, idx int) []Lit {
	out := make([]Lit, 0, len(lits)-1)
	for i, l := range lits {
		if i != idx {
			out = append(out, l)
		}
	}
	return out
}

func intersect(a, core []Lit) []Lit {
	set := make(map[Lit]bool, len(core))
	for _, l := range core {
		set[l] = true
	}
	out := make([]Lit, 0, len(a))
	for _, l := range a {
		if set[l] {
			out = append(out, l)
		}
	}
	return out
}

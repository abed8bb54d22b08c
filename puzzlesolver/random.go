package puzzlesolver

import (
	"math/rand/v2"

	"github.com/stacs-cp/demystify-go/sat"
)

// RandomSolution greedily samples a full solution by repeatedly picking
// a random still-unassigned literal, forcing it true, and checking the
// result remains satisfiable — backing off to forcing it false when
// true doesn't work. REVEAL-rule destination literals are always forced
// true first, matching the original's behavior of diving toward fully
// uncovering staged-information puzzles before guessing anything else.
// It stops after steps literals have been decided or no candidates
// remain, and returns the resulting (possibly partial) model.
func (s *Solver) RandomSolution(rng *rand.Rand, steps int) (sat.Assignment, error) {
	core := s.pool.Core(0)
	known := s.litorig()

	reveal := s.revealDestLits()
	remaining := s.GetLiteralsToTry()

	order := append([]sat.Lit(nil), reveal...)
	rest := make([]sat.Lit, 0, len(remaining))
	revealSet := make(map[sat.Lit]bool, len(reveal))
	for _, l := range reveal {
		revealSet[l] = true
	}
	for _, l := range remaining {
		if !revealSet[l] {
			rest = append(rest, l)
		}
	}
	rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	order = append(order, rest...)

	for i, lit := range order {
		if steps > 0 && i >= steps {
			break
		}
		res, err := core.Solve(append(known, lit))
		if err != nil {
			return nil, err
		}
		if res == sat.Sat {
			known = append(known, lit)
			continue
		}
		neg := lit.Negate()
		res, err = core.Solve(append(known, neg))
		if err != nil {
			return nil, err
		}
		if res == sat.Sat {
			known = append(known, neg)
		}
	}

	assignment, res, err := core.SolveWithSolution(known)
	if err != nil || res != sat.Sat {
		return nil, err
	}
	return assignment, nil
}

func (s *Solver) revealDestLits() []sat.Lit {
	var out []sat.Lit
	for _, r := range s.reveals {
		for _, p := range s.bijection.AllPuzLits() {
			if p.VarVal.Var.Key() == r.Dst.Key() && p.Equal {
				out = append(out, s.bijection.PuzLitToLit(p))
			}
		}
	}
	return out
}

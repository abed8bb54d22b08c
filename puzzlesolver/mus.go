package puzzlesolver

import (
	"math"
	"math/rand/v2"

	"github.com/stacs-cp/demystify-go/sat"
)

// GetVarMusSizeZero reports whether lit already follows from the known
// facts alone, with no candidate literals needed at all — the cheapest
// possible check_var_mus_size_0 case: known alone already contradicts
// ¬lit.
func (s *Solver) GetVarMusSizeZero(lit sat.Lit) (bool, error) {
	res, err := s.pool.Core(0).Solve(append(s.KnownLits(), lit.Negate()))
	if err != nil {
		return false, err
	}
	return res == sat.Unsat, nil
}

// GetVarMusSizeOne first checks the size-0 case: when known alone
// already contradicts ¬lit it returns an empty, non-nil MUS. Otherwise it
// searches for a single candidate literal whose conjunction with known
// contradicts ¬lit, via the original's recursive bisection: split
// candidates in half, recurse into whichever half (if any) still
// reproduces the conflict, and fall back to a linear scan once the
// remainder is small.
func (s *Solver) GetVarMusSizeOne(lit sat.Lit, candidates []sat.Lit) ([]sat.Lit, error) {
	core := s.pool.Core(0)
	known := s.KnownLits()
	res, err := core.Solve(append(append([]sat.Lit(nil), known...), lit.Negate()))
	if err != nil {
		return nil, err
	}
	if res == sat.Unsat {
		return []sat.Lit{}, nil
	}
	return s.getVarMusSizeOneLoop(core, known, lit, candidates)
}

func (s *Solver) getVarMusSizeOneLoop(core *sat.Core, known []sat.Lit, lit sat.Lit, candidates []sat.Lit) ([]sat.Lit, error) {
	if len(candidates) <= 4 {
		for _, c := range candidates {
			assume := append(append([]sat.Lit(nil), known...), c, lit.Negate())
			res, err := core.Solve(assume)
			if err != nil {
				return nil, err
			}
			if res == sat.Unsat {
				return []sat.Lit{c}, nil
			}
		}
		return nil, nil
	}

	mid := len(candidates) / 2
	left, right := candidates[:mid], candidates[mid:]

	if res, err := s.tryHalf(core, known, lit, left); err != nil {
		return nil, err
	} else if res != nil {
		return s.getVarMusSizeOneLoop(core, known, lit, left)
	}
	if res, err := s.tryHalf(core, known, lit, right); err != nil {
		return nil, err
	} else if res != nil {
		return s.getVarMusSizeOneLoop(core, known, lit, right)
	}
	return nil, nil
}

func (s *Solver) tryHalf(core *sat.Core, known []sat.Lit, lit sat.Lit, half []sat.Lit) ([]sat.Lit, error) {
	assume := append(append(append([]sat.Lit(nil), known...), half...), lit.Negate())
	res, err := core.Solve(assume)
	if err != nil {
		return nil, err
	}
	if res == sat.Unsat {
		return half, nil
	}
	return nil, nil
}

// GetVarMusQuick shrinks candidates via plain deletion-based quick_mus.
// It returns (nil, nil) — not an error — when known, candidates, and
// ¬lit turn out to be satisfiable after all: that means no MUS exists
// among these candidates, which QuickMUS's bool result distinguishes
// from "found the empty MUS".
func (s *Solver) GetVarMusQuick(lit sat.Lit, candidates []sat.Lit, maxSize int) ([]sat.Lit, error) {
	core := s.pool.Core(0)
	known := append(append([]sat.Lit(nil), s.KnownLits()...), lit.Negate())
	mus, found := core.QuickMUS(known, candidates, maxSize)
	if !found {
		return nil, nil
	}
	if mus == nil {
		mus = []sat.Lit{}
	}
	return mus, nil
}

// percentageReduceTrims computes how many candidates to drop in one
// random-slice round: clamp(ln(0.8)/ln(percentageReduce), 0, len/2), the
// original's formula for converting a target shrink-probability into an
// expected number of literals to cut given the candidate count.
func percentageReduceTrims(percentageReduce float64, length int) int {
	if percentageReduce <= 0 || percentageReduce >= 1 {
		return 0
	}
	trims := math.Log(0.8) / math.Log(percentageReduce)
	if trims < 0 {
		trims = 0
	}
	max := float64(length) / 2
	if trims > max {
		trims = max
	}
	return int(trims)
}

// GetVarMusSlice shrinks candidates by repeatedly cutting a random slice
// of them (sized by percentageReduceTrims) and checking whether the
// remainder is still unsatisfiable with known and ¬lit, falling back to
// keeping the slice when dropping it loses the conflict. It returns
// (nil, nil) when known, candidates and ¬lit are satisfiable, since no
// MUS exists among these candidates.
func (s *Solver) GetVarMusSlice(rng *rand.Rand, lit sat.Lit, candidates []sat.Lit, percentageReduce float64) ([]sat.Lit, error) {
	core := s.pool.Core(0)
	known := append(append([]sat.Lit(nil), s.KnownLits()...), lit.Negate())
	working := append([]sat.Lit{}, candidates...)
	if res, err := core.Solve(append(append([]sat.Lit(nil), known...), working...)); err != nil {
		return nil, err
	} else if res != sat.Unsat {
		return nil, nil
	}

	for {
		trims := percentageReduceTrims(percentageReduce, len(working))
		if trims == 0 {
			return working, nil
		}
		shuffled := append([]sat.Lit(nil), working...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		trial := shuffled[trims:]

		assume := append(append([]sat.Lit(nil), known...), trial...)
		res, err := core.Solve(assume)
		if err != nil {
			return nil, err
		}
		if res == sat.Unsat {
			working = trial
			continue
		}
		return working, nil
	}
}

// GetVarMusCake shrinks candidates by the "cake-cutting" partition
// strategy: split candidates into nSlices roughly equal pieces by index
// modulo, and test dropping each piece in turn, keeping whichever
// partition still reproduces the conflict. It returns (nil, nil) when
// known, candidates and ¬lit are satisfiable, since no MUS exists among
// these candidates.
func (s *Solver) GetVarMusCake(lit sat.Lit, candidates []sat.Lit, nSlices int) ([]sat.Lit, error) {
	if nSlices < 2 {
		nSlices = 2
	}
	core := s.pool.Core(0)
	known := append(append([]sat.Lit(nil), s.KnownLits()...), lit.Negate())
	working := append([]sat.Lit{}, candidates...)
	if res, err := core.Solve(append(append([]sat.Lit(nil), known...), working...)); err != nil {
		return nil, err
	} else if res != sat.Unsat {
		return nil, nil
	}

	changed := true
	for changed {
		changed = false
		for slice := 0; slice < nSlices; slice++ {
			var trial []sat.Lit
			for i, c := range working {
				if i%nSlices != slice {
					trial = append(trial, c)
				}
			}
			if len(trial) == len(working) {
				continue
			}
			assume := append(append([]sat.Lit(nil), known...), trial...)
			res, err := core.Solve(assume)
			if err != nil {
				return nil, err
			}
			if res == sat.Unsat {
				working = trial
				changed = true
			}
		}
	}
	return working, nil
}

// chooseStrategy resolves StrategyDynamic into a concrete strategy: Cake
// when the target size is below 5, Slice otherwise, per the original
// solver.rs heuristic.
func (s *Solver) chooseStrategy(targetSize int) Strategy {
	if s.musConfig.Strategy != StrategyDynamic {
		return s.musConfig.Strategy
	}
	if targetSize < 5 {
		return StrategyCake
	}
	return StrategySlice
}

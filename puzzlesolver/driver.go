package puzzlesolver

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/stacs-cp/demystify-go/musdict"
	"github.com/stacs-cp/demystify-go/sat"
)

// conCandidates is the CON-set a MUS search over lit may draw
// candidates from: every constraint-presence literal not already fixed
// known, mirroring the original's conset_lits minus whatever the solver
// has already settled.
func (s *Solver) conCandidates(lit sat.Lit) []sat.Lit {
	out := make([]sat.Lit, 0, len(s.conLits))
	for _, c := range s.conLits {
		if c == lit || c == lit.Negate() {
			continue
		}
		if _, known := s.knownLits[c]; known {
			continue
		}
		out = append(out, c)
	}
	return out
}

// scanTinyMuses runs the size-0/1 bisection search (GetVarMusSizeOne)
// over every literal in lits against the CON-set, fanned out across the
// pool the same way the rest of this package does. These dominate any
// larger MUS GetManyVarsSmallMusQuick's main loop would otherwise go
// looking for, so callers treat a non-empty result as a reason to stop.
func (s *Solver) scanTinyMuses(ctx context.Context, lits []sat.Lit) (map[sat.Lit][]sat.Lit, error) {
	found := make([][]sat.Lit, len(lits))
	g, ctx := errgroup.WithContext(ctx)
	workers := s.pool.Size()
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < len(lits); i += workers {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				mus, err := s.GetVarMusSizeOne(lits[i], s.conCandidates(lits[i]))
				if err != nil {
					var lim *sat.SearchLimitError
					if !errors.As(err, &lim) {
						return err
					}
				}
				found[i] = mus
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tiny := make(map[sat.Lit][]sat.Lit)
	for i, mus := range found {
		if mus != nil {
			tiny[lits[i]] = mus
		}
	}
	return tiny, nil
}

// GetManyVarsSmallMusQuick is the main MUS search driver. It first runs
// the size-0/1 dominance check over every literal in lits: these beat
// any larger MUS the rest of the search could find, so a non-empty
// result (and FindBigger unset) short-circuits the whole call. Failing
// that, for every literal in lits, it grows a candidate window of the
// CON-set, shrinks it with the strategy chooseStrategy picks, and
// records whatever MUS it finds into the returned dictionary. A shared
// best-size counter lets every goroutine stop growing its own window
// once the run, as a whole, has already found a MUS at least as good as
// the target — mirroring the original's atomic best_mus_size pruning.
func (s *Solver) GetManyVarsSmallMusQuick(ctx context.Context, lits []sat.Lit, target int) (*musdict.Dict, error) {
	dict := musdict.NewDict()
	if len(lits) == 0 {
		return dict, nil
	}

	tiny, err := s.scanTinyMuses(ctx, lits)
	if err != nil {
		return nil, err
	}
	if len(tiny) > 0 && !s.musConfig.FindBigger {
		for lit, mus := range tiny {
			dict.AddMus(lit, mus)
		}
		return dict, nil
	}

	var bestMusSize atomic.Int64
	bestMusSize.Store(int64(target) + 1<<20)

	results := make([]*perLitResult, len(lits))
	g, ctx := errgroup.WithContext(ctx)
	workers := s.pool.Size()
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(uint64(w)+1, uint64(w)*2+1))
			for i := w; i < len(lits); i += workers {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				r, err := s.searchOneLit(rng, lits[i], target, &bestMusSize)
				if err != nil {
					return err
				}
				results[i] = r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, r := range results {
		if r != nil && r.mus != nil {
			dict.AddMus(lits[i], r.mus)
		}
	}
	return dict, nil
}

type perLitResult struct {
	mus []sat.Lit
}

// MetTarget mirrors the original's two met_target variants: when
// find_bigger is set, a MUS is only "good enough" once 3x its size
// clears the target (so the search keeps reaching for meaningfully
// bigger justifications); otherwise any MUS at or under the target ends
// the search. Exported so planner's cross-round retry loop can apply the
// same threshold GetManyVarsSmallMusQuick uses internally.
func MetTarget(cfg MusConfig, size, target int) bool {
	if cfg.FindBigger {
		return size*3+3 <= target
	}
	return size <= target
}

func (s *Solver) metTarget(size, target int) bool {
	return MetTarget(s.musConfig, size, target)
}

func (s *Solver) searchOneLit(rng *rand.Rand, lit sat.Lit, target int, bestMusSize *atomic.Int64) (*perLitResult, error) {
	candidates := s.conCandidates(lit)

	size := s.musConfig.BaseSizeMus
	var best []sat.Lit

	for attempt := 0; attempt < s.musConfig.Repeats+1; attempt++ {
		if size > len(candidates) {
			size = len(candidates)
		}
		window := candidates
		if size < len(candidates) {
			window = append([]sat.Lit(nil), candidates[:size]...)
		}

		var mus []sat.Lit
		var err error
		switch s.chooseStrategy(target) {
		case StrategyCake:
			mus, err = s.GetVarMusCake(lit, window, 4)
		case StrategySlice:
			mus, err = s.GetVarMusSlice(rng, lit, window, 0.5)
		case StrategyQuick:
			mus, err = s.GetVarMusQuick(lit, window, 0)
		default:
			mus, err = s.GetVarMusQuick(lit, window, 0)
		}
		if err != nil {
			var lim *sat.SearchLimitError
			if !errors.As(err, &lim) {
				return nil, err
			}
		}

		if mus != nil && (best == nil || len(mus) < len(best)) {
			best = mus
		}
		if best != nil {
			for {
				cur := bestMusSize.Load()
				if int64(len(best)) >= cur || bestMusSize.CompareAndSwap(cur, int64(len(best))) {
					break
				}
			}
		}
		if best != nil && s.metTarget(len(best), target) {
			break
		}
		if s.metTarget(int(bestMusSize.Load()), target) {
			break
		}
		size = size*s.musConfig.MusMultStep + s.musConfig.MusAddStep
		if size >= len(candidates) {
			size = len(candidates)
		}
	}
	return &perLitResult{mus: best}, nil
}

// GetAllLitsSolvedByMus expands a MUS found for one literal to every
// other literal it also happens to prove: given mus (a set of CON
// literals), test each still-unknown candidate literal by checking
// whether mus ∧ known already makes its negation unsatisfiable, the
// MUS-expansion step the original calls get_all_lits_solved_by_mus
// (litorig = mus ∪ knownlits there).
func (s *Solver) GetAllLitsSolvedByMus(mus []sat.Lit) ([]sat.Lit, error) {
	core := s.pool.Core(0)
	litorig := append(append([]sat.Lit(nil), mus...), s.KnownLits()...)
	var solved []sat.Lit
	for _, lit := range s.GetLiteralsToTry() {
		assume := append(append([]sat.Lit(nil), litorig...), lit.Negate())
		res, err := core.Solve(assume)
		if err != nil {
			return nil, err
		}
		if res == sat.Unsat {
			solved = append(solved, lit)
		}
	}
	return solved, nil
}

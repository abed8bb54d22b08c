// Package puzzlesolver implements the deduction kernel: given a
// compiled puzzle and a pool of SAT Cores, it finds every literal
// provable from what is already known, and can justify a provable
// literal with a small unsatisfiable core.
package puzzlesolver

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/stacs-cp/demystify-go/model"
	"github.com/stacs-cp/demystify-go/sat"
)

// Strategy selects which MUS-shrinking algorithm GetManyVarsSmallMusQuick
// uses for a given probe.
type Strategy int

const (
	StrategyDynamic Strategy = iota
	StrategyQuick
	StrategySlice
	StrategyCake
)

// MusConfig tunes the MUS search driver, mirroring the original's
// MusConfig defaults exactly.
type MusConfig struct {
	BaseSizeMus int
	MusAddStep  int
	MusMultStep int
	Repeats     int
	FindBigger  bool
	Strategy    Strategy
}

// DefaultMusConfig matches the original solver.rs MusConfig::default().
func DefaultMusConfig() MusConfig {
	return MusConfig{
		BaseSizeMus: 2,
		MusAddStep:  1,
		MusMultStep: 2,
		Repeats:     2,
		FindBigger:  false,
		Strategy:    StrategyDynamic,
	}
}

// Config holds the solver-wide options the original's SolverConfig
// exposes.
type Config struct {
	// OnlyAssignments restricts GetLiteralsToTry to direct-encoded
	// "Var = Val" literals, skipping auxiliary/order/negative ones.
	OnlyAssignments bool
}

// Solver is the deduction kernel: it owns the known-literal state for
// one puzzle instance and drives a sat.Pool of goroutine-local Cores to
// probe which further literals follow from what's known.
type Solver struct {
	pool      *sat.Pool
	bijection *model.Bijection
	reveals   []model.RevealRule

	// conLits is the puzzle's CON set: the literals savilerow reified
	// each constraint with. Per the CNF's equisatisfiability invariant,
	// these must be forced true for any solve to mean anything about the
	// real puzzle, so IsCurrentlySolvable, GetProvableVarLits and
	// RandomSolution prepend them ahead of the known facts, exactly as the
	// original's litorig; the MUS searches instead draw their candidate
	// literals from them (conCandidates).
	conLits []sat.Lit

	knownLits   map[sat.Lit]struct{}
	toSolveLits map[sat.Lit]struct{} // cache, nil until first computed

	config    Config
	musConfig MusConfig

	log *logrus.Entry
}

// NewSolver builds a Solver with default configuration.
func NewSolver(pool *sat.Pool, bijection *model.Bijection, reveals []model.RevealRule, conLits []sat.Lit, log *logrus.Entry) *Solver {
	return NewSolverWithConfig(pool, bijection, reveals, conLits, Config{}, DefaultMusConfig(), log)
}

// NewSolverWithConfig builds a Solver with explicit Config/MusConfig.
func NewSolverWithConfig(pool *sat.Pool, bijection *model.Bijection, reveals []model.RevealRule, conLits []sat.Lit, cfg Config, musCfg MusConfig, log *logrus.Entry) *Solver {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Solver{
		pool:      pool,
		bijection: bijection,
		reveals:   reveals,
		conLits:   conLits,
		knownLits: make(map[sat.Lit]struct{}),
		config:    cfg,
		musConfig: musCfg,
		log:       log.WithField("component", "puzzlesolver"),
	}
}

// litorig returns the CON-set followed by the currently known facts —
// the assumption prefix of the provability, solvability and
// random-solution solves, so such a probe can never "solve" a puzzle by silently switching a constraint
// off (mirrors the original's litorig = conset_lits ++ knownlits).
func (s *Solver) litorig() []sat.Lit {
	out := make([]sat.Lit, 0, len(s.conLits)+len(s.knownLits))
	out = append(out, s.conLits...)
	out = append(out, s.KnownLits()...)
	return out
}

// KnownLits returns the currently known literals, sorted for determinism.
func (s *Solver) KnownLits() []sat.Lit {
	out := make([]sat.Lit, 0, len(s.knownLits))
	for l := range s.knownLits {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsCurrentlySolvable reports whether the known facts are still
// consistent with the puzzle's constraints.
func (s *Solver) IsCurrentlySolvable() (bool, error) {
	res, err := s.pool.Core(0).Solve(s.litorig())
	if err != nil {
		return false, err
	}
	return res == sat.Sat, nil
}

// AddKnownLit records lit as known, then cascades: when lit assigns a
// value to the source of a REVEAL rule, the destination's "Dst = 1"
// literal is added as known, and any variable whose value is now pinned gets its other
// values marked not-equal (domain sharpening), exactly as the original's
// add_known_lit_internal.
func (s *Solver) AddKnownLit(lit sat.Lit) {
	s.addKnownLitUnchecked(lit)

	puz, ok := s.bijection.TryLitToPuzLit(lit)
	if !ok {
		return
	}
	if puz.Equal {
		s.sharpenDomain(puz)
	}
	s.cascadeReveals(puz)
}

// addKnownLitUnchecked adds lit to the known set without cascading,
// invalidating the provable-literal cache since the known set changed.
func (s *Solver) addKnownLitUnchecked(lit sat.Lit) {
	s.knownLits[lit] = struct{}{}
	s.toSolveLits = nil
}

// AddNotProvableKnownLit adds a fact the caller has already established,
// skipping the domain sharpening and REVEAL cascade the plain AddKnownLit
// does (mirrors add_not_provable_known_lit).
func (s *Solver) AddNotProvableKnownLit(lit sat.Lit) {
	s.addKnownLitUnchecked(lit)
}

// sharpenDomain asserts "Var != v" for every value the bijection knows
// about other than the one just pinned, so later provability probes
// don't have to rediscover facts that already follow trivially from
// direct-encoding exclusivity.
func (s *Solver) sharpenDomain(pinned model.PuzLit) {
	for _, other := range s.bijection.AllPuzLits() {
		if !other.Equal {
			continue
		}
		if other.VarVal.Var.Key() != pinned.VarVal.Var.Key() {
			continue
		}
		if other.VarVal.Val == pinned.VarVal.Val {
			continue
		}
		neqLit := s.bijection.PuzLitToLit(other.Negate())
		s.addKnownLitUnchecked(neqLit)
	}
}

func (s *Solver) cascadeReveals(justLearned model.PuzLit) {
	if !justLearned.Equal {
		return
	}
	for _, r := range s.reveals {
		if r.Src.Key() != justLearned.VarVal.Var.Key() {
			continue
		}
		for _, other := range s.bijection.AllPuzLits() {
			if other.Equal && other.VarVal.Val == 1 && other.VarVal.Var.Key() == r.Dst.Key() {
				s.addKnownLitUnchecked(s.bijection.PuzLitToLit(other))
			}
		}
	}
}

// GetLiteralsToTry lists the candidate literals worth probing for
// provability: every literal in the bijection not already known, minus
// (when Config.OnlyAssignments is set) everything but direct-encoded
// positive assignment literals.
func (s *Solver) GetLiteralsToTry() []sat.Lit {
	var out []sat.Lit
	for _, p := range s.bijection.AllPuzLits() {
		if s.config.OnlyAssignments && !p.Equal {
			continue
		}
		lit := s.bijection.PuzLitToLit(p)
		if _, known := s.knownLits[lit]; known {
			continue
		}
		out = append(out, lit)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GetProvableVarLits returns every candidate literal provable from the
// currently known facts: lit is provable when the CON-set ∧ known ∧ ¬lit
// is unsatisfiable. Probes run concurrently across the Solver's pool, one
// goroutine per Core, mirroring the original's rayon par_iter.
func (s *Solver) GetProvableVarLits(ctx context.Context) ([]sat.Lit, error) {
	if s.toSolveLits != nil {
		return setToSlice(s.toSolveLits), nil
	}

	candidates := s.GetLiteralsToTry()
	known := s.litorig()

	results := make([]bool, len(candidates))
	g, ctx := errgroup.WithContext(ctx)
	workers := s.pool.Size()
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			core := s.pool.Core(w)
			for i := w; i < len(candidates); i += workers {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				assume := append(append([]sat.Lit(nil), known...), candidates[i].Negate())
				res, err := core.Solve(assume)
				if err != nil {
					return errors.Wrapf(err, "puzzlesolver: probing literal %v", candidates[i])
				}
				results[i] = res == sat.Unsat
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := make(map[sat.Lit]struct{})
	var provable []sat.Lit
	for i, ok := range results {
		if ok {
			provable = append(provable, candidates[i])
			set[candidates[i]] = struct{}{}
		}
	}
	s.toSolveLits = set
	sort.Slice(provable, func(i, j int) bool { return provable[i] < provable[j] })
	return provable, nil
}

func setToSlice(set map[sat.Lit]struct{}) []sat.Lit {
	out := make([]sat.Lit, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

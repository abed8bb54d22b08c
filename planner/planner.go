// Package planner sequences the puzzle solver's individual deductions
// into a human-followable plan: one step per round of newly provable
// facts, each step justified by the smallest MUS found for it.
package planner

import (
	"context"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/stacs-cp/demystify-go/model"
	"github.com/stacs-cp/demystify-go/musdict"
	"github.com/stacs-cp/demystify-go/puzzlesolver"
	"github.com/stacs-cp/demystify-go/sat"
)

// Config tunes planning behavior, mirroring the original's
// PlannerConfig defaults exactly.
type Config struct {
	MusConfig             puzzlesolver.MusConfig
	MergeSmallThreshold   int
	SkipSmallThreshold    int
	ExpandToAllDeductions bool
}

// DefaultConfig matches the original planner.rs PlannerConfig::default().
func DefaultConfig() Config {
	return Config{
		MusConfig:             puzzlesolver.DefaultMusConfig(),
		MergeSmallThreshold:   1,
		SkipSmallThreshold:    0,
		ExpandToAllDeductions: true,
	}
}

// Step is one entry in a solve plan: the literals deduced in this round
// and the constraint descriptions that justify them.
type Step struct {
	Lits         []sat.Lit
	PuzLits      []model.PuzLit
	Descriptions []string
}

// Planner drives a puzzlesolver.Solver through a full deduction
// sequence, one round of newly provable facts at a time.
type Planner struct {
	solver *puzzlesolver.Solver
	bij    *model.Bijection
	cons   []model.ConstraintInfo
	config Config
	log    *logrus.Entry
}

// New builds a Planner and immediately marks every size-0-MUS literal
// (one that follows from the known facts alone, with no constraint
// needed) as deduced, matching the original constructor's
// mark_trivial_lits_as_deduced call.
func New(solver *puzzlesolver.Solver, bij *model.Bijection, cons []model.ConstraintInfo, log *logrus.Entry) (*Planner, error) {
	return NewWithConfig(solver, bij, cons, DefaultConfig(), log)
}

// NewWithConfig is New with an explicit Config.
func NewWithConfig(solver *puzzlesolver.Solver, bij *model.Bijection, cons []model.ConstraintInfo, cfg Config, log *logrus.Entry) (*Planner, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	p := &Planner{solver: solver, bij: bij, cons: cons, config: cfg, log: log.WithField("component", "planner")}
	if err := p.markTrivialLitsAsDeduced(context.Background()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Planner) markTrivialLitsAsDeduced(ctx context.Context) error {
	provable, err := p.solver.GetProvableVarLits(ctx)
	if err != nil {
		return err
	}
	for _, lit := range provable {
		ok, err := p.solver.GetVarMusSizeZero(lit)
		if err != nil {
			return err
		}
		if ok {
			p.markLitAsDeduced(lit)
		}
	}
	return nil
}

func (p *Planner) markLitAsDeduced(lit sat.Lit) {
	p.solver.AddNotProvableKnownLit(lit)
}

func (p *Planner) markLitsAsDeduced(lits []sat.Lit) {
	for _, l := range lits {
		p.markLitAsDeduced(l)
	}
}

// GetProvableVarLitsIncludingReveals repeatedly drains
// Solver.GetProvableVarLits, adding each round's facts as known (so
// REVEAL cascades and domain sharpening can unlock further facts) until
// a round produces nothing new, then returns the full union found.
func (p *Planner) GetProvableVarLitsIncludingReveals(ctx context.Context) ([]sat.Lit, error) {
	seen := make(map[sat.Lit]struct{})
	for {
		round, err := p.solver.GetProvableVarLits(ctx)
		if err != nil {
			return nil, err
		}
		newCount := 0
		for _, l := range round {
			if _, ok := seen[l]; !ok {
				seen[l] = struct{}{}
				newCount++
			}
		}
		if newCount == 0 {
			break
		}
		for _, l := range round {
			p.solver.AddKnownLit(l)
		}
	}
	out := make([]sat.Lit, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// CheckSolvability drains every trivially provable fact first (as
// GetProvableVarLitsIncludingReveals does), then checks whether the
// puzzle's known facts are still consistent. It returns (stepCount,
// true) when solvable — stepCount counts the rounds drained — or
// (0, false) when the drain itself reveals a contradiction.
func (p *Planner) CheckSolvability(ctx context.Context) (int, bool, error) {
	rounds := 0
	for {
		round, err := p.solver.GetProvableVarLits(ctx)
		if err != nil {
			return 0, false, err
		}
		if len(round) == 0 {
			break
		}
		rounds++
		for _, l := range round {
			p.solver.AddNotProvableKnownLit(l)
		}
	}
	solvable, err := p.solver.IsCurrentlySolvable()
	if err != nil {
		return 0, false, err
	}
	if !solvable {
		return 0, false, nil
	}
	return rounds, true, nil
}

// QuickSolve computes the full step-by-step plan: each round, find
// every currently provable literal, compute the smallest MUS justifying
// each, merge together MUSes no bigger than MergeSmallThreshold into one
// step, and otherwise emit the single smallest MUS as its own step.
// Rounds whose minimum MUS size is at or below SkipSmallThreshold are
// applied silently (the facts are still marked known) without adding a
// visible step, matching the original's quick_solve_impl.
func (p *Planner) QuickSolve(ctx context.Context) ([]Step, error) {
	var steps []Step
	for {
		provable, err := p.solver.GetProvableVarLits(ctx)
		if err != nil {
			return nil, err
		}
		if len(provable) == 0 {
			break
		}

		dict, min, ok, err := p.growingMusSearch(ctx, provable)
		if err != nil {
			return nil, err
		}
		if !ok {
			// No MUS could be found (every probe hit the search limit
			// or found no conflict); mark the round known anyway so the plan makes
			// progress, but record no justification for it.
			p.markLitsAsDeduced(provable)
			continue
		}

		chosen, expandLits := p.smallestMuses(dict, min)

		if p.config.ExpandToAllDeductions {
			for _, mus := range chosen {
				more, err := p.solver.GetAllLitsSolvedByMus(mus)
				if err != nil {
					return nil, err
				}
				expandLits = append(expandLits, more...)
			}
		}

		p.markLitsAsDeduced(expandLits)

		if min <= p.config.SkipSmallThreshold {
			continue
		}

		step := p.musesToStep(chosen, expandLits)
		steps = append(steps, step)
	}
	return steps, nil
}

// growingMusSearch drives GetManyVarsSmallMusQuick through spec.md's
// growing-target pipeline: call it at the configured base size, and if
// the smallest MUS it finds across every provable literal still doesn't
// meet that target, grow mus_size (mult_step*size+add_step) and query
// again, exactly as the original's get_many_vars_small_mus_quick loop.
// Growth happens only while the query finds some MUS that misses the
// target: a query that finds no MUS at all returns ok=false at once,
// without growing the target and querying again.
func (p *Planner) growingMusSearch(ctx context.Context, provable []sat.Lit) (*musdict.Dict, int, bool, error) {
	target := p.config.MusConfig.BaseSizeMus
	var dict *musdict.Dict
	for {
		var err error
		dict, err = p.solver.GetManyVarsSmallMusQuick(ctx, provable, target)
		if err != nil {
			return nil, 0, false, err
		}

		min, ok := dict.Min()
		if !ok {
			return dict, 0, false, nil
		}
		if puzzlesolver.MetTarget(p.config.MusConfig, min, target) {
			return dict, min, true, nil
		}
		if target > math.MaxInt32 {
			return dict, min, true, nil
		}
		target = target*p.config.MusConfig.MusMultStep + p.config.MusConfig.MusAddStep
	}
}

// smallestMuses picks which MUSes of size min become this round's step:
// when min is small enough (at or below MergeSmallThreshold), every
// distinct MUS of that size is folded into one step; otherwise only the
// first (in deterministic literal order) is used, matching the
// original's smallest_muses_with_config return-all-vs-pick-first split.
func (p *Planner) smallestMuses(dict *musdict.Dict, min int) (chosen [][]sat.Lit, lits []sat.Lit) {
	mergeAll := min <= p.config.MergeSmallThreshold
	for _, lit := range dict.Lits() {
		for _, mus := range dict.MusesFor(lit) {
			if len(mus) != min {
				continue
			}
			chosen = append(chosen, mus)
			lits = append(lits, lit)
			if !mergeAll {
				return chosen, lits
			}
		}
	}
	return chosen, lits
}

func (p *Planner) musesToStep(muses [][]sat.Lit, lits []sat.Lit) Step {
	litSet := make(map[sat.Lit]struct{})
	for _, mus := range muses {
		for _, l := range mus {
			litSet[l] = struct{}{}
		}
	}
	for _, l := range lits {
		litSet[l] = struct{}{}
	}
	allLits := make([]sat.Lit, 0, len(litSet))
	for l := range litSet {
		allLits = append(allLits, l)
	}
	sort.Slice(allLits, func(i, j int) bool { return allLits[i] < allLits[j] })

	puzLits, descriptions := p.MusToUserMUS(allLits)
	return Step{Lits: allLits, PuzLits: puzLits, Descriptions: descriptions}
}

// MusToUserMUS is the non-HTML half of the original's mus_to_user_mus:
// it resolves each SAT literal in a MUS back to its puzzle literal (when
// it has one — mus mixes CON literals with the deduced fact literals
// they justify, and only the latter have one) and collects the
// human-readable description of every constraint whose own CON literal
// appears in the MUS, leaving rendering to the caller.
func (p *Planner) MusToUserMUS(mus []sat.Lit) ([]model.PuzLit, []string) {
	var puzLits []model.PuzLit
	for _, l := range mus {
		if pl, ok := p.bij.TryLitToPuzLit(l); ok {
			puzLits = append(puzLits, pl)
		}
	}
	seen := make(map[string]struct{})
	var descriptions []string
	for _, l := range mus {
		for _, c := range p.cons {
			if _, already := seen[c.Name]; already || !containsLit(c.Lits, l) {
				continue
			}
			seen[c.Name] = struct{}{}
			descriptions = append(descriptions, c.Description)
		}
	}
	return puzLits, descriptions
}

func containsLit(lits []sat.Lit, l sat.Lit) bool {
	for _, x := range lits {
		if x == l {
			return true
		}
	}
	return false
}

// FilteredMuses returns the subset of a literal-size dictionary whose
// literals pass filter — e.g. restricting to one named variable, for
// driving a single explanation rather than a whole plan. Dropped from
// spec.md's distillation but present in the original (filtered_muses);
// kept here since it is pure library surface with no rendering concern.
func FilteredMuses(dict *musdict.Dict, filter func(sat.Lit) bool) *musdict.Dict {
	out := musdict.NewDict()
	for _, lit := range dict.Lits() {
		if !filter(lit) {
			continue
		}
		for _, mus := range dict.MusesFor(lit) {
			out.AddMus(lit, mus)
		}
	}
	return out
}

// QuickGenerateDifficultyMap returns, for each literal in any step's
// Lits (deduced facts and CON literals alike), the smallest len(Lits) of
// the steps it appears in. That is the step's whole literal count, not
// the size of its MUS alone — the data a difficulty heat-map would render, without this package depending on
// any rendering format. Renamed from the original's
// quick_generate_html_difficulties since HTML generation is out of
// scope here.
func (p *Planner) QuickGenerateDifficultyMap(steps []Step) map[sat.Lit]int {
	out := make(map[sat.Lit]int)
	for _, step := range steps {
		for _, l := range step.Lits {
			if cur, ok := out[l]; !ok || len(step.Lits) < cur {
				out[l] = len(step.Lits)
			}
		}
	}
	return out
}

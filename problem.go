package demystify

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/stacs-cp/demystify-go/compile"
	"github.com/stacs-cp/demystify-go/model"
	"github.com/stacs-cp/demystify-go/planner"
	"github.com/stacs-cp/demystify-go/puzzlesolver"
	"github.com/stacs-cp/demystify-go/sat"
)

// Problem is one compiled puzzle instance, wired up end to end: the SAT
// encoding, the puzzle-level bijection and constraint metadata, and a
// ready-to-use Planner for explaining how to solve it.
type Problem struct {
	Bijection   *model.Bijection
	Constraints []model.ConstraintInfo
	Pool        *sat.Pool
	Solver      *puzzlesolver.Solver
	Planner     *planner.Planner

	log *logrus.Entry
}

// CompileOptions names the files Compile needs on disk: the .eprime
// model (carrying the $#VAR/$#AUX/$#CON/$#REVEAL annotations in its own
// comments), its .param instance, and a working directory the toolchain
// runs conjure/savilerow from.
type CompileOptions struct {
	LocalDir    string
	ModelFile   string
	ParamFile   string
	OutDir      string
	PlannerConf planner.Config
}

// Compile runs the full conjure -> savilerow -> DIMACS pipeline spec.md
// §6 describes, then builds the puzzlesolver.Solver and planner.Planner
// that operate on the result.
func Compile(ctx context.Context, cfg Config, opts CompileOptions, log *logrus.Entry) (*Problem, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	method, ok := compile.ParseRunMethod(cfg.ContainerRunMethod)
	if !ok {
		method = compile.Detect(log)
	}
	tc := compile.NewToolchain(method, log)

	modelLines, err := readLines(filepath.Join(opts.LocalDir, opts.ModelFile))
	if err != nil {
		return nil, NewError("Compile.readModel", KindParse, err)
	}
	annotations, err := compile.ParseAnnotations(modelLines)
	if err != nil {
		return nil, NewError("Compile.ParseAnnotations", KindParse, err)
	}

	if err := tc.RunConjureSolve(ctx, opts.LocalDir, opts.OutDir, opts.ModelFile, opts.ParamFile); err != nil {
		return nil, NewError("Compile.RunConjureSolve", KindToolchain, err)
	}

	base := strings.TrimSuffix(filepath.Base(opts.ModelFile), filepath.Ext(opts.ModelFile))
	refinedEprime := filepath.Join(opts.OutDir, base+".eprime")
	refinedParam := filepath.Join(opts.OutDir, base+".eprime-param")
	if err := tc.RunSavilerow(ctx, opts.LocalDir, refinedEprime, refinedParam); err != nil {
		return nil, NewError("Compile.RunSavilerow", KindToolchain, err)
	}

	dimacsPath := refinedEprime + ".dimacs"
	f, err := os.Open(dimacsPath)
	if err != nil {
		return nil, NewError("Compile.openDimacs", KindToolchain, err)
	}
	defer f.Close()

	tables := annotations.NameTables()
	parsed, err := compile.ParseDIMACS(f, tables)
	if err != nil {
		return nil, NewError("Compile.ParseDIMACS", KindParse, err)
	}

	return newProblemFromParsed(cfg, annotations, parsed, opts.PlannerConf, log)
}

// readLines loads a text file's lines, used for scanning an .eprime
// model's own $# annotation comments.
func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "demystify: reading %s", path)
	}
	return strings.Split(string(data), "\n"), nil
}

// newProblemFromParsed builds the solver/planner wiring from an already
// -parsed DIMACS result, split out from Compile so tests can exercise it
// directly without a real conjure/savilerow subprocess run.
func newProblemFromParsed(cfg Config, annotations compile.ModelAnnotations, parsed *compile.ParsedDimacs, plannerConf planner.Config, log *logrus.Entry) (*Problem, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	cons := buildConstraintInfos(annotations, parsed)

	var conLits []sat.Lit
	for _, c := range cons {
		conLits = append(conLits, c.Lits...)
	}

	budget := sat.NewBudgetTracker(cfg.ConflictBudget)
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	pool := sat.NewPool(parsed.CNF, budget, workers, log)

	solver := puzzlesolver.NewSolverWithConfig(pool, parsed.Bijection, annotations.Reveals, conLits, puzzlesolver.Config{}, plannerConf.MusConfig, log)

	p, err := planner.NewWithConfig(solver, parsed.Bijection, cons, plannerConf, log)
	if err != nil {
		return nil, NewError("Compile.newPlanner", KindConsistency, err)
	}

	return &Problem{
		Bijection:   parsed.Bijection,
		Constraints: cons,
		Pool:        pool,
		Solver:      solver,
		Planner:     p,
		log:         log,
	}, nil
}

// buildConstraintInfos resolves each declared constraint's description
// and scope (the set of puzzle variables it touches, transitively
// through shared clauses) from the DIMACS mapping comments' reified
// constraint variables.
func buildConstraintInfos(annotations compile.ModelAnnotations, parsed *compile.ParsedDimacs) []model.ConstraintInfo {
	cons := make([]model.ConstraintInfo, 0, len(annotations.Cons))
	for name, desc := range annotations.Cons {
		startVars := parsed.ConstraintVars[name]
		touched := compile.ConstraintScope(parsed.CNF, startVars)

		scope := make(map[string]struct{})
		for _, p := range parsed.Bijection.AllPuzLits() {
			l := parsed.Bijection.PuzLitToLit(p)
			if _, ok := touched[l.Var()]; ok {
				scope[p.VarVal.Var.Key()] = struct{}{}
			}
		}
		cons = append(cons, model.ConstraintInfo{Name: name, Description: desc, Scope: scope, Lits: parsed.ConstraintLits[name]})
	}
	return cons
}

package compile

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/stacs-cp/demystify-go/model"
	"github.com/stacs-cp/demystify-go/sat"
)

// sentinelValue is the placeholder savilerow emits for an order-encoded
// literal with no finite represented value (the encoding's implicit
// "beyond the domain" endpoint); mapping lines naming it are skipped.
const sentinelValue = "9223372036854775807"

var reMapping = regexp.MustCompile(`^c Var '(.*)' (direct|order) represents '(.*)' with '(-?\d+)'`)

// ParsedDimacs is everything compile extracts from a savilerow DIMACS
// file: the CNF clauses themselves, the bijection between puzzle
// literals and the SAT literals savilerow assigned them, the SAT
// variable ids reifying each named constraint (used to compute
// per-constraint scope), and the signed CON literals themselves (the
// assumptions that must hold for the reified constraint to be active).
type ParsedDimacs struct {
	CNF            *sat.CNF
	Bijection      *model.Bijection
	ConstraintVars map[string][]int32
	ConstraintLits map[string][]sat.Lit
}

// ParseDIMACS reads a savilerow-produced DIMACS file: standard "p cnf"
// header and clause lines, plus the "c Var '...' direct/order represents
// '...' with 'N'" comment trail spec.md §6 documents. Both the direct
// and order encoding forms resolve to the same Bijection interface here
// — this module only needs the two-way puzzle-literal/SAT-literal
// correspondence, not which domain-consistency clauses savilerow chose
// to encode it with.
func ParseDIMACS(r io.Reader, tables NameTables) (*ParsedDimacs, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var numVars int32
	var clauses []*sat.Clause
	bij := model.NewBijection()
	conVars := make(map[string][]int32)
	conLits := make(map[string][]sat.Lit)

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "c Var"):
			if err := parseMappingLine(line, tables, bij, conVars, conLits); err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "c"):
			continue
		case strings.HasPrefix(line, "p cnf"):
			fields := strings.Fields(line)
			if len(fields) < 4 {
				return nil, errors.Errorf("compile: malformed DIMACS header %q", line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, errors.Wrap(err, "compile: parsing DIMACS variable count")
			}
			numVars = int32(n)
		case strings.TrimSpace(line) == "":
			continue
		default:
			lits, err := parseClauseLine(line)
			if err != nil {
				return nil, err
			}
			if lits != nil {
				clauses = append(clauses, sat.NewClause(lits...))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "compile: reading DIMACS")
	}

	cnf := sat.NewCNF(numVars)
	for _, c := range clauses {
		cnf.AddClause(c)
	}
	return &ParsedDimacs{CNF: cnf, Bijection: bij, ConstraintVars: conVars, ConstraintLits: conLits}, nil
}

func parseClauseLine(line string) ([]sat.Lit, error) {
	fields := strings.Fields(line)
	lits := make([]sat.Lit, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(err, "compile: parsing DIMACS literal %q", f)
		}
		if n == 0 {
			return lits, nil
		}
		lits = append(lits, sat.Lit(n))
	}
	return lits, nil
}

func parseMappingLine(line string, tables NameTables, bij *model.Bijection, conVars map[string][]int32, conLits map[string][]sat.Lit) error {
	m := reMapping.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	name, value := m[1], m[3]
	if value == sentinelValue || strings.HasPrefix(name, "conjure_aux") {
		return nil
	}
	n, err := strconv.Atoi(m[4])
	if err != nil {
		return errors.Wrapf(err, "compile: parsing DIMACS literal %q", m[4])
	}

	if conName, ok := matchConstraintName(tables, name); ok {
		lit := sat.Lit(n)
		conVars[conName] = append(conVars[conName], lit.Var())
		conLits[conName] = append(conLits[conName], lit)
		return nil
	}

	v, err := ParseSavileRowName(tables, name)
	if err != nil {
		return errors.Wrapf(err, "compile: resolving mapping for %q", name)
	}
	if v == nil {
		// Auxiliary variable with no puzzle meaning; skip.
		return nil
	}
	val, err := strconv.Atoi(value)
	if err != nil {
		return errors.Wrapf(err, "compile: parsing represented value %q", value)
	}
	bij.AddPair(model.VarValPair{Var: *v, Val: val}, sat.Lit(n))
	return nil
}

// matchConstraintName reports whether name belongs to a declared CON
// name rather than a puzzle variable, checked before the general
// ParseSavileRowName resolution so constraint-reification variables
// never get folded into the puzzle-literal bijection.
func matchConstraintName(tables NameTables, name string) (string, bool) {
	var best string
	for _, c := range tables.Cons {
		if strings.HasPrefix(name, c) && len(c) > len(best) {
			best = c
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

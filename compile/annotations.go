package compile

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/stacs-cp/demystify-go/model"
)

// ModelAnnotations is the result of scanning an .eprime model's own
// comment lines for the $#VAR / $#AUX / $#CON / $#REVEAL declarations
// spec.md §6 defines. These name which savilerow identifiers are real
// puzzle variables, which are pure bookkeeping auxiliaries, which
// correspond to named constraints (with a human-readable description
// template), and which variable pairs participate in a REVEAL cascade.
type ModelAnnotations struct {
	Vars    []string
	AuxVars []string
	Cons    map[string]string // constraint name -> description template
	Reveals []model.RevealRule
}

var (
	reVarLine    = regexp.MustCompile(`^\$#VAR\s+(\S+)`)
	rePuzzleLine = regexp.MustCompile(`^\$#PUZZLE\s+(\S+)`)
	reAuxLine    = regexp.MustCompile(`^\$#AUX\s+(\S+)`)
	reConLine    = regexp.MustCompile(`^\$#CON\s+(\S+)\s+"(.*)"`)
	reRevealLine = regexp.MustCompile(`^\$#REVEAL\s+(\S+)\s+(\S+)`)
)

// ParseAnnotations scans an .eprime model's lines for the $# model
// annotations. Duplicate variable or constraint names are rejected: a
// model that declares the same name twice under different roles would
// make ParseSavileRowName's prefix match ambiguous.
func ParseAnnotations(lines []string) (ModelAnnotations, error) {
	ann := ModelAnnotations{Cons: make(map[string]string)}
	seen := make(map[string]bool)

	declare := func(name string) error {
		if seen[name] {
			return errors.Errorf("compile: duplicate declared name %q", name)
		}
		seen[name] = true
		return nil
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case reVarLine.MatchString(line):
			m := reVarLine.FindStringSubmatch(line)
			if err := declare(m[1]); err != nil {
				return ann, err
			}
			ann.Vars = append(ann.Vars, m[1])
		case rePuzzleLine.MatchString(line):
			m := rePuzzleLine.FindStringSubmatch(line)
			if err := declare(m[1]); err != nil {
				return ann, err
			}
			ann.Vars = append(ann.Vars, m[1])
		case reAuxLine.MatchString(line):
			m := reAuxLine.FindStringSubmatch(line)
			ann.AuxVars = append(ann.AuxVars, m[1])
		case reConLine.MatchString(line):
			m := reConLine.FindStringSubmatch(line)
			if err := declare(m[1]); err != nil {
				return ann, err
			}
			ann.Cons[m[1]] = m[2]
		case reRevealLine.MatchString(line):
			m := reRevealLine.FindStringSubmatch(line)
			ann.Reveals = append(ann.Reveals, model.RevealRule{
				Src: model.NewVariable(m[1], nil),
				Dst: model.NewVariable(m[2], nil),
			})
		}
	}
	return ann, nil
}

// NameTables builds the NameTables ParseSavileRowName needs from these
// annotations.
func (a ModelAnnotations) NameTables() NameTables {
	cons := make([]string, 0, len(a.Cons))
	for name := range a.Cons {
		cons = append(cons, name)
	}
	return NameTables{Vars: a.Vars, Cons: cons, AuxVars: a.AuxVars}
}

package compile

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/stacs-cp/demystify-go/model"
)

// NameTables lists the declared variable and constraint names a
// savilerow-generated identifier is matched against, and the auxiliary
// name prefixes that are allowed to match nothing (savilerow invents its
// own internal names for those).
type NameTables struct {
	Vars    []string
	Cons    []string
	AuxVars []string
}

// ParseSavileRowName resolves one savilerow-generated identifier back to
// a model.Variable, following the right-to-left index-suffix rule of
// spec.md §6: the single declared name that is a prefix of n is the
// variable name, and everything after it is a "_"-joined list of
// indices, each optionally "n"-prefixed to mean negative.
//
// It returns (nil, nil) when n matches no declared name but does match
// a declared aux-variable prefix — those are internal bookkeeping
// variables with no puzzle meaning, and (nil, non-nil error) when n
// matches nothing at all or matches more than one declared name.
func ParseSavileRowName(tables NameTables, n string) (*model.Variable, error) {
	var matches []string
	for _, v := range tables.Vars {
		if strings.HasPrefix(n, v) {
			matches = append(matches, v)
		}
	}
	for _, c := range tables.Cons {
		if strings.HasPrefix(n, c) {
			matches = append(matches, c)
		}
	}

	if len(matches) == 0 {
		for _, a := range tables.AuxVars {
			if strings.HasPrefix(n, a) {
				return nil, nil
			}
		}
		return nil, errors.Errorf("compile: %q is not defined -- should it be AUX?", n)
	}
	if len(matches) > 1 {
		return nil, errors.Errorf("compile: variables cannot have a common prefix: can't tell if %q is %v", n, matches)
	}

	name := matches[0]
	if name == n {
		v := model.NewVariable(name, nil)
		return &v, nil
	}

	rest := n[len(name)+1:]
	var indices []int
	if rest != "" {
		for _, arg := range strings.Split(rest, "_") {
			if arg == "" {
				continue
			}
			neg := false
			if strip, ok := strings.CutPrefix(arg, "n"); ok {
				neg = true
				arg = strip
			}
			val, err := strconv.Atoi(arg)
			if err != nil {
				return nil, errors.Wrapf(err, "compile: parsing index %q in %q", arg, n)
			}
			if neg {
				val = -val
			}
			indices = append(indices, val)
		}
	}
	v := model.NewVariable(name, indices)
	return &v, nil
}

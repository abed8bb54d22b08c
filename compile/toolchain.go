// Package compile drives the conjure/savilerow toolchain as external
// subprocesses and parses their output into the puzzle model the rest
// of the engine works with.
package compile

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RunMethod selects how Toolchain invokes external programs, mirroring
// the original's RunMethod/ProgramRunner: conjure and savilerow can run
// on the host directly, or inside a container when the host lacks them.
type RunMethod int

const (
	RunNative RunMethod = iota
	RunDocker
	RunPodman
)

func (m RunMethod) String() string {
	switch m {
	case RunDocker:
		return "docker"
	case RunPodman:
		return "podman"
	default:
		return "native"
	}
}

// ParseRunMethod parses a config string as produced by Config's
// DEMYSTIFY_CONTAINER variable; an empty string requests auto-detect.
func ParseRunMethod(s string) (RunMethod, bool) {
	switch strings.ToLower(s) {
	case "native":
		return RunNative, true
	case "docker":
		return RunDocker, true
	case "podman":
		return RunPodman, true
	default:
		return RunNative, false
	}
}

// Toolchain prepares conjure/savilerow commands, resolving RunMethod
// once (either given explicitly or auto-detected the way the original's
// detect_run_method does: prefer native if both binaries are on PATH,
// else podman, else docker, else fall back to native and let it fail
// loudly later).
type Toolchain struct {
	method RunMethod
	log    *logrus.Entry
}

// NewToolchain builds a Toolchain for an explicit method.
func NewToolchain(method RunMethod, log *logrus.Entry) *Toolchain {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Toolchain{method: method, log: log.WithField("component", "toolchain")}
}

// Detect probes PATH for conjure/savilerow/podman/docker and returns the
// best available RunMethod, exactly as the original's detect_run_method.
func Detect(log *logrus.Entry) RunMethod {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	_, errConjure := exec.LookPath("conjure")
	_, errSavilerow := exec.LookPath("savilerow")
	if errConjure == nil && errSavilerow == nil {
		return RunNative
	}
	if _, err := exec.LookPath("podman"); err == nil {
		log.Debug("conjure/savilerow not on PATH; using podman")
		return RunPodman
	}
	if _, err := exec.LookPath("docker"); err == nil {
		log.Debug("conjure/savilerow not on PATH; using docker")
		return RunDocker
	}
	return RunNative
}

// Prepare builds an *exec.Cmd for running program (with args) against
// localdir, either natively or wrapped in a container invocation
// matching the original's ghcr.io/conjure-cp/conjure:main image and
// bind-mount convention.
func (t *Toolchain) Prepare(ctx context.Context, program string, localdir string, args ...string) *exec.Cmd {
	switch t.method {
	case RunDocker, RunPodman:
		containerCmd := "podman"
		if t.method == RunDocker {
			containerCmd = "docker"
		}
		full := append([]string{
			"run", "--rm",
			"-v", ".:/workspace:Z",
			"-w", "/workspace",
			"ghcr.io/conjure-cp/conjure:main",
			program,
		}, args...)
		cmd := exec.CommandContext(ctx, containerCmd, full...)
		cmd.Dir = localdir
		return cmd
	default:
		cmd := exec.CommandContext(ctx, program, args...)
		cmd.Dir = localdir
		return cmd
	}
}

// ConjureVersion runs "conjure --version" and returns its stdout, or a
// wrapped toolchain error on failure.
func (t *Toolchain) ConjureVersion(ctx context.Context) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "compile: getwd")
	}
	cmd := t.Prepare(ctx, "conjure", dir, "--version")
	out, err := cmd.Output()
	if err != nil {
		return "", errors.Wrapf(err, "compile: conjure --version via %s", t.method)
	}
	return string(out), nil
}

// RunConjureSolve runs "conjure solve -o <outdir> <model> <param>",
// producing the generated .eprime/.param pair the savilerow step
// consumes next.
func (t *Toolchain) RunConjureSolve(ctx context.Context, localdir, outdir, model, param string) error {
	cmd := t.Prepare(ctx, "conjure", localdir, "solve", "-o", outdir, model, param)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "compile: conjure solve failed: %s", string(out))
	}
	return nil
}

// RunSavilerow runs savilerow with the exact flags spec.md §6 requires
// to get a DIMACS file with variable-mapping comments out the other end.
func (t *Toolchain) RunSavilerow(ctx context.Context, localdir, eprime, param string) error {
	cmd := t.Prepare(ctx, "savilerow", localdir,
		"-in-eprime", eprime,
		"-in-param", param,
		"-sat-output-mapping",
		"-sat",
		"-sat-family", "lingeling",
		"-S0", "-O0",
		"-reduce-domains",
		"-aggregate",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "compile: savilerow failed: %s", string(out))
	}
	return nil
}

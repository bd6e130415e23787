package conquer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/aigcube/aigcube/cnf"
)

// Exit codes following the SAT competition convention that every modern
// CDCL solver (kissat, cadical, glucose, ...) honors.
const (
	exitCodeSAT   = 10
	exitCodeUNSAT = 20
)

// ExternalBackend solves a cube by writing it to a DIMACS file and invoking
// an external SAT solver executable as a subprocess, reading its exit code
// rather than parsing any output.
type ExternalBackend struct {
	// SolverPath is the path to the external solver executable.
	SolverPath string
	// Timeout bounds each individual cube; zero means no timeout.
	Timeout time.Duration
	// KeepDir, if non-empty, is a directory the written cube CNFs are kept
	// in instead of a temporary one that gets cleaned up after each solve.
	KeepDir string

	seq int
}

// NewExternalBackend creates an ExternalBackend invoking the solver at path
// with no timeout, using a scratch temp directory for cube CNFs.
func NewExternalBackend(path string) *ExternalBackend {
	return &ExternalBackend{SolverPath: path}
}

func (b *ExternalBackend) Name() string { return "external:" + filepath.Base(b.SolverPath) }

// Solve writes formula to a DIMACS file and runs the external solver on it.
func (b *ExternalBackend) Solve(formula *cnf.CNF) (*Result, error) {
	dir := b.KeepDir
	cleanup := func() {}
	if dir == "" {
		tmp, err := os.MkdirTemp("", "aigcube_")
		if err != nil {
			return nil, &BackendFailure{Op: "Solve", Message: err.Error()}
		}
		dir = tmp
		cleanup = func() { os.RemoveAll(tmp) }
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &BackendFailure{Op: "Solve", Message: err.Error()}
	}
	defer cleanup()

	b.seq++
	path := filepath.Join(dir, fmt.Sprintf("cube_%04d.cnf", b.seq))
	f, err := os.Create(path)
	if err != nil {
		return nil, &BackendFailure{Op: "Solve", Message: err.Error()}
	}
	if err := cnf.WriteDIMACS(f, formula); err != nil {
		f.Close()
		return nil, &BackendFailure{Op: "Solve", Message: err.Error()}
	}
	if err := f.Close(); err != nil {
		return nil, &BackendFailure{Op: "Solve", Message: err.Error()}
	}

	ctx := context.Background()
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, b.SolverPath, path)
	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return &Result{Unknown: true}, nil
	}

	var exitErr *exec.ExitError
	code := 0
	if runErr != nil {
		if errors.As(runErr, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			return nil, &BackendFailure{Op: "Solve", Message: runErr.Error()}
		}
	}

	switch code {
	case exitCodeSAT:
		return &Result{Satisfiable: true}, nil
	case exitCodeUNSAT:
		return &Result{Satisfiable: false}, nil
	default:
		return &Result{Unknown: true}, nil
	}
}

package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aigcube/aigcube/aiger"
	"github.com/aigcube/aigcube/conquer"
	"github.com/aigcube/aigcube/cube"
)

var (
	solveDepth      int
	solveCandidates int
	solveSolverPath string
	solveOutput     string
	solveTimeout    float64
	solveKeepCNFs   string
)

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <circuit.aag|circuit.aig>",
		Short: "Run the full cube-and-conquer pipeline and report SAT/UNSAT",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}

	cmd.Flags().IntVarP(&solveDepth, "depth", "d", cube.DefaultMaxDepth, "cube-stage recursion depth")
	cmd.Flags().IntVarP(&solveCandidates, "candidates", "k", cube.DefaultCandidatesLimit, "lookahead candidate set size")
	cmd.Flags().StringVarP(&solveSolverPath, "solver", "s", "", "path to an external SAT solver executable (default: built-in CDCL backend)")
	cmd.Flags().StringVarP(&solveOutput, "output", "o", "", "write a CSV summary to this file")
	cmd.Flags().Float64Var(&solveTimeout, "timeout", 0, "per-cube timeout in seconds (external solver only)")
	cmd.Flags().StringVar(&solveKeepCNFs, "keep-cnfs", "", "directory to keep cube CNFs in (external solver only; default: a temp directory)")

	return cmd
}

func runSolve(cmd *cobra.Command, args []string) error {
	path := args[0]

	circuit, err := aiger.ParseFile(path)
	if err != nil {
		return err
	}

	driver := cube.NewDriverWithLimits(solveDepth, solveCandidates)

	var backend conquer.Backend
	if solveSolverPath != "" {
		backend = &conquer.ExternalBackend{
			SolverPath: solveSolverPath,
			Timeout:    time.Duration(solveTimeout * float64(time.Second)),
			KeepDir:    solveKeepCNFs,
		}
		log.Infof("Solver: %s", solveSolverPath)
	} else {
		backend = conquer.NewCDCLBackend()
		log.Info("Solver: built-in CDCL backend")
	}

	progressLine := strings.Repeat("-", 80)
	fmt.Println(progressLine)

	progress := func(index, total int, res *conquer.Result, elapsed time.Duration) {
		status := "UNKNOWN"
		switch {
		case res.Unknown:
			status = "UNKNOWN"
		case res.Satisfiable:
			status = "SAT"
		default:
			status = "UNSAT"
		}
		log.Debugf("cube %d/%d: %s (%s)", index+1, total, status, elapsed)
		fmt.Printf("  cube %4d/%d: %s  (%.2fs)\n", index+1, total, status, elapsed.Seconds())
	}

	cubeStart := time.Now()
	outcome, err := driver.Cube(circuit)
	cubeTime := time.Since(cubeStart)
	if err != nil {
		return err
	}

	var result *conquer.Result
	var conquerTime time.Duration
	numCubes := 0
	if outcome.Trivial != nil {
		log.Info("Output is constant; conquer stage skipped")
		result = &conquer.Result{Satisfiable: *outcome.Trivial}
	} else {
		numCubes = len(outcome.Cubes)
		log.Infof("Cube stage produced %d cubes in %s", numCubes, cubeTime)
		conquerStart := time.Now()
		result, err = conquer.Dispatch(backend, outcome.Cubes, progress)
		conquerTime = time.Since(conquerStart)
		if err != nil {
			return err
		}
	}
	totalTime := cubeTime + conquerTime

	final := "UNSAT"
	switch {
	case result.Unknown:
		final = "UNKNOWN"
	case result.Satisfiable:
		final = "SAT"
	}
	fmt.Println(progressLine)
	fmt.Printf("Answer: %s\n", final)
	fmt.Printf("Cubes: %d (cube: %.2fs, conquer: %.2fs)\n", numCubes, cubeTime.Seconds(), conquerTime.Seconds())
	fmt.Printf("Total: %.2fs\n", totalTime.Seconds())

	return writeSolveCSV(path, final, numCubes, cubeTime, conquerTime, totalTime)
}

func writeSolveCSV(path, answer string, numCubes int, cubeTime, conquerTime, totalTime time.Duration) error {
	if solveOutput == "" {
		return nil
	}
	f, err := os.Create(solveOutput)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"filename", "answer", "cubes", "cube_time", "conquer_time", "total_time"}); err != nil {
		return err
	}
	seconds := func(d time.Duration) string {
		return strconv.FormatFloat(d.Seconds(), 'f', 6, 64)
	}
	return w.Write([]string{
		filepath.Base(path),
		answer,
		strconv.Itoa(numCubes),
		seconds(cubeTime),
		seconds(conquerTime),
		seconds(totalTime),
	})
}

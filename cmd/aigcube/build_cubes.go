package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aigcube/aigcube/aiger"
	"github.com/aigcube/aigcube/cnf"
	"github.com/aigcube/aigcube/cube"
)

var (
	buildCubesDepth      int
	buildCubesCandidates int
	buildCubesOutDir     string
	buildCubesCSV        string
)

func newBuildCubesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build-cubes <circuit.aag|circuit.aig>",
		Short: "Decompose a circuit into cubes and write each leaf's CNF to a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuildCubes,
	}

	cmd.Flags().IntVarP(&buildCubesDepth, "depth", "d", cube.DefaultMaxDepth, "cube-stage recursion depth")
	cmd.Flags().IntVarP(&buildCubesCandidates, "candidates", "k", cube.DefaultCandidatesLimit, "lookahead candidate set size")
	cmd.Flags().StringVarP(&buildCubesOutDir, "output", "o", "", "directory to write cube_NNNN.cnf files into (required)")
	cmd.Flags().StringVar(&buildCubesCSV, "csv", "", "also write a CSV summary to this file")
	if err := cmd.MarkFlagRequired("output"); err != nil {
		panic(err)
	}

	return cmd
}

func runBuildCubes(cmd *cobra.Command, args []string) error {
	path := args[0]

	circuit, err := aiger.ParseFile(path)
	if err != nil {
		return err
	}

	driver := cube.NewDriverWithLimits(buildCubesDepth, buildCubesCandidates)

	start := time.Now()
	outcome, err := driver.Cube(circuit)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	if outcome.Trivial != nil {
		status := "UNSAT"
		if *outcome.Trivial {
			status = "SAT"
		}
		log.Infof("Output is constant: trivially %s", status)
		fmt.Printf("Trivially %s\n", status)
		return writeBuildCubesCSV(path, 0, elapsed)
	}

	if err := os.MkdirAll(buildCubesOutDir, 0o755); err != nil {
		return err
	}
	for i, leaf := range outcome.Cubes {
		cubePath := filepath.Join(buildCubesOutDir, fmt.Sprintf("cube_%04d.cnf", i))
		f, err := os.Create(cubePath)
		if err != nil {
			return err
		}
		writeErr := cnf.WriteDIMACS(f, leaf.CNF)
		closeErr := f.Close()
		if writeErr != nil {
			return writeErr
		}
		if closeErr != nil {
			return closeErr
		}
	}

	log.Infof("Cube stage produced %d cubes in %s, written to %s", len(outcome.Cubes), elapsed, buildCubesOutDir)
	fmt.Printf("Cubes: %d (cube time: %.2fs)\n", len(outcome.Cubes), elapsed.Seconds())
	fmt.Printf("Wrote cube_0000.cnf..cube_%04d.cnf to %s\n", len(outcome.Cubes)-1, buildCubesOutDir)

	return writeBuildCubesCSV(path, len(outcome.Cubes), elapsed)
}

func writeBuildCubesCSV(path string, numCubes int, elapsed time.Duration) error {
	if buildCubesCSV == "" {
		return nil
	}
	f, err := os.Create(buildCubesCSV)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"filename", "cubes", "cube_time"}); err != nil {
		return err
	}
	return w.Write([]string{filepath.Base(path), strconv.Itoa(numCubes), strconv.FormatFloat(elapsed.Seconds(), 'f', 6, 64)})
}

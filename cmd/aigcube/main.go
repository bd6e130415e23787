// Command aigcube runs the cube-and-conquer SAT pipeline over AIGER
// circuits from the command line: build-cubes decomposes a circuit and
// reports the cube count, solve runs the full pipeline end to end.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aigcube",
		Short: "aigcube",
		Long:  `A cube-and-conquer SAT solver operating natively on And-Inverter Graphs.`,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newBuildCubesCmd())
	rootCmd.AddCommand(newSolveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// fxq is a command line front end for the fxq packages: inspect fixed-point
// formats, quantize streams of values under a configured processing unit,
// and evaluate arithmetic expressions with worst-case error tracking.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	unitName string
)

var rootCmd = &cobra.Command{
	Use:   "fxq",
	Short: "fixed-point arithmetic with worst-case error tracking",
	Long: `fxq models wordlength-limited fixed-point arithmetic: explicit bit
layouts, configurable rounding and overflow, and analytic bounds on the
error any chain of operations can accumulate.

Units are defined in a yaml file (see --config) or picked from the
builtins: run "fxq units" to list what is available.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "yaml `file` of unit definitions, merged over the builtins")
	rootCmd.PersistentFlags().StringVarP(&unitName, "unit", "u", "q15", "`name` of the unit to run under")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fxq: %v\n", err)
		os.Exit(1)
	}
}

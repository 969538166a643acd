// Command underwrite runs the underwriting calculators from the shell.
//
// Usage:
//
//	underwrite run deals/elm_court.yaml
//	underwrite score markets/austin.yaml --cap-rate 0.062 --dscr 1.35
//	underwrite amortize --principal 2080000 --rate 0.065 --years 30 --term 10
//	underwrite sensitivity deals/elm_court.yaml --rows exit_cap_rate=0.06,0.065 --cols interest_rate=0.06,0.07
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"dealdesk/pkg/core/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "underwrite",
	Short:         "Real estate underwriting calculators",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		if verbose {
			return logging.Init(true)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.AddCommand(runCmd, scoreCmd, amortizeCmd, sensitivityCmd)
}

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

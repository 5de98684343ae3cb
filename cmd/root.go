// =============================================================================
// FOLIO Batch - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that the batch commands ('pol-fund', 'pol-expense-class',
// 'item-location') and 'version' are attached to.
//
// EXIT CODES:
//   0 - success, or interrupted between rows
//   1 - missing configuration file, or any runtime failure
//   2 - malformed configuration file
//
// Only configuration problems are fatal; everything that goes wrong with an
// individual input row is recorded in the audit log and the batch goes on.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/libsys-ops/folio-batch/internal/config"
)

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug-level diagnostics on stderr.
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "folio-batch",
	Short: "FOLIO batch record maintenance - bulk updates driven by delimited input files",
	Long: `folio-batch applies bulk record changes to a FOLIO tenant, driven by a
delimited input file of record keys. Each input row is processed completely,
including all of its remote calls, before the next row starts, and every row
produces one audit-log row recording the outcome and the pre-change state.

Commands:
  pol-fund           Move purchase order line fund distributions to a new fund
  pol-expense-class  Reset the expense class on POL fund distributions
  item-location      Delete the permanent location from items, looked up by barcode

Rows that cannot be processed safely (no match, multiple matches, missing
fund distributions, remote rejections) are flagged for manual review in the
audit log; the batch never aborts on a single row.`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	// An interrupt between rows is a clean stop, matching the audit log's
	// view of the world: every started row has its outcome recorded.
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Interrupted")
		os.Exit(0)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	switch {
	case errors.Is(err, config.ErrMalformed):
		os.Exit(2)
	default:
		os.Exit(1)
	}
}

// newLogger builds the diagnostic logger. Diagnostics always go to stderr
// so they never mix with an audit log written to stdout.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&cfgFile,
		"config",
		"C",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose diagnostics on stderr",
	)
}

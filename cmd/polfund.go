// =============================================================================
// FOLIO Batch - pol-fund Command
// =============================================================================
//
// Moves the fund distributions of purchase order lines to a new fund,
// re-encumbering in the process. Use this when moving encumbrances to
// different funds as part of post-fiscal-year-rollover cleanup.
//
// COMMAND USAGE:
//   folio-batch pol-fund -i moves.csv -o audit.csv
//
// INPUT:
//   Column 0 must contain the PO line number, column 1 the new fund code.
//
// Every fund distribution on a POL is set to the same new fund; there is no
// per-distribution targeting. This is a limitation of the automated
// process, not a bug.
//
// =============================================================================

package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/libsys-ops/folio-batch/internal/batch"
	"github.com/libsys-ops/folio-batch/internal/finance"
)

var polFundIO ioFlags

// polFundCmd represents the 'pol-fund' command.
var polFundCmd = &cobra.Command{
	Use:   "pol-fund",
	Short: "Move POL fund distributions to a new fund, re-encumbering",
	Long: `Reads rows of (PO line number, new fund code) and moves each purchase
order line's fund distributions to the new fund.

For each row the POL is looked up by line number, its fund distributions are
detached (which retracts the existing encumbrances), then reattached with
the new fund and freshly generated encumbrance references (which creates
replacement encumbrances on the new fund). The pre-change distribution list
is preserved in the audit row for manual recovery.

There is no automatic rollback: if the reattach step fails after a
successful detach, the POL is left with no active encumbrance and the audit
row is flagged for manual review.

Input column 0 must contain the PO line number, column 1 the new fund code.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runPolFund(cmd)
	},
}

func init() {
	rootCmd.AddCommand(polFundCmd)
	addIOFlags(polFundCmd, &polFundIO, "excel")
}

// runPolFund wires up the run and hands off to the batch driver.
func runPolFund(cmd *cobra.Command) error {
	env, err := setupRun(cmd, polFundIO, batch.FundFields)
	if err != nil {
		return err
	}
	defer env.closer()

	// Read-once lookup tables; immutable for the duration of the run.
	funds, err := finance.LoadFunds(env.ctx, env.store)
	if err != nil {
		return err
	}
	env.log.Debug("loaded funds", zap.Int("count", funds.Len()))

	years, err := finance.LoadFiscalYears(env.ctx, env.store)
	if err != nil {
		return err
	}
	fiscalYear := finance.CurrentFiscalYear(years, time.Now())
	if fiscalYear == nil {
		env.log.Warn("no fiscal year covers today; encumbrance diagnostics disabled")
	}

	return batch.FundRun(env.ctx, env.deps, funds, fiscalYear, env.rows, env.out)
}

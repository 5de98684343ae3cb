// =============================================================================
// FOLIO Batch - pol-expense-class Command
// =============================================================================
//
// Resets the expense class on purchase order line fund distributions.
//
// COMMAND USAGE:
//   folio-batch pol-expense-class -i resets.csv -o audit.csv
//   folio-batch pol-expense-class --dump-expense-classes
//
// INPUT:
//   Column 0 must contain the PO line number, column 1 the new expense
//   class code.
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/libsys-ops/folio-batch/internal/batch"
	"github.com/libsys-ops/folio-batch/internal/finance"
	"github.com/libsys-ops/folio-batch/pkg/utils"
)

var (
	expenseClassIO ioFlags

	// dumpExpenseClasses prints the expense class table and exits instead
	// of processing input.
	dumpExpenseClasses bool
)

// expenseClassCmd represents the 'pol-expense-class' command.
var expenseClassCmd = &cobra.Command{
	Use:   "pol-expense-class",
	Short: "Reset the expense class on POL fund distributions, re-encumbering",
	Long: `Reads rows of (PO line number, expense class code) and resets the expense
class on each purchase order line's fund distributions.

The fund distributions are detached from the POL (which retracts the
existing encumbrances), then reattached carrying the new expense class id
and freshly generated encumbrance references (which creates replacement
encumbrances, same funds, new expense class). The original expense class
codes and names are preserved in the audit row.

Every fund distribution on a POL receives the same new expense class.
Distributions that carry no expense class at all are flagged for manual
review and left untouched.

Input column 0 must contain the PO line number, column 1 the new expense
class code.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runExpenseClass(cmd)
	},
}

func init() {
	rootCmd.AddCommand(expenseClassCmd)
	addIOFlags(expenseClassCmd, &expenseClassIO, "excel")

	expenseClassCmd.Flags().BoolVarP(
		&dumpExpenseClasses,
		"dump-expense-classes",
		"D",
		false,
		"Print the expense classes (id, code, name) and exit",
	)
}

// runExpenseClass wires up the run and hands off to the batch driver.
func runExpenseClass(cmd *cobra.Command) error {
	if dumpExpenseClasses {
		return runDumpExpenseClasses(cmd)
	}

	env, err := setupRun(cmd, expenseClassIO, batch.ExpenseClassFields)
	if err != nil {
		return err
	}
	defer env.closer()

	classes, err := finance.LoadExpenseClasses(env.ctx, env.store)
	if err != nil {
		return err
	}
	env.log.Debug("loaded expense classes", zap.Int("count", len(classes.All())))

	return batch.ExpenseClassRun(env.ctx, env.deps, classes, env.rows, env.out)
}

// runDumpExpenseClasses prints the expense class table to the -o target
// without processing any input.
func runDumpExpenseClasses(cmd *cobra.Command) error {
	conn, err := connect(cmd)
	if err != nil {
		return err
	}
	defer conn.stop()

	classes, err := finance.LoadExpenseClasses(conn.ctx, conn.store)
	if err != nil {
		return err
	}

	out, err := utils.CreateOutput(expenseClassIO.outfile)
	if err != nil {
		return err
	}
	defer out.Close()
	return batch.DumpExpenseClasses(out, classes)
}

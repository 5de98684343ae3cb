// =============================================================================
// FOLIO Batch - item-location Command
// =============================================================================
//
// Deletes the permanent location from inventory items looked up by barcode.
//
// COMMAND USAGE:
//   folio-batch item-location -i barcodes.tsv -o audit.tsv
//   folio-batch item-location -f Barcode -i export.csv -I excel
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/libsys-ops/folio-batch/internal/batch"
	"github.com/libsys-ops/folio-batch/internal/tabular"
)

var (
	itemLocationIO ioFlags

	// barcodeField selects the input column holding the barcode: a
	// zero-based index, or a header name (the first row is then a header).
	barcodeField string
)

// itemLocationCmd represents the 'item-location' command.
var itemLocationCmd = &cobra.Command{
	Use:   "item-location",
	Short: "Delete the permanent location from items, looked up by barcode",
	Long: `Reads item barcodes from the input file, looks each item up, deletes its
permanent location, and saves the item back. The old location id and name
are preserved in the audit row.

Barcodes should be unique, but a barcode matching more than one item is
reported for manual attention rather than guessing which item was meant.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runItemLocation(cmd)
	},
}

func init() {
	rootCmd.AddCommand(itemLocationCmd)
	addIOFlags(itemLocationCmd, &itemLocationIO, "excel-tab")

	itemLocationCmd.Flags().StringVarP(
		&barcodeField,
		"barcode-field",
		"f",
		"0",
		"Input column holding the barcode: a zero-based index, or a header name (first row is then a header)",
	)
}

// runItemLocation wires up the run and hands off to the batch driver.
func runItemLocation(cmd *cobra.Command) error {
	env, err := setupRun(cmd, itemLocationIO, batch.LocationFields)
	if err != nil {
		return err
	}
	defer env.closer()

	return batch.LocationRun(env.ctx, env.deps, tabular.ParseColumnSpec(barcodeField), env.rows, env.out)
}

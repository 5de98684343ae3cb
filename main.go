// =============================================================================
// FOLIO Batch - Main Entry Point
// =============================================================================
//
// This is the main entry point for the FOLIO batch record-maintenance CLI.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   folio-batch pol-fund          - Move POL fund distributions to a new fund
//   folio-batch pol-expense-class - Reset expense classes on POL fund distributions
//   folio-batch item-location     - Delete permanent locations from items by barcode
//   folio-batch version           - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : core business logic (not for external import)
//   - pkg/           : shared utilities
//
// =============================================================================

package main

import (
	"github.com/libsys-ops/folio-batch/cmd"
)

// main is the entry point of the application. It simply calls the Execute
// function from the cmd package, which initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}

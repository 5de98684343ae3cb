package batch

import (
	"context"
	"fmt"
	"strconv"

	"github.com/libsys-ops/folio-batch/internal/audit"
	"github.com/libsys-ops/folio-batch/internal/folio"
	"github.com/libsys-ops/folio-batch/internal/inventory"
	"github.com/libsys-ops/folio-batch/internal/tabular"
)

// LocationFields is the audit column set for the item-location batch.
var LocationFields = []string{
	"timestamp",
	"barcode",
	"status_code",
	"old_loc_id",
	"old_loc",
	"msg",
}

// LocationRun deletes the permanent location from every input row's item.
// The barcode column is selected by col: a zero-based index, or a header
// name (in which case the first input row is consumed as the header).
//
// More than one item per barcode should be impossible, but the driver never
// assumes so: multi-match rows are reported rather than picking one.
func LocationRun(ctx context.Context, deps Deps, col tabular.ColumnSpec, rows tabular.RowReader, out *audit.Writer) error {
	if err := out.WriteHeader(); err != nil {
		return err
	}

	index := col.Index
	if col.ByName {
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return fmt.Errorf("input is empty, expected a header row naming column %q", col.Name)
		}
		var err error
		index, err = col.Resolve(rows.Row())
		if err != nil {
			return err
		}
	}

	for rows.Next() {
		if err := rowInterrupted(ctx); err != nil {
			return err
		}

		barcode := tabular.Cell(rows.Row(), index)
		rec := map[string]string{
			"timestamp":   audit.Timestamp(deps.now()),
			"barcode":     barcode,
			"status_code": "0",
		}

		rec["msg"], rec["status_code"], rec["old_loc_id"], rec["old_loc"] = processLocationRow(ctx, deps, barcode)
		if err := out.WriteRow(rec); err != nil {
			return err
		}
	}

	return rows.Err()
}

// processLocationRow runs one barcode's lookup and mutation, returning the
// audit columns.
func processLocationRow(ctx context.Context, deps Deps, barcode string) (msg, status, oldLocID, oldLocName string) {
	status = "0"

	if barcode == "" {
		return "input row has no barcode", status, "", ""
	}

	res, err := inventory.ItemByBarcode(ctx, deps.Store, barcode)
	if err != nil {
		return fmt.Sprintf("item lookup failed: %v", err), status, "", ""
	}

	switch res.Status {
	case folio.FindNotFound:
		return fmt.Sprintf("No item matching barcode %s", barcode), status, "", ""
	case folio.FindAmbiguous:
		return fmt.Sprintf("%d items matched barcode %s", res.Total, barcode), status, "", ""
	}

	item := folio.Clone(res.Record)
	oldLocID, oldLocName = inventory.DeletePermanentLocation(item)
	if oldLocID == "" && oldLocName == "" {
		return "Item had no permanentLocation", status, "", ""
	}

	call := deps.Store.Overwrite(ctx, inventory.ItemsPath, item)
	return call.Message, strconv.Itoa(call.StatusCode), oldLocID, oldLocName
}

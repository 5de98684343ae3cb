// =============================================================================
// FOLIO Batch - Inventory Item Helpers
// =============================================================================

// Package inventory provides accessors over inventory item records for the
// item-location batch.
package inventory

import (
	"context"

	"github.com/libsys-ops/folio-batch/internal/folio"
)

// ItemsPath is the canonical collection path for inventory items.
const ItemsPath = "/inventory/items"

// ItemByBarcode looks an item up by barcode. Barcodes are nominally unique,
// but the consequences of assuming so are unpredictable, so zero, one, and
// many matches come back as distinct outcomes.
func ItemByBarcode(ctx context.Context, store folio.Store, barcode string) (folio.FindResult, error) {
	return store.FindUnique(ctx, ItemsPath, "items", "barcode", barcode)
}

// DeletePermanentLocation removes the permanent location fields from an
// item record, returning the old location id and the old location's display
// name so the audit row can preserve them for manual recovery.
func DeletePermanentLocation(item folio.Record) (oldLocID, oldLocName string) {
	oldLocID = folio.Str(item, "permanentLocationId")
	if loc, ok := item["permanentLocation"].(folio.Record); ok {
		oldLocName = folio.Str(loc, "name")
	}
	delete(item, "permanentLocationId")
	delete(item, "permanentLocation")
	return oldLocID, oldLocName
}

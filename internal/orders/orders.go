// =============================================================================
// FOLIO Batch - Purchase Order Line Helpers
// =============================================================================
//
// Accessors over purchase order line (POL) records and their fund
// distribution arrays. POLs stay generic records end to end (see the folio
// package for why); these helpers give the rest of the code named
// operations instead of raw map plumbing.
//
// =============================================================================

package orders

import (
	"context"

	"github.com/libsys-ops/folio-batch/internal/folio"
)

// LinesPath is the canonical collection path for purchase order lines.
const LinesPath = "/orders/order-lines"

// Fund distribution field names on the wire.
const (
	fieldDistribution = "fundDistribution"
	fieldCode         = "code"
	fieldFundID       = "fundId"
	fieldExpenseClass = "expenseClassId"
	fieldEncumbrance  = "encumbrance"
)

// LineByNumber looks a POL up by its human-readable line number. The
// returned FindResult distinguishes zero, one, and many matches; callers
// handle each explicitly.
func LineByNumber(ctx context.Context, store folio.Store, polNo string) (folio.FindResult, error) {
	return store.FindUnique(ctx, LinesPath, "poLines", "poLineNumber", polNo)
}

// FundDistributions returns the POL's fund distribution entries, sharing
// structure with the record. nil when the field is absent.
func FundDistributions(pol folio.Record) []folio.Record {
	return folio.RecordSlice(pol[fieldDistribution])
}

// HasFundDistributions reports whether the POL carries at least one fund
// distribution entry.
func HasFundDistributions(pol folio.Record) bool {
	return len(FundDistributions(pol)) > 0
}

// RemoveFundDistributions deletes the fund distribution field entirely.
// Persisting the record afterwards tells the gateway to tear down the
// encumbrance transactions tied to the old distribution set.
func RemoveFundDistributions(pol folio.Record) {
	delete(pol, fieldDistribution)
}

// SetFundDistributions replaces the POL's fund distribution array.
func SetFundDistributions(pol folio.Record, dists []folio.Record) {
	pol[fieldDistribution] = folio.AnySlice(dists)
}

// SetDistributionFund points a distribution entry at a different fund.
func SetDistributionFund(dist folio.Record, code, fundID string) {
	dist[fieldCode] = code
	dist[fieldFundID] = fundID
}

// SetDistributionExpenseClass points a distribution entry at a different
// expense class.
func SetDistributionExpenseClass(dist folio.Record, expenseClassID string) {
	dist[fieldExpenseClass] = expenseClassID
}

// SetEncumbrance overwrites the distribution's encumbrance reference.
// A token the gateway has never seen causes it to open a new encumbrance
// transaction bound to whatever fund and expense class the entry carries
// at that moment.
func SetEncumbrance(dist folio.Record, token string) {
	dist[fieldEncumbrance] = token
}

// EncumbranceToken returns the distribution's encumbrance reference, or ""
// when none is present.
func EncumbranceToken(dist folio.Record) string {
	return folio.Str(dist, fieldEncumbrance)
}

// DistributionCode returns the distribution's fund code.
func DistributionCode(dist folio.Record) string {
	return folio.Str(dist, fieldCode)
}

// DistributionExpenseClassID returns the distribution's expense class id,
// or "" when the entry has none.
func DistributionExpenseClassID(dist folio.Record) string {
	return folio.Str(dist, fieldExpenseClass)
}

// HasExpenseClass reports whether the distribution names an expense class.
func HasExpenseClass(dist folio.Record) bool {
	return DistributionExpenseClassID(dist) != ""
}

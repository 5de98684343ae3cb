// =============================================================================
// FOLIO Batch - Re-encumbrance Workflow Engine
// =============================================================================
//
// Moving a purchase order line's fund distributions to a new fund or
// expense class cannot be done with a field edit: each distribution is tied
// to a live encumbrance transaction on the old fund. The gateway tears
// those down when the fundDistribution field disappears from a saved POL,
// and opens replacements when a saved distribution carries an encumbrance
// token it has never seen. The engine drives that contract:
//
//   1. Snapshot the fund distributions (always returned, for audit and
//      manual recovery).
//   2. Detach: save a working copy of the POL with the fundDistribution
//      field deleted. Anything but 204 aborts here; the remote record is
//      still in its original state.
//   3. Reattach: apply the requested change to every snapshot entry, stamp
//      each with a freshly generated encumbrance token, restore the array,
//      and save again.
//
// There is no transaction and no automatic compensation. If the reattach
// save fails, the old encumbrances are already gone and the new ones were
// never created; the outcome flags that window distinctly and hands the
// snapshot back so an operator can reconcile by hand. Re-running a row
// after a partial failure is not idempotent: it runs a second detach and
// mints new tokens.
//
// Known limitation: every distribution on the POL receives the same new
// fund or expense class. There is no per-distribution targeting.
//
// =============================================================================

package reencumber

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/libsys-ops/folio-batch/internal/folio"
	"github.com/libsys-ops/folio-batch/internal/orders"
)

// Change is the requested reassignment: a new fund (code plus resolved id),
// a new expense class id, or both. Zero-valued fields are left alone.
type Change struct {
	FundCode       string
	FundID         string
	ExpenseClassID string
}

// Phase names the workflow step an outcome refers to.
type Phase string

const (
	// PhaseDetach is the first save, removing the fund distributions.
	PhaseDetach Phase = "detach"

	// PhaseReattach is the second save, restoring the modified
	// distributions with fresh encumbrance tokens.
	PhaseReattach Phase = "reattach"
)

// Outcome is the structured result of a reassignment. The pre-change
// snapshot is always present regardless of success, so callers can record
// or manually restore the prior state.
type Outcome struct {
	// StatusCode and Message are the raw result of the last save attempted.
	StatusCode int
	Message    string

	// Phase is the step the last save belonged to.
	Phase Phase

	// Detached reports whether the detach save succeeded. When true and
	// the reattach failed, the POL sits in the inconsistent window: old
	// encumbrances retracted, new ones not created.
	Detached bool

	// Snapshot is a deep copy of the fund distributions taken before any
	// mutation. SnapshotJSON is its serialized form for the audit log.
	Snapshot     []folio.Record
	SnapshotJSON string
}

// Succeeded reports whether both saves completed.
func (o Outcome) Succeeded() bool {
	return o.Detached && o.Phase == PhaseReattach && o.StatusCode == http.StatusNoContent
}

// Putter is the single store capability the engine needs.
type Putter interface {
	Overwrite(ctx context.Context, path string, rec folio.Record) folio.CallResult
}

// Engine executes the strip/verify/reattach sequence against the store.
type Engine struct {
	store    Putter
	newToken func() string
	log      *zap.Logger
}

// New returns an engine writing through the given store. Encumbrance
// tokens come from uuid generation; every reattach mints new ones, never
// reusing a token from the snapshot or a previous attempt.
func New(store Putter, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:    store,
		newToken: uuid.NewString,
		log:      log,
	}
}

// Reassign applies the change to every fund distribution on the POL.
//
// Precondition: pol carries at least one fund distribution. Callers check
// this and report such rows for manual review before coming here; a POL
// with zero distributions must never reach the detach step.
func (e *Engine) Reassign(ctx context.Context, pol folio.Record, change Change) Outcome {
	snapshot := folio.CloneAll(orders.FundDistributions(pol))
	snapJSON := folio.MarshalRecords(snapshot)

	e.log.Debug("original fund distributions",
		zap.String("polId", folio.ID(pol)),
		zap.String("fundDistribution", snapJSON))

	// Detach: save the POL without its fund distributions so the gateway
	// retracts the encumbrances tied to the old distribution set.
	working := folio.Clone(pol)
	orders.RemoveFundDistributions(working)
	res := e.store.Overwrite(ctx, orders.LinesPath, working)
	if !res.OK() {
		return Outcome{
			StatusCode:   res.StatusCode,
			Message:      "failed to remove fund distribution: " + res.Message,
			Phase:        PhaseDetach,
			Snapshot:     snapshot,
			SnapshotJSON: snapJSON,
		}
	}

	// Reattach: rebuild the distributions from the snapshot with the
	// requested change and a fresh token per entry. The new tokens are what
	// trigger the gateway to open replacement encumbrances.
	updated := folio.CloneAll(snapshot)
	for _, dist := range updated {
		if change.FundCode != "" {
			orders.SetDistributionFund(dist, change.FundCode, change.FundID)
		}
		if change.ExpenseClassID != "" {
			orders.SetDistributionExpenseClass(dist, change.ExpenseClassID)
		}
		orders.SetEncumbrance(dist, e.newToken())
	}
	orders.SetFundDistributions(working, updated)

	e.log.Debug("updated fund distributions",
		zap.String("polId", folio.ID(pol)),
		zap.String("fundDistribution", folio.MarshalRecords(updated)))

	res = e.store.Overwrite(ctx, orders.LinesPath, working)
	return Outcome{
		StatusCode:   res.StatusCode,
		Message:      res.Message,
		Phase:        PhaseReattach,
		Detached:     true,
		Snapshot:     snapshot,
		SnapshotJSON: snapJSON,
	}
}

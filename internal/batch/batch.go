// =============================================================================
// FOLIO Batch - Batch Drivers
// =============================================================================
//
// One driver per batch variant. Each reads input rows, performs the row's
// remote round trips to completion, and writes exactly one audit row before
// touching the next input row. Processing is strictly sequential: no row
// overlaps another, and an interrupt stops the loop before the next row
// starts but never tries to unwind the row in flight — a row interrupted
// mid-workflow is left as-is for manual review on restart.
//
// No failure of a single row aborts the batch. Lookup misses, ambiguous
// matches, precondition violations, and remote rejections all become audit
// rows and the loop moves on.
//
// =============================================================================

package batch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/libsys-ops/folio-batch/internal/folio"
	"github.com/libsys-ops/folio-batch/internal/reencumber"
)

// Deps bundles what every driver needs. The store handle and engine are
// constructed once by the command layer and passed down; there is no
// ambient global client.
type Deps struct {
	Store  folio.Store
	Engine *reencumber.Engine
	Log    *zap.Logger

	// Now stamps audit rows; defaults to time.Now.
	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) log() *zap.Logger {
	if d.Log != nil {
		return d.Log
	}
	return zap.NewNop()
}

// rowInterrupted checks for cancellation between rows. In-flight rows are
// never interrupted from here; the check only gates starting the next one.
func rowInterrupted(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

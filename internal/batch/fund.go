package batch

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/libsys-ops/folio-batch/internal/audit"
	"github.com/libsys-ops/folio-batch/internal/finance"
	"github.com/libsys-ops/folio-batch/internal/folio"
	"github.com/libsys-ops/folio-batch/internal/orders"
	"github.com/libsys-ops/folio-batch/internal/reencumber"
	"github.com/libsys-ops/folio-batch/internal/tabular"
)

// FundFields is the audit column set for the pol-fund batch.
var FundFields = []string{
	"timestamp",
	"pol_no",
	"fund",
	"pol_id",
	"status_code",
	"message",
	"original_fund_distribution",
	"manual_review",
}

// FundRun moves every input row's POL fund distributions to a new fund.
// Input column 0 is the PO line number, column 1 the new fund code.
//
// fiscalYear may be nil (no fiscal year covers today); the pre-move release
// of unreleased encumbrances is then skipped, since the release query is
// scoped to a fiscal year.
func FundRun(ctx context.Context, deps Deps, funds finance.FundTable, fiscalYear *finance.FiscalYear, rows tabular.RowReader, out *audit.Writer) error {
	if err := out.WriteHeader(); err != nil {
		return err
	}

	for rows.Next() {
		if err := rowInterrupted(ctx); err != nil {
			return err
		}

		row := rows.Row()
		polNo := tabular.Cell(row, 0)
		fundCode := tabular.Cell(row, 1)

		rec := map[string]string{
			"timestamp": audit.Timestamp(deps.now()),
			"pol_no":    polNo,
			"fund":      fundCode,
		}

		if polNo == "" || fundCode == "" {
			rec["message"] = "input row needs a POL number in column 0 and a fund code in column 1"
			rec["manual_review"] = audit.ReviewYes
			if err := out.WriteRow(rec); err != nil {
				return err
			}
			continue
		}

		// The new fund code must exist before anything is touched remotely.
		fund, ok := funds.ByCode(fundCode)
		if !ok {
			rec["message"] = "fund code does not exist"
			rec["manual_review"] = audit.ReviewYes
			if err := out.WriteRow(rec); err != nil {
				return err
			}
			continue
		}

		pol, problem := lookUpLine(ctx, deps, polNo)
		if problem != "" {
			rec["message"] = problem
			rec["manual_review"] = audit.ReviewYes
			if err := out.WriteRow(rec); err != nil {
				return err
			}
			continue
		}
		rec["pol_id"] = folio.ID(pol)

		if !orders.HasFundDistributions(pol) {
			rec["message"] = "POL has 0 fund distributions"
			rec["manual_review"] = audit.ReviewYes
			if err := out.WriteRow(rec); err != nil {
				return err
			}
			continue
		}

		releaseEncumbrances(ctx, deps, pol, fiscalYear)

		outcome := deps.Engine.Reassign(ctx, pol, reencumber.Change{
			FundCode: fundCode,
			FundID:   fund.ID,
		})

		rec["status_code"] = strconv.Itoa(outcome.StatusCode)
		rec["message"] = outcome.Message
		rec["original_fund_distribution"] = outcome.SnapshotJSON
		rec["manual_review"] = reviewFlag(outcome)
		if err := out.WriteRow(rec); err != nil {
			return err
		}
	}

	return rows.Err()
}

// lookUpLine resolves a PO line number, turning every non-unique outcome
// into an audit message. Transport faults on lookup are per-row problems
// too; only a successful unique match returns a record.
func lookUpLine(ctx context.Context, deps Deps, polNo string) (folio.Record, string) {
	res, err := orders.LineByNumber(ctx, deps.Store, polNo)
	if err != nil {
		return nil, fmt.Sprintf("POL lookup failed: %v", err)
	}
	switch res.Status {
	case folio.FindNotFound:
		return nil, fmt.Sprintf("No POL found for line number '%s'", polNo)
	case folio.FindAmbiguous:
		return nil, fmt.Sprintf("query for POL number '%s' returned %d results, should be unique", polNo, res.Total)
	}
	return res.Record, ""
}

// reviewFlag maps an engine outcome to the manual-review column. Any
// failure needs a human: a detach failure left the record untouched but
// unprocessed, and a reattach failure left it in the window where no valid
// encumbrance exists.
func reviewFlag(outcome reencumber.Outcome) string {
	if outcome.Succeeded() {
		return audit.ReviewNo
	}
	return audit.ReviewYes
}

// releaseEncumbrances releases the POL's unreleased encumbrances for the
// current fiscal year before the fund move. A lingering unreleased
// encumbrance on the old fund survives the move as an orphan, so they are
// released up front. Failures here never skip the row: the detach step
// retracts whatever is left, and anything the gateway refused to release
// is logged for the operator.
func releaseEncumbrances(ctx context.Context, deps Deps, pol folio.Record, fiscalYear *finance.FiscalYear) {
	if fiscalYear == nil {
		return
	}
	polID := folio.ID(pol)
	txns, err := finance.UnreleasedEncumbrances(ctx, deps.Store, polID, fiscalYear.ID)
	if err != nil {
		deps.log().Debug("encumbrance listing failed", zap.String("polId", polID), zap.Error(err))
		return
	}
	deps.log().Debug("unreleased encumbrances",
		zap.String("polId", polID),
		zap.String("fiscalYear", fiscalYear.Code),
		zap.Int("count", len(txns)),
		zap.String("total", finance.TotalAmount(txns).String()))

	for _, txn := range txns {
		if res := finance.ReleaseEncumbrance(ctx, deps.Store, txn.ID); !res.OK() {
			deps.log().Warn("encumbrance release refused",
				zap.String("polId", polID),
				zap.String("transactionId", txn.ID),
				zap.Int("status", res.StatusCode))
		}
	}
}

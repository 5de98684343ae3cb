package batch

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/libsys-ops/folio-batch/internal/audit"
	"github.com/libsys-ops/folio-batch/internal/finance"
	"github.com/libsys-ops/folio-batch/internal/folio"
	"github.com/libsys-ops/folio-batch/internal/orders"
	"github.com/libsys-ops/folio-batch/internal/reencumber"
	"github.com/libsys-ops/folio-batch/internal/tabular"
)

// ExpenseClassFields is the audit column set for the pol-expense-class
// batch. The original expense class codes and names are resolved from the
// pre-change snapshot so an operator can restore them by hand.
var ExpenseClassFields = []string{
	"timestamp",
	"pol_no",
	"expense_code",
	"pol_id",
	"status_code",
	"message",
	"original_expense_code",
	"original_expense_name",
	"manual_review",
}

// ExpenseClassRun resets the expense class on every input row's POL fund
// distributions. Input column 0 is the PO line number, column 1 the new
// expense class code.
func ExpenseClassRun(ctx context.Context, deps Deps, classes finance.ExpenseClassTable, rows tabular.RowReader, out *audit.Writer) error {
	if err := out.WriteHeader(); err != nil {
		return err
	}

	for rows.Next() {
		if err := rowInterrupted(ctx); err != nil {
			return err
		}

		row := rows.Row()
		polNo := tabular.Cell(row, 0)
		classCode := tabular.Cell(row, 1)

		rec := map[string]string{
			"timestamp":    audit.Timestamp(deps.now()),
			"pol_no":       polNo,
			"expense_code": classCode,
		}

		if polNo == "" || classCode == "" {
			rec["message"] = "input row needs a POL number in column 0 and an expense class code in column 1"
			rec["manual_review"] = audit.ReviewYes
			if err := out.WriteRow(rec); err != nil {
				return err
			}
			continue
		}

		class, ok := classes.ByCode(classCode)
		if !ok {
			rec["message"] = "expense class code does not exist"
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

		// A distribution without an expense class has nothing to reset;
		// the whole POL goes to manual review before anything is touched.
		if dist := missingExpenseClass(pol); dist != nil {
			rec["message"] = fmt.Sprintf("fund distribution has no expenseClassId: %s", folio.MarshalRecords([]folio.Record{dist}))
			rec["manual_review"] = audit.ReviewYes
			if err := out.WriteRow(rec); err != nil {
				return err
			}
			continue
		}

		outcome := deps.Engine.Reassign(ctx, pol, reencumber.Change{
			ExpenseClassID: class.ID,
		})

		origCodes, origNames := snapshotExpenseClasses(outcome.Snapshot, classes)
		rec["status_code"] = strconv.Itoa(outcome.StatusCode)
		rec["message"] = outcome.Message
		rec["original_expense_code"] = origCodes
		rec["original_expense_name"] = origNames
		rec["manual_review"] = reviewFlag(outcome)
		if err := out.WriteRow(rec); err != nil {
			return err
		}
	}

	return rows.Err()
}

// missingExpenseClass returns the first fund distribution lacking an
// expense class id, or nil when all entries carry one.
func missingExpenseClass(pol folio.Record) folio.Record {
	for _, dist := range orders.FundDistributions(pol) {
		if !orders.HasExpenseClass(dist) {
			return dist
		}
	}
	return nil
}

// snapshotExpenseClasses resolves the pre-change expense class codes and
// names, space-separated in distribution order. An id missing from the
// lookup table falls back to the raw id so the audit row still identifies
// what was there.
func snapshotExpenseClasses(snapshot []folio.Record, classes finance.ExpenseClassTable) (codes, names string) {
	var cs, ns []string
	for _, dist := range snapshot {
		id := orders.DistributionExpenseClassID(dist)
		if ec, ok := classes.ByID(id); ok {
			cs = append(cs, ec.Code)
			ns = append(ns, ec.Name)
		} else {
			cs = append(cs, id)
			ns = append(ns, "")
		}
	}
	return strings.Join(cs, " "), strings.Join(ns, " ")
}

// DumpExpenseClasses writes a human-readable id/code/name summary, one
// expense class per line, tab separated.
func DumpExpenseClasses(w io.Writer, classes finance.ExpenseClassTable) error {
	for _, ec := range classes.All() {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", ec.ID, ec.Code, ec.Name); err != nil {
			return err
		}
	}
	return nil
}

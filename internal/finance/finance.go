// =============================================================================
// FOLIO Batch - Finance Lookup Tables
// =============================================================================
//
// Funds, expense classes, and fiscal years are read once per batch run and
// held in read-only lookup tables. Rows reference funds and expense classes
// by code, but record mutations need identifiers, so each table indexes its
// collection by the keys row processing resolves through.
//
// Nothing here is cached across runs and nothing is mutated after load.
//
// =============================================================================

package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/libsys-ops/folio-batch/internal/folio"
)

// Collection paths on the gateway.
const (
	FundsPath         = "/finance/funds"
	ExpenseClassPath  = "/finance/expense-classes"
	FiscalYearsPath   = "/finance/fiscal-years"
	TransactionsPath  = "/finance-storage/transactions"
	ReleasePathPrefix = "/finance/release-encumbrance/"
)

// =============================================================================
// ENTITIES
// =============================================================================

// Fund is a finance fund, keyed by its human-readable code.
type Fund struct {
	ID   string
	Code string
	Name string
}

// ExpenseClass is a finance expense class.
type ExpenseClass struct {
	ID   string
	Code string
	Name string
}

// FiscalYear is a dated accounting period.
type FiscalYear struct {
	ID          string
	Code        string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Transaction is a finance transaction; for this tool's purposes always an
// encumbrance tied to a purchase order line.
type Transaction struct {
	ID       string
	Amount   decimal.Decimal
	Currency string
	Status   string
}

// =============================================================================
// LOOKUP TABLES
// =============================================================================

// FundTable indexes all funds by code. Built once per run, read-only after.
type FundTable struct {
	byCode map[string]Fund
}

// ByCode looks up a fund by its code.
func (t FundTable) ByCode(code string) (Fund, bool) {
	f, ok := t.byCode[code]
	return f, ok
}

// Len returns the number of funds loaded.
func (t FundTable) Len() int { return len(t.byCode) }

// ExpenseClassTable indexes all expense classes by id, code, and name.
type ExpenseClassTable struct {
	byID   map[string]ExpenseClass
	byCode map[string]ExpenseClass
	byName map[string]ExpenseClass
	all    []ExpenseClass
}

// ByID looks up an expense class by its identifier.
func (t ExpenseClassTable) ByID(id string) (ExpenseClass, bool) {
	ec, ok := t.byID[id]
	return ec, ok
}

// ByCode looks up an expense class by its code.
func (t ExpenseClassTable) ByCode(code string) (ExpenseClass, bool) {
	ec, ok := t.byCode[code]
	return ec, ok
}

// ByName looks up an expense class by its display name.
func (t ExpenseClassTable) ByName(name string) (ExpenseClass, bool) {
	ec, ok := t.byName[name]
	return ec, ok
}

// All returns the expense classes in load order.
func (t ExpenseClassTable) All() []ExpenseClass { return t.all }

// =============================================================================
// LOADERS
// =============================================================================

// LoadFunds reads every fund from the gateway into a table keyed by code.
func LoadFunds(ctx context.Context, store folio.Store) (FundTable, error) {
	recs, err := store.ListAll(ctx, FundsPath, "funds")
	if err != nil {
		return FundTable{}, fmt.Errorf("failed to load funds: %w", err)
	}

	table := FundTable{byCode: make(map[string]Fund, len(recs))}
	for _, rec := range recs {
		f := Fund{
			ID:   folio.ID(rec),
			Code: folio.Str(rec, "code"),
			Name: folio.Str(rec, "name"),
		}
		table.byCode[f.Code] = f
	}
	return table, nil
}

// LoadExpenseClasses reads every expense class into a table indexed three
// ways: input rows carry codes, records carry ids, and operators recognize
// names.
func LoadExpenseClasses(ctx context.Context, store folio.Store) (ExpenseClassTable, error) {
	recs, err := store.ListAll(ctx, ExpenseClassPath, "expenseClasses")
	if err != nil {
		return ExpenseClassTable{}, fmt.Errorf("failed to load expense classes: %w", err)
	}

	table := ExpenseClassTable{
		byID:   make(map[string]ExpenseClass, len(recs)),
		byCode: make(map[string]ExpenseClass, len(recs)),
		byName: make(map[string]ExpenseClass, len(recs)),
	}
	for _, rec := range recs {
		ec := ExpenseClass{
			ID:   folio.ID(rec),
			Code: folio.Str(rec, "code"),
			Name: folio.Str(rec, "name"),
		}
		table.byID[ec.ID] = ec
		table.byCode[ec.Code] = ec
		table.byName[ec.Name] = ec
		table.all = append(table.all, ec)
	}
	return table, nil
}

// LoadFiscalYears reads all fiscal years. Records with unparseable period
// bounds are skipped; they can never match "today" anyway.
func LoadFiscalYears(ctx context.Context, store folio.Store) ([]FiscalYear, error) {
	recs, err := store.ListAll(ctx, FiscalYearsPath, "fiscalYears")
	if err != nil {
		return nil, fmt.Errorf("failed to load fiscal years: %w", err)
	}

	var years []FiscalYear
	for _, rec := range recs {
		start, err1 := time.Parse(time.RFC3339, folio.Str(rec, "periodStart"))
		end, err2 := time.Parse(time.RFC3339, folio.Str(rec, "periodEnd"))
		if err1 != nil || err2 != nil {
			continue
		}
		years = append(years, FiscalYear{
			ID:          folio.ID(rec),
			Code:        folio.Str(rec, "code"),
			PeriodStart: start,
			PeriodEnd:   end,
		})
	}
	return years, nil
}

// =============================================================================
// FISCAL YEAR SELECTION
// =============================================================================

// CurrentFiscalYear returns the fiscal year whose period contains today,
// or nil when none does. Period bounds are full timestamps in the data but
// apply to whole days, so the comparison truncates everything to dates and
// is inclusive on both ends.
func CurrentFiscalYear(years []FiscalYear, today time.Time) *FiscalYear {
	day := dateOnly(today)
	for i := range years {
		start := dateOnly(years[i].PeriodStart)
		end := dateOnly(years[i].PeriodEnd)
		if !day.Before(start) && !day.After(end) {
			return &years[i]
		}
	}
	return nil
}

// dateOnly truncates a timestamp to a naive date. No timezone adjustment
// beyond dropping the clock: period bounds apply to the calendar day they
// name.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// ENCUMBRANCE TRANSACTIONS
// =============================================================================

// UnreleasedEncumbrances lists the unreleased encumbrance transactions tied
// to a purchase order line in a fiscal year. Used for diagnostics before a
// re-encumbrance: an unexpected count is worth an operator's attention.
func UnreleasedEncumbrances(ctx context.Context, store folio.Store, polID, fiscalYearID string) ([]Transaction, error) {
	cql := fmt.Sprintf(
		"(encumbrance.sourcePoLineId==%s and fiscalYearId==%s and encumbrance.status==Unreleased)",
		polID, fiscalYearID,
	)
	recs, err := store.Query(ctx, TransactionsPath, "transactions", cql)
	if err != nil {
		return nil, fmt.Errorf("failed to list encumbrances: %w", err)
	}

	txns := make([]Transaction, 0, len(recs))
	for _, rec := range recs {
		txns = append(txns, decodeTransaction(rec))
	}
	return txns, nil
}

// ReleaseEncumbrance asks the gateway to release one encumbrance
// transaction. 204 is success; anything else is the caller's to report.
func ReleaseEncumbrance(ctx context.Context, store folio.Store, txnID string) folio.CallResult {
	return store.Post(ctx, ReleasePathPrefix+txnID, nil)
}

// TotalAmount sums transaction amounts with exact decimal arithmetic.
func TotalAmount(txns []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Amount)
	}
	return total
}

func decodeTransaction(rec folio.Record) Transaction {
	t := Transaction{
		ID:       folio.ID(rec),
		Currency: folio.Str(rec, "currency"),
	}
	if amt, ok := rec["amount"].(float64); ok {
		t.Amount = decimal.NewFromFloat(amt)
	}
	if enc, ok := rec["encumbrance"].(folio.Record); ok {
		t.Status = folio.Str(enc, "status")
	}
	return t
}

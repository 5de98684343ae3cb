package finance

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libsys-ops/folio-batch/internal/folio"
)

// listStore serves canned collections by path.
type listStore struct {
	records  map[string][]folio.Record
	lastCQL  string
	lastPost string
}

func (s *listStore) FindUnique(context.Context, string, string, string, string) (folio.FindResult, error) {
	return folio.FindResult{}, nil
}

func (s *listStore) Overwrite(context.Context, string, folio.Record) folio.CallResult {
	return folio.CallResult{StatusCode: 204}
}

func (s *listStore) ListAll(_ context.Context, path, _ string) ([]folio.Record, error) {
	return s.records[path], nil
}

func (s *listStore) Query(_ context.Context, path, _, cql string) ([]folio.Record, error) {
	s.lastCQL = cql
	return s.records[path], nil
}

func (s *listStore) Post(_ context.Context, path string, _ any) folio.CallResult {
	s.lastPost = path
	return folio.CallResult{StatusCode: 204}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoadFundsIndexesByCode(t *testing.T) {
	store := &listStore{records: map[string][]folio.Record{
		FundsPath: {
			{"id": "f1", "code": "HIST", "name": "History"},
			{"id": "f2", "code": "CHEM", "name": "Chemistry"},
		},
	}}

	funds, err := LoadFunds(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 2, funds.Len())

	f, ok := funds.ByCode("CHEM")
	require.True(t, ok)
	assert.Equal(t, "f2", f.ID)
	assert.Equal(t, "Chemistry", f.Name)

	_, ok = funds.ByCode("NOSUCH")
	assert.False(t, ok)
}

func TestLoadExpenseClassesIndexesThreeWays(t *testing.T) {
	store := &listStore{records: map[string][]folio.Record{
		ExpenseClassPath: {
			{"id": "e1", "code": "Elec", "name": "Electronic"},
			{"id": "e2", "code": "Prnt", "name": "Print"},
		},
	}}

	classes, err := LoadExpenseClasses(context.Background(), store)
	require.NoError(t, err)

	byID, ok := classes.ByID("e2")
	require.True(t, ok)
	assert.Equal(t, "Prnt", byID.Code)

	byCode, ok := classes.ByCode("Elec")
	require.True(t, ok)
	assert.Equal(t, "e1", byCode.ID)

	byName, ok := classes.ByName("Print")
	require.True(t, ok)
	assert.Equal(t, "e2", byName.ID)

	all := classes.All()
	require.Len(t, all, 2)
	assert.Equal(t, "e1", all[0].ID, "All preserves load order")
}

func TestLoadFiscalYearsSkipsUnparseablePeriods(t *testing.T) {
	store := &listStore{records: map[string][]folio.Record{
		FiscalYearsPath: {
			{"id": "fy1", "code": "FY2026", "periodStart": "2025-07-01T00:00:00Z", "periodEnd": "2026-06-30T23:59:59Z"},
			{"id": "fy2", "code": "FYBAD", "periodStart": "not-a-date", "periodEnd": "2026-06-30T23:59:59Z"},
		},
	}}

	years, err := LoadFiscalYears(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, years, 1)
	assert.Equal(t, "FY2026", years[0].Code)
}

func TestCurrentFiscalYear(t *testing.T) {
	years := []FiscalYear{
		{ID: "fy25", Code: "FY2025", PeriodStart: day(2024, 7, 1), PeriodEnd: day(2025, 6, 30)},
		{ID: "fy26", Code: "FY2026", PeriodStart: day(2025, 7, 1), PeriodEnd: day(2026, 6, 30)},
	}

	tests := []struct {
		name  string
		today time.Time
		want  string
	}{
		{"mid period", day(2026, 1, 15), "FY2026"},
		{"first day inclusive", day(2025, 7, 1), "FY2026"},
		{"last day inclusive", day(2026, 6, 30), "FY2026"},
		{"prior period", day(2025, 6, 30), "FY2025"},
		// A timestamp late on the boundary day still belongs to the day.
		{"clock time ignored", time.Date(2026, 6, 30, 23, 45, 0, 0, time.UTC), "FY2026"},
		{"after all periods", day(2026, 7, 1), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurrentFiscalYear(years, tt.today)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Code)
		})
	}
}

func TestCurrentFiscalYearEmptySet(t *testing.T) {
	assert.Nil(t, CurrentFiscalYear(nil, day(2026, 1, 1)))
}

func TestUnreleasedEncumbrances(t *testing.T) {
	store := &listStore{records: map[string][]folio.Record{
		TransactionsPath: {
			{
				"id":          "txn-1",
				"amount":      float64(100.25),
				"currency":    "USD",
				"encumbrance": folio.Record{"status": "Unreleased"},
			},
			{
				"id":       "txn-2",
				"amount":   float64(49.75),
				"currency": "USD",
			},
		},
	}}

	txns, err := UnreleasedEncumbrances(context.Background(), store, "pol-id-1", "fy-id-1")
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "(encumbrance.sourcePoLineId==pol-id-1 and fiscalYearId==fy-id-1 and encumbrance.status==Unreleased)", store.lastCQL)
	assert.Equal(t, "txn-1", txns[0].ID)
	assert.True(t, txns[0].Amount.Equal(decimal.NewFromFloat(100.25)))
	assert.Equal(t, "Unreleased", txns[0].Status)
	assert.Equal(t, "", txns[1].Status)
}

func TestReleaseEncumbrance(t *testing.T) {
	store := &listStore{}
	res := ReleaseEncumbrance(context.Background(), store, "txn-9")
	assert.True(t, res.OK())
	assert.Equal(t, "/finance/release-encumbrance/txn-9", store.lastPost)
}

func TestTotalAmountIsExact(t *testing.T) {
	txns := []Transaction{
		{Amount: decimal.NewFromFloat(0.1)},
		{Amount: decimal.NewFromFloat(0.2)},
	}
	// Binary float addition would give 0.30000000000000004 here.
	assert.Equal(t, "0.3", TotalAmount(txns).String())

	assert.True(t, TotalAmount(nil).IsZero())
}

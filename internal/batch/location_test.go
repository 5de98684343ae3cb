package batch

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libsys-ops/folio-batch/internal/folio"
	"github.com/libsys-ops/folio-batch/internal/inventory"
	"github.com/libsys-ops/folio-batch/internal/tabular"
)

func itemRecord(id, barcode string, withLocation bool) folio.Record {
	rec := folio.Record{"id": id, "barcode": barcode, "status": folio.Record{"name": "Available"}}
	if withLocation {
		rec["permanentLocationId"] = "loc-id-1"
		rec["permanentLocation"] = folio.Record{"id": "loc-id-1", "name": "Main Stacks"}
	}
	return rec
}

func tabDialect(t *testing.T) tabular.Dialect {
	t.Helper()
	d, err := tabular.DialectByName("excel-tab")
	require.NoError(t, err)
	return d
}

func TestLocationRunDeletesPermanentLocation(t *testing.T) {
	store := &fakeStore{records: map[string][]folio.Record{
		inventory.ItemsPath: {itemRecord("item-id-1", "31234000000001", true)},
	}}
	d := tabDialect(t)

	var buf bytes.Buffer
	err := LocationRun(context.Background(), testDeps(store), tabular.ParseColumnSpec("0"),
		inputRows(t, d, "31234000000001\n"), auditWriter(&buf, d, LocationFields))
	require.NoError(t, err)

	audited := readAudit(t, &buf, d)
	require.Len(t, audited, 1)
	row := audited[0]
	assert.Equal(t, "31234000000001", row["barcode"])
	assert.Equal(t, "204", row["status_code"])
	assert.Equal(t, "loc-id-1", row["old_loc_id"])
	assert.Equal(t, "Main Stacks", row["old_loc"])

	require.Len(t, store.overwrites, 1)
	assert.Equal(t, inventory.ItemsPath, store.overwrites[0].path)
	saved := store.overwrites[0].rec
	_, hasID := saved["permanentLocationId"]
	_, hasLoc := saved["permanentLocation"]
	assert.False(t, hasID)
	assert.False(t, hasLoc)
	// Fields the tool does not model still ride along on the overwrite.
	assert.NotNil(t, saved["status"])
}

func TestLocationRunRowProblems(t *testing.T) {
	tests := []struct {
		name  string
		input string
		items []folio.Record
		msg   string
	}{
		{
			name:  "blank barcode",
			input: "\tsomething\n",
			msg:   "input row has no barcode",
		},
		{
			name:  "no match",
			input: "31234000000009\n",
			msg:   "No item matching barcode 31234000000009",
		},
		{
			name:  "multiple matches",
			input: "31234000000001\n",
			items: []folio.Record{
				itemRecord("item-id-1", "31234000000001", true),
				itemRecord("item-id-2", "31234000000001", true),
			},
			msg: "2 items matched barcode 31234000000001",
		},
		{
			name:  "no permanent location",
			input: "31234000000001\n",
			items: []folio.Record{itemRecord("item-id-1", "31234000000001", false)},
			msg:   "Item had no permanentLocation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{records: map[string][]folio.Record{inventory.ItemsPath: tt.items}}
			d := tabDialect(t)

			var buf bytes.Buffer
			err := LocationRun(context.Background(), testDeps(store), tabular.ParseColumnSpec("0"),
				inputRows(t, d, tt.input), auditWriter(&buf, d, LocationFields))
			require.NoError(t, err)

			audited := readAudit(t, &buf, d)
			require.Len(t, audited, 1)
			assert.Equal(t, tt.msg, audited[0]["msg"])
			assert.Equal(t, "0", audited[0]["status_code"])
			assert.Empty(t, audited[0]["old_loc_id"])
			assert.Empty(t, store.overwrites)
		})
	}
}

func TestLocationRunItemLookupTransportError(t *testing.T) {
	store := &fakeStore{findErr: errTransport}
	d := tabDialect(t)

	var buf bytes.Buffer
	err := LocationRun(context.Background(), testDeps(store), tabular.ParseColumnSpec("0"),
		inputRows(t, d, "31234000000001\n"), auditWriter(&buf, d, LocationFields))
	require.NoError(t, err)

	audited := readAudit(t, &buf, d)
	require.Len(t, audited, 1)
	assert.Equal(t, "item lookup failed: connection refused", audited[0]["msg"])
	assert.Equal(t, "0", audited[0]["status_code"])
}

func TestLocationRunColumnByName(t *testing.T) {
	store := &fakeStore{records: map[string][]folio.Record{
		inventory.ItemsPath: {itemRecord("item-id-1", "31234000000001", true)},
	}}
	d := tabDialect(t)

	var buf bytes.Buffer
	err := LocationRun(context.Background(), testDeps(store), tabular.ParseColumnSpec("Barcode"),
		inputRows(t, d, "Title\tBarcode\nSome Book\t31234000000001\n"),
		auditWriter(&buf, d, LocationFields))
	require.NoError(t, err)

	audited := readAudit(t, &buf, d)
	require.Len(t, audited, 1)
	assert.Equal(t, "31234000000001", audited[0]["barcode"])
	assert.Equal(t, "204", audited[0]["status_code"])
}

func TestLocationRunColumnByNameRequiresHeader(t *testing.T) {
	store := &fakeStore{}
	d := tabDialect(t)

	var buf bytes.Buffer
	err := LocationRun(context.Background(), testDeps(store), tabular.ParseColumnSpec("Barcode"),
		inputRows(t, d, ""), auditWriter(&buf, d, LocationFields))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `expected a header row naming column "Barcode"`)
}

func TestLocationRunColumnNameMissingFromHeader(t *testing.T) {
	store := &fakeStore{}
	d := tabDialect(t)

	var buf bytes.Buffer
	err := LocationRun(context.Background(), testDeps(store), tabular.ParseColumnSpec("Barcode"),
		inputRows(t, d, "Title\tCallNumber\n"), auditWriter(&buf, d, LocationFields))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no column named "Barcode"`)
}

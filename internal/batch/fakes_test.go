package batch

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/libsys-ops/folio-batch/internal/audit"
	"github.com/libsys-ops/folio-batch/internal/folio"
	"github.com/libsys-ops/folio-batch/internal/reencumber"
	"github.com/libsys-ops/folio-batch/internal/tabular"
)

// fakeStore is an in-memory folio.Store. Lookups scan the records loaded
// per collection path; mutations are recorded with deep copies and answer
// from a scripted result queue (default 204).
type fakeStore struct {
	// records by collection path, served by FindUnique and ListAll.
	records map[string][]folio.Record

	findErr  error
	queryErr error

	putResults []folio.CallResult
	overwrites []overwriteCall

	queried []string
	posted  []string
}

type overwriteCall struct {
	path string
	rec  folio.Record
}

func (s *fakeStore) FindUnique(_ context.Context, path, _, field, value string) (folio.FindResult, error) {
	if s.findErr != nil {
		return folio.FindResult{}, s.findErr
	}

	var matches []folio.Record
	for _, rec := range s.records[path] {
		if folio.Str(rec, field) == value {
			matches = append(matches, rec)
		}
	}
	switch len(matches) {
	case 0:
		return folio.FindResult{Status: folio.FindNotFound}, nil
	case 1:
		return folio.FindResult{Status: folio.FindFound, Record: matches[0], Total: 1}, nil
	}
	return folio.FindResult{Status: folio.FindAmbiguous, Total: len(matches)}, nil
}

func (s *fakeStore) Overwrite(_ context.Context, path string, rec folio.Record) folio.CallResult {
	s.overwrites = append(s.overwrites, overwriteCall{path: path, rec: folio.Clone(rec)})

	if len(s.putResults) == 0 {
		return folio.CallResult{StatusCode: 204}
	}
	res := s.putResults[0]
	s.putResults = s.putResults[1:]
	return res
}

func (s *fakeStore) ListAll(_ context.Context, path, _ string) ([]folio.Record, error) {
	return s.records[path], nil
}

func (s *fakeStore) Query(_ context.Context, path, _, cql string) ([]folio.Record, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	s.queried = append(s.queried, cql)
	return s.records[path], nil
}

func (s *fakeStore) Post(_ context.Context, path string, _ any) folio.CallResult {
	s.posted = append(s.posted, path)
	return folio.CallResult{StatusCode: 204}
}

var errTransport = errors.New("connection refused")

// fixedNow pins audit timestamps so expected rows are stable.
func fixedNow() time.Time {
	return time.Date(2026, 3, 15, 12, 30, 0, 123456000, time.UTC)
}

func testDeps(store *fakeStore) Deps {
	return Deps{
		Store:  store,
		Engine: reencumber.New(store, nil),
		Now:    fixedNow,
	}
}

func excelDialect(t *testing.T) tabular.Dialect {
	t.Helper()
	d, err := tabular.DialectByName("excel")
	require.NoError(t, err)
	return d
}

func inputRows(t *testing.T, d tabular.Dialect, text string) tabular.RowReader {
	t.Helper()
	return tabular.NewRowReader(bytes.NewBufferString(text), d)
}

// readAudit parses the audit output back into field-name maps, one per
// data row, using the header row for names.
func readAudit(t *testing.T, buf *bytes.Buffer, d tabular.Dialect) []map[string]string {
	t.Helper()

	all, err := tabular.NewReader(buf, d).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, all, "audit output must at least carry a header row")

	header := all[0]
	rows := make([]map[string]string, 0, len(all)-1)
	for _, raw := range all[1:] {
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(raw) {
				row[name] = raw[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func auditWriter(buf *bytes.Buffer, d tabular.Dialect, fields []string) *audit.Writer {
	return audit.NewWriter(buf, d, fields)
}

func polRecord(id, number string, dists ...folio.Record) folio.Record {
	arr := make([]any, len(dists))
	for i, d := range dists {
		arr[i] = d
	}
	rec := folio.Record{
		"id":           id,
		"poLineNumber": number,
	}
	if len(dists) > 0 {
		rec["fundDistribution"] = arr
	}
	return rec
}

func fundDist(code, fundID string, extra folio.Record) folio.Record {
	d := folio.Record{
		"code":             code,
		"fundId":           fundID,
		"distributionType": "percentage",
		"value":            float64(100),
		"encumbrance":      "old-token-" + code,
	}
	for k, v := range extra {
		d[k] = v
	}
	return d
}

func fundRecord(id, code, name string) folio.Record {
	return folio.Record{"id": id, "code": code, "name": name}
}

func expenseClassRecord(id, code, name string) folio.Record {
	return folio.Record{"id": id, "code": code, "name": name}
}

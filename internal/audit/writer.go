// =============================================================================
// FOLIO Batch - Audit Log Writer
// =============================================================================
//
// Every input row produces exactly one audit row recording what was
// attempted and what came back, including enough of the pre-change state to
// recover by hand. The writer takes rows as field-name maps against a fixed
// field order, so each batch variant declares its own column set and the
// row-producing code never worries about ordering.
//
// =============================================================================

package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/libsys-ops/folio-batch/internal/tabular"
)

// Manual-review flag values. "Y" rows need a human to inspect or fix the
// record; "N" rows completed without intervention.
const (
	ReviewYes = "Y"
	ReviewNo  = "N"
)

// Writer writes audit rows in a fixed field order.
type Writer struct {
	cw     *csv.Writer
	fields []string
}

// NewWriter returns a writer producing rows with the given fields, in
// order, in the given dialect.
func NewWriter(out io.Writer, d tabular.Dialect, fields []string) *Writer {
	return &Writer{cw: tabular.NewWriter(out, d), fields: fields}
}

// WriteHeader writes the field names as the first row.
func (w *Writer) WriteHeader() error {
	return w.cw.Write(w.fields)
}

// WriteRow writes one audit row. Fields absent from the map are written
// empty; fields in the map but not in the declared set are an error, since
// they would otherwise vanish silently from the log.
func (w *Writer) WriteRow(row map[string]string) error {
	known := make(map[string]bool, len(w.fields))
	out := make([]string, len(w.fields))
	for i, f := range w.fields {
		known[f] = true
		out[i] = row[f]
	}
	for f := range row {
		if !known[f] {
			return fmt.Errorf("audit row has undeclared field %q", f)
		}
	}
	if err := w.cw.Write(out); err != nil {
		return err
	}
	// Flush per row: the log must survive a mid-batch interrupt.
	w.cw.Flush()
	return w.cw.Error()
}

// Flush flushes any buffered output.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}

// Timestamp formats a capture time for the audit log, always in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05.000000+00:00")
}

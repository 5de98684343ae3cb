package folio

import (
	"bytes"
	"encoding/json"
)

// Record is a full-fidelity JSON record from the gateway. Records are kept
// as generic maps rather than typed structs because every update is a
// whole-record overwrite: fields the tool does not model must survive the
// read-modify-write round trip untouched.
type Record = map[string]any

// ID returns the record's opaque identifier, or "" when absent.
func ID(rec Record) string {
	id, _ := rec["id"].(string)
	return id
}

// Str returns the named string field of a record, or "" when absent or not
// a string.
func Str(rec Record, field string) string {
	s, _ := rec[field].(string)
	return s
}

// Clone deep-copies a record via a JSON round trip. The copy shares no
// structure with the original, so mutating one never bleeds into the other.
func Clone(rec Record) Record {
	out := make(Record, len(rec))
	raw, err := json.Marshal(rec)
	if err != nil {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Record{}
	}
	return out
}

// CloneAll deep-copies a slice of records.
func CloneAll(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = Clone(rec)
	}
	return out
}

// RecordSlice converts a decoded JSON array ([]any of objects) into records.
// Non-object entries are skipped.
func RecordSlice(v any) []Record {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(Record); ok {
			out = append(out, rec)
		}
	}
	return out
}

// AnySlice converts records back to the []any form used inside a parent
// record, for reinserting a modified array field before an overwrite.
func AnySlice(recs []Record) []any {
	out := make([]any, len(recs))
	for i, rec := range recs {
		out[i] = rec
	}
	return out
}

// MarshalRecords serializes records compactly, for the audit log's
// pre-change snapshot column. A failure falls back to "[]" rather than
// aborting the row: the snapshot column is a recovery aid, not a contract.
func MarshalRecords(recs []Record) string {
	if len(recs) == 0 {
		return "[]"
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(recs); err != nil {
		return "[]"
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

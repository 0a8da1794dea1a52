// Package reader turns raw submission bytes into the in-memory table.Set
// the Validator and Expression Engine operate on: unpacking an archive if
// the package's file format calls for one, matching member files to
// declared catalogs by filename pattern, and decoding each member's rows
// according to its archive format (spec.md §4.3).
package reader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"

	"github.com/sage-ingest/sage/internal/model"
	"github.com/sage-ingest/sage/internal/table"
)

// ReadCSV decodes delimited text into a Table. sep defaults to comma when
// zero. Malformed UTF-8 is replaced rather than rejected and rows are
// allowed to vary in field count, matching the teacher's tolerant CSV
// ingestion (FieldsPerRecord = -1, LazyQuotes) — a submission with a
// ragged trailing row should surface as a Validator Finding, not an
// unrecoverable decode error.
func ReadCSV(data []byte, sep rune) (*table.Table, error) {
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if sep != 0 {
		r.Comma = sep
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decoding CSV: %w", err)
	}
	if len(records) == 0 {
		return table.New(nil, nil), nil
	}

	return table.New(records[0], records[1:]), nil
}

// ReadFormat dispatches to the decoder for fmt.Archive, the single entry
// point File Reader callers use once a member's effective file_format has
// been resolved (catalog-level override, else package-level default).
func ReadFormat(data []byte, ff model.FileFormat) (*table.Table, error) {
	switch ff.Archive {
	case model.ArchiveCSV, "":
		return ReadCSV(data, ff.Separator)
	case model.ArchiveXLSX:
		return ReadXLSX(data)
	case model.ArchiveJSON:
		return ReadJSON(data)
	case model.ArchiveXML:
		return ReadXML(data)
	default:
		return nil, fmt.Errorf("unsupported archive format %q", ff.Archive)
	}
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
			continue
		}
		buf.WriteRune(r)
		data = data[size:]
	}
	return buf.Bytes()
}

package reader

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sage-ingest/sage/internal/table"
)

// ReadJSON decodes a JSON array of flat objects into a Table. The column
// set is the union of keys across all records, sorted for a deterministic
// header order; a record missing a key contributes an empty cell for it.
func ReadJSON(data []byte) (*table.Table, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	if len(records) == 0 {
		return table.New(nil, nil), nil
	}

	colSet := map[string]bool{}
	for _, rec := range records {
		for k := range rec {
			colSet[k] = true
		}
	}
	columns := make([]string, 0, len(colSet))
	for c := range colSet {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = jsonScalarToString(rec[c])
		}
		rows[i] = row
	}

	return table.New(columns, rows), nil
}

func jsonScalarToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

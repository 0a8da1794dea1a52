package reader

import (
	"encoding/xml"
	"fmt"
	"sort"

	"github.com/sage-ingest/sage/internal/table"
)

// genericXMLElement is a loosely-typed repeated element: <row><field>value</field>...</row>,
// the flat-record shape SAGE submissions use for XML (spec.md §4.3); nested
// structures are out of scope, matching the declared field-list model the
// rest of the Catalog contract assumes.
type genericXMLElement struct {
	XMLName  xml.Name
	Children []genericXMLElement `xml:",any"`
	Content  string              `xml:",chardata"`
}

// ReadXML decodes a repeated-element XML document (<records><record>...)
// into a Table, one row per top-level repeated child, one column per leaf
// element name encountered across all rows.
func ReadXML(data []byte) (*table.Table, error) {
	var root genericXMLElement
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decoding XML: %w", err)
	}

	rowElements := root.Children
	if len(rowElements) == 0 {
		rowElements = []genericXMLElement{root}
	}

	colSet := map[string]bool{}
	records := make([]map[string]string, len(rowElements))
	for i, rowEl := range rowElements {
		rec := map[string]string{}
		for _, field := range rowEl.Children {
			rec[field.XMLName.Local] = field.Content
			colSet[field.XMLName.Local] = true
		}
		records[i] = rec
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
			row[j] = rec[c]
		}
		rows[i] = row
	}

	return table.New(columns, rows), nil
}

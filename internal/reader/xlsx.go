package reader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/sage-ingest/sage/internal/table"
)

// ReadXLSX decodes the first worksheet of an OOXML spreadsheet using only
// archive/zip and encoding/xml. No third-party spreadsheet library appears
// anywhere in the example pack this module was grounded on (DESIGN.md:
// reader/xlsx.go), so this is the one component of the File Reader
// implemented directly against the OOXML container format rather than a
// wired dependency: just enough of the spec (shared strings, inline
// strings, numeric cells) to read back a data-export workbook, not a
// general-purpose spreadsheet engine.
func ReadXLSX(data []byte) (*table.Table, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening XLSX archive: %w", err)
	}

	shared, err := readSharedStrings(zr)
	if err != nil {
		return nil, err
	}

	sheet, err := firstWorksheet(zr)
	if err != nil {
		return nil, err
	}

	rows, err := parseWorksheet(sheet, shared)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return table.New(nil, nil), nil
	}
	return table.New(rows[0], rows[1:]), nil
}

func readSharedStrings(zr *zip.Reader) ([]string, error) {
	f := findZipFile(zr, "xl/sharedStrings.xml")
	if f == nil {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening sharedStrings.xml: %w", err)
	}
	defer rc.Close()

	var sst struct {
		SI []struct {
			T     string `xml:"t"`
			Runs  []struct {
				T string `xml:"t"`
			} `xml:"r"`
		} `xml:"si"`
	}
	if err := xml.NewDecoder(rc).Decode(&sst); err != nil {
		return nil, fmt.Errorf("parsing sharedStrings.xml: %w", err)
	}

	out := make([]string, len(sst.SI))
	for i, si := range sst.SI {
		if si.T != "" {
			out[i] = si.T
			continue
		}
		var b strings.Builder
		for _, r := range si.Runs {
			b.WriteString(r.T)
		}
		out[i] = b.String()
	}
	return out, nil
}

func firstWorksheet(zr *zip.Reader) (io.ReadCloser, error) {
	var candidates []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/worksheets/sheet") && strings.HasSuffix(f.Name, ".xml") {
			candidates = append(candidates, f.Name)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("XLSX archive has no worksheets")
	}
	sort.Strings(candidates)
	f := findZipFile(zr, candidates[0])
	return f.Open()
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

type xlsxCell struct {
	Ref string `xml:"r,attr"`
	T   string `xml:"t,attr"` // "s" = shared string, "inlineStr", "" = number
	V   string `xml:"v"`
	Is  struct {
		T string `xml:"t"`
	} `xml:"is"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

func parseWorksheet(r io.Reader, shared []string) ([][]string, error) {
	var sheet struct {
		SheetData struct {
			Rows []xlsxRow `xml:"row"`
		} `xml:"sheetData"`
	}
	if err := xml.NewDecoder(r).Decode(&sheet); err != nil {
		return nil, fmt.Errorf("parsing worksheet XML: %w", err)
	}

	rows := make([][]string, 0, len(sheet.SheetData.Rows))
	for _, row := range sheet.SheetData.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			cells = append(cells, cellValue(c, shared))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func cellValue(c xlsxCell, shared []string) string {
	switch c.T {
	case "s":
		idx, err := strconv.Atoi(c.V)
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		return c.Is.T
	default:
		return c.V
	}
}

package reader

import (
	"testing"

	"github.com/sage-ingest/sage/internal/model"
)

func TestReadCSV_Basic(t *testing.T) {
	tbl, err := ReadCSV([]byte("id,name\n1,Alpha\n2,Beta\n"), 0)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.RowCount() != 2 {
		t.Fatalf("RowCount = %d, want 2", tbl.RowCount())
	}
	v, ok := tbl.Cell(1, "name")
	if !ok || v != "Alpha" {
		t.Errorf("Cell(1, name) = %q, %v; want Alpha, true", v, ok)
	}
}

func TestReadCSV_CustomSeparator(t *testing.T) {
	tbl, err := ReadCSV([]byte("id;name\n1;Alpha\n"), ';')
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	v, ok := tbl.Cell(1, "name")
	if !ok || v != "Alpha" {
		t.Errorf("Cell(1, name) = %q, %v", v, ok)
	}
}

func TestReadCSV_RaggedRowsDoNotError(t *testing.T) {
	tbl, err := ReadCSV([]byte("a,b,c\n1,2\n3,4,5,6\n"), 0)
	if err != nil {
		t.Fatalf("ReadCSV should tolerate ragged rows, got: %v", err)
	}
	if tbl.RowCount() != 2 {
		t.Fatalf("RowCount = %d, want 2", tbl.RowCount())
	}
	v, ok := tbl.Cell(1, "c")
	if !ok || v != "" {
		t.Errorf("short row's missing column = %q, %v; want \"\", true", v, ok)
	}
}

func TestReadCSV_InvalidUTF8IsSanitizedNotRejected(t *testing.T) {
	data := append([]byte("id,name\n1,"), 0xff, 0xfe)
	data = append(data, '\n')
	tbl, err := ReadCSV(data, 0)
	if err != nil {
		t.Fatalf("ReadCSV should sanitize invalid UTF-8 rather than error, got: %v", err)
	}
	if tbl.RowCount() != 1 {
		t.Fatalf("RowCount = %d, want 1", tbl.RowCount())
	}
}

func TestReadCSV_EmptyInput(t *testing.T) {
	tbl, err := ReadCSV([]byte{}, 0)
	if err != nil {
		t.Fatalf("ReadCSV(empty): %v", err)
	}
	if tbl.RowCount() != 0 {
		t.Errorf("RowCount = %d, want 0", tbl.RowCount())
	}
}

func TestReadFormat_DispatchesByArchive(t *testing.T) {
	tbl, err := ReadFormat([]byte("a\n1\n"), model.FileFormat{Archive: model.ArchiveCSV})
	if err != nil {
		t.Fatalf("ReadFormat(CSV): %v", err)
	}
	if tbl.RowCount() != 1 {
		t.Errorf("RowCount = %d, want 1", tbl.RowCount())
	}

	tbl, err = ReadFormat([]byte(`[{"a":"1"}]`), model.FileFormat{Archive: model.ArchiveJSON})
	if err != nil {
		t.Fatalf("ReadFormat(JSON): %v", err)
	}
	if tbl.RowCount() != 1 {
		t.Errorf("RowCount = %d, want 1", tbl.RowCount())
	}

	if _, err := ReadFormat(nil, model.FileFormat{Archive: "unknown"}); err == nil {
		t.Error("expected an error for an unsupported archive format")
	}
}

func TestReadFormat_EmptyArchiveDefaultsToCSV(t *testing.T) {
	tbl, err := ReadFormat([]byte("a,b\n1,2\n"), model.FileFormat{})
	if err != nil {
		t.Fatalf("ReadFormat(default): %v", err)
	}
	if tbl.RowCount() != 1 {
		t.Errorf("RowCount = %d, want 1", tbl.RowCount())
	}
}

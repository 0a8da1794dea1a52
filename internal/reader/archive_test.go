package reader

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/sage-ingest/sage/internal/model"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip.Create(%s): %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip.Close: %v", err)
	}
	return buf.Bytes()
}

func TestReadPackage_NonArchiveRequiresExactlyOneCatalog(t *testing.T) {
	pkg := model.Package{
		Name:       "p",
		FileFormat: model.FileFormat{Archive: model.ArchiveCSV},
		Catalogs: []model.CatalogRef{
			{LogicalName: "a"},
			{LogicalName: "b"},
		},
	}
	if _, err := ReadPackage([]byte("x\n1\n"), pkg, "acme"); err == nil {
		t.Error("expected an error: non-archive formats require exactly one catalog")
	}
}

func TestReadPackage_NonArchiveSingleCatalog(t *testing.T) {
	pkg := model.Package{
		Name:       "p",
		FileFormat: model.FileFormat{Archive: model.ArchiveCSV},
		Catalogs:   []model.CatalogRef{{LogicalName: "customers"}},
	}
	set, err := ReadPackage([]byte("id\n1\n2\n"), pkg, "acme")
	if err != nil {
		t.Fatalf("ReadPackage: %v", err)
	}
	tbl, ok := set["customers"]
	if !ok || tbl.RowCount() != 2 {
		t.Fatalf("set[customers] = %+v, %v", tbl, ok)
	}
}

func TestReadPackage_ZipMatchesMembersByPattern(t *testing.T) {
	blob := buildZip(t, map[string]string{
		"acme_20240315_customers.csv": "id\n1\n",
		"acme_20240315_orders.csv":    "id\n1\n2\n3\n",
	})
	pkg := model.Package{
		Name:       "p",
		FileFormat: model.FileFormat{Archive: model.ArchiveZIP},
		Catalogs: []model.CatalogRef{
			{LogicalName: "customers", FileInsideArchive: "{sender_id}_{date}_customers.csv",
				Catalog: model.Catalog{FileFormat: &model.FileFormat{Archive: model.ArchiveCSV}}},
			{LogicalName: "orders", FileInsideArchive: "{sender_id}_{date}_orders.csv",
				Catalog: model.Catalog{FileFormat: &model.FileFormat{Archive: model.ArchiveCSV}}},
		},
	}
	set, err := ReadPackage(blob, pkg, "acme")
	if err != nil {
		t.Fatalf("ReadPackage: %v", err)
	}
	if set["customers"].RowCount() != 1 {
		t.Errorf("customers RowCount = %d, want 1", set["customers"].RowCount())
	}
	if set["orders"].RowCount() != 3 {
		t.Errorf("orders RowCount = %d, want 3", set["orders"].RowCount())
	}
}

func TestReadPackage_ZipNoMatchingMemberIsError(t *testing.T) {
	blob := buildZip(t, map[string]string{"unrelated.csv": "id\n1\n"})
	pkg := model.Package{
		FileFormat: model.FileFormat{Archive: model.ArchiveZIP},
		Catalogs:   []model.CatalogRef{{LogicalName: "customers", FileInsideArchive: "{sender_id}_{date}_customers.csv"}},
	}
	if _, err := ReadPackage(blob, pkg, "acme"); err == nil {
		t.Error("expected an error when no archive member matches the pattern")
	}
}

func TestResolveFormat_Precedence(t *testing.T) {
	pkgFormat := model.FileFormat{Archive: model.ArchiveCSV}
	catFormat := model.FileFormat{Archive: model.ArchiveJSON}
	overrideFormat := model.FileFormat{Archive: model.ArchiveXML}

	pkg := model.Package{FileFormat: pkgFormat}

	// No override, no catalog format: falls back to package default.
	if got := resolveFormat(model.CatalogRef{}, pkg); got.Archive != model.ArchiveCSV {
		t.Errorf("resolveFormat fallback = %v, want CSV", got.Archive)
	}
	// Catalog declares its own format: takes precedence over package default.
	ref := model.CatalogRef{Catalog: model.Catalog{FileFormat: &catFormat}}
	if got := resolveFormat(ref, pkg); got.Archive != model.ArchiveJSON {
		t.Errorf("resolveFormat catalog format = %v, want JSON", got.Archive)
	}
	// Reference-level override takes precedence over everything.
	ref.FormatOverride = &overrideFormat
	if got := resolveFormat(ref, pkg); got.Archive != model.ArchiveXML {
		t.Errorf("resolveFormat override = %v, want XML", got.Archive)
	}
}

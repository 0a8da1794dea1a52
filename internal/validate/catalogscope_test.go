package validate

import (
	"testing"
	"time"

	"github.com/sage-ingest/sage/internal/model"
	"github.com/sage-ingest/sage/internal/table"
)

func TestValidateCatalogScope_Passes(t *testing.T) {
	cat := model.Catalog{
		Name:              "orders",
		CatalogValidation: &model.RowCheck{Expression: "shape[0] > 0", Severity: model.SeverityError},
	}
	tbl := table.New([]string{"id"}, [][]string{{"1"}})
	var diag model.Diagnostic
	New(time.Now()).validateCatalogScope(cat, tbl, &diag)
	if len(diag.Findings) != 0 {
		t.Errorf("expected no Findings, got %+v", diag.Findings)
	}
}

func TestValidateCatalogScope_Fails(t *testing.T) {
	cat := model.Catalog{
		Name:              "orders",
		CatalogValidation: &model.RowCheck{Expression: "shape[0] > 100", Severity: model.SeverityError, Message: "too few rows"},
	}
	tbl := table.New([]string{"id"}, [][]string{{"1"}})
	var diag model.Diagnostic
	New(time.Now()).validateCatalogScope(cat, tbl, &diag)
	if len(diag.Findings) != 1 || diag.Findings[0].Message != "too few rows" {
		t.Fatalf("expected one Finding with the declared message, got %+v", diag.Findings)
	}
}

func TestValidateCatalogScope_SkippedWhenCatalogAlreadyHasErrors(t *testing.T) {
	cat := model.Catalog{
		Name:              "orders",
		CatalogValidation: &model.RowCheck{Expression: "shape[0] > 100", Severity: model.SeverityError},
	}
	tbl := table.New([]string{"id"}, [][]string{{"1"}})
	var diag model.Diagnostic
	diag.Add(model.Finding{Severity: model.SeverityError, Locator: model.Locator{Catalog: "orders"}})

	New(time.Now()).validateCatalogScope(cat, tbl, &diag)

	// One pre-existing ERROR plus one INFO skip notice, and no second ERROR
	// from actually running the (also-failing) catalog_validation expression.
	if len(diag.Findings) != 2 {
		t.Fatalf("expected 2 Findings (original error + skip notice), got %d: %+v", len(diag.Findings), diag.Findings)
	}
	last := diag.Findings[len(diag.Findings)-1]
	if last.Severity != model.SeverityInfo {
		t.Errorf("skip notice Severity = %q, want INFO", last.Severity)
	}
}

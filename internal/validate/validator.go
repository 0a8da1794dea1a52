// Package validate implements the Validator component: field, row,
// catalog, and package scope checks driven by a loaded model.Schema and
// compiled expr.Expr predicates, evaluated over a table.Set produced by
// the File Reader (spec.md §4.4).
package validate

import (
	"fmt"
	"time"

	"github.com/sage-ingest/sage/internal/expr"
	"github.com/sage-ingest/sage/internal/model"
	"github.com/sage-ingest/sage/internal/table"
)

// Validator runs a package's validation scopes in order: field -> row ->
// catalog -> package (cross-rules), over every catalog the package declares.
type Validator struct {
	ReferenceTime time.Time
}

// New returns a Validator anchored to a reference time (the run's start
// time — never time.Now() read mid-evaluation, so every expression in one
// run sees the same "today").
func New(referenceTime time.Time) *Validator {
	return &Validator{ReferenceTime: referenceTime}
}

// Validate runs every scope for pkg against tables and returns the
// accumulated Diagnostic. Findings are appended in scope order (field, row,
// catalog, package), and within a scope in catalog-declaration order, then
// row order (spec.md §4.4 "Ordering contract").
//
// Early-stop/skip policy: once a catalog has any ERROR Finding at field or
// row scope, catalog-scope and package cross-rules referencing that
// catalog are skipped (not the whole run aborted), and an INFO Finding
// records the skip — spec.md §4.4's scope-skip policy.
func (v *Validator) Validate(pkg model.Package, tables table.Set) model.Diagnostic {
	var diag model.Diagnostic

	for _, ref := range pkg.Catalogs {
		tbl, ok := tables[ref.LogicalName]
		if !ok {
			diag.Add(model.Finding{
				Severity: model.SeverityError,
				Scope:    model.ScopeFile,
				Locator:  model.Locator{Catalog: ref.LogicalName},
				Message:  fmt.Sprintf("no decoded table available for catalog %q", ref.LogicalName),
				RuleName: "FILE012",
			})
			continue
		}
		v.validateFields(ref.Catalog, tbl, &diag)
	}

	for _, ref := range pkg.Catalogs {
		tbl, ok := tables[ref.LogicalName]
		if !ok {
			continue
		}
		v.validateRows(ref.Catalog, tbl, &diag)
	}

	for _, ref := range pkg.Catalogs {
		tbl, ok := tables[ref.LogicalName]
		if !ok {
			continue
		}
		v.validateCatalogScope(ref.Catalog, tbl, &diag)
	}

	v.validatePackageScope(pkg, tables, &diag)

	return diag
}

func (v *Validator) exprContext(primary *table.Table, tables table.Set) *expr.Context {
	return &expr.Context{Primary: primary, Tables: tables, ReferenceTime: v.ReferenceTime}
}

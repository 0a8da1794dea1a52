package validate

import (
	"fmt"

	"github.com/sage-ingest/sage/internal/expr"
	"github.com/sage-ingest/sage/internal/model"
	"github.com/sage-ingest/sage/internal/table"
)

// validateCatalogScope runs a catalog's single catalog_validation scalar
// expression (e.g. shape[0] > 0), skipping it — and recording an INFO
// Finding rather than running it anyway — if field/row scope already
// produced an ERROR for this catalog (spec.md §4.4 scope-skip policy: a
// catalog-level aggregate check over data already known to be invalid is
// not meaningful).
func (v *Validator) validateCatalogScope(cat model.Catalog, tbl *table.Table, diag *model.Diagnostic) {
	if cat.CatalogValidation == nil {
		return
	}
	rule := *cat.CatalogValidation

	if diag.HasErrorsForCatalog(cat.Name) {
		diag.Add(model.Finding{
			Severity: model.SeverityInfo,
			Scope:    model.ScopeCatalog,
			Locator:  model.Locator{Catalog: cat.Name},
			Message:  "catalog_validation skipped: catalog already has field/row errors",
			RuleName: "catalog_validation",
		})
		return
	}

	compiled, err := expr.Compile(rule.Expression, rule.Bitwise)
	if err != nil {
		diag.Add(model.Finding{
			Severity: model.SeverityError,
			Scope:    model.ScopeCatalog,
			Locator:  model.Locator{Catalog: cat.Name},
			Message:  fmt.Sprintf("catalog_validation failed to compile: %v", err),
			RuleName: "catalog_validation",
		})
		return
	}

	ctx := v.exprContext(tbl, nil)
	ok, err := compiled.EvalScalarBool(ctx)
	if err != nil {
		diag.Add(model.Finding{
			Severity: model.SeverityError,
			Scope:    model.ScopeCatalog,
			Locator:  model.Locator{Catalog: cat.Name},
			Message:  fmt.Sprintf("catalog_validation failed to evaluate: %v", err),
			RuleName: "catalog_validation",
		})
		return
	}
	if !ok {
		diag.Add(model.Finding{
			Severity: rule.Severity,
			Scope:    model.ScopeCatalog,
			Locator:  model.Locator{Catalog: cat.Name},
			Message:  ruleMessage(rule.Message, "catalog_validation"),
			RuleName: "catalog_validation",
		})
	}
}

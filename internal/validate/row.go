package validate

import (
	"fmt"

	"github.com/sage-ingest/sage/internal/expr"
	"github.com/sage-ingest/sage/internal/model"
	"github.com/sage-ingest/sage/internal/table"
)

// validateRows runs a catalog's single row_validation expression (if any)
// against every row, emitting one Finding per row that fails.
func (v *Validator) validateRows(cat model.Catalog, tbl *table.Table, diag *model.Diagnostic) {
	if cat.RowValidation == nil {
		return
	}
	rule := *cat.RowValidation

	compiled, err := expr.Compile(rule.Expression, rule.Bitwise)
	if err != nil {
		diag.Add(model.Finding{
			Severity: model.SeverityError,
			Scope:    model.ScopeRow,
			Locator:  model.Locator{Catalog: cat.Name},
			Message:  fmt.Sprintf("row_validation failed to compile: %v", err),
			RuleName: "row_validation",
		})
		return
	}

	ctx := v.exprContext(tbl, nil)
	for row := 1; row <= tbl.RowCount(); row++ {
		ok, err := compiled.EvalRowBool(ctx, row)
		if err != nil {
			diag.Add(model.Finding{
				Severity: model.SeverityError,
				Scope:    model.ScopeRow,
				Locator:  model.Locator{Catalog: cat.Name, RowIndex: row},
				Message:  fmt.Sprintf("row_validation failed to evaluate: %v", err),
				RuleName: "row_validation",
			})
			continue
		}
		if !ok {
			diag.Add(model.Finding{
				Severity: rule.Severity,
				Scope:    model.ScopeRow,
				Locator:  model.Locator{Catalog: cat.Name, RowIndex: row},
				Message:  ruleMessage(rule.Message, "row_validation"),
				RuleName: "row_validation",
			})
		}
	}
}

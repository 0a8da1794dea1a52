package validate

import (
	"fmt"
	"strings"

	"github.com/sage-ingest/sage/internal/expr"
	"github.com/sage-ingest/sage/internal/model"
	"github.com/sage-ingest/sage/internal/table"
)

// validatePackageScope runs a package's cross_rules over the full
// table.Set. A cross_rule expression may evaluate to either shape
// (spec.md §4.4): a scalar (e.g.
// df['invoices']['customer_id'].isin(df['customers']['id']).all())
// produces a single package-level Finding when false, while a vector
// (e.g. df['ventas']['customer_id'].isin(df['clientes']['customer_id']),
// with no .all()) produces one Finding per false element, located at the
// corresponding row of the first catalog the expression references.
//
// Per-pair skip: a cross-rule naming a catalog (via df['logical']) that
// already has a field/row/catalog ERROR is skipped with an INFO Finding
// rather than evaluated against data already known invalid — comparing a
// good catalog against a broken one would otherwise produce a confusing
// cascade of unrelated cross-rule failures (spec.md §4.4 scope-skip policy).
func (v *Validator) validatePackageScope(pkg model.Package, tables table.Set, diag *model.Diagnostic) {
	for _, rule := range pkg.CrossRules {
		if blocking := firstErroredReferencedCatalog(rule.Expression, pkg, diag); blocking != "" {
			diag.Add(model.Finding{
				Severity: model.SeverityInfo,
				Scope:    model.ScopePackage,
				Locator:  model.Locator{},
				Message:  fmt.Sprintf("cross_rule %q skipped: catalog %q already has errors", rule.Name, blocking),
				RuleName: rule.Name,
			})
			continue
		}

		compiled, err := expr.Compile(rule.Expression, rule.Bitwise)
		if err != nil {
			diag.Add(model.Finding{
				Severity: model.SeverityError,
				Scope:    model.ScopePackage,
				Message:  fmt.Sprintf("cross_rule %q failed to compile: %v", rule.Name, err),
				RuleName: rule.Name,
			})
			continue
		}

		ctx := &expr.Context{Tables: tables, ReferenceTime: v.ReferenceTime}
		val, err := compiled.Eval(ctx)
		if err != nil {
			diag.Add(model.Finding{
				Severity: model.SeverityError,
				Scope:    model.ScopePackage,
				Message:  fmt.Sprintf("cross_rule %q failed to evaluate: %v", rule.Name, err),
				RuleName: rule.Name,
			})
			continue
		}
		if val.Kind != expr.KindBool {
			diag.Add(model.Finding{
				Severity: model.SeverityError,
				Scope:    model.ScopePackage,
				Message:  fmt.Sprintf("cross_rule %q did not evaluate to a boolean result", rule.Name),
				RuleName: rule.Name,
			})
			continue
		}

		if val.Vector {
			catalogName := firstReferencedCatalog(rule.Expression, pkg)
			for i, ok := range val.Bools {
				if ok {
					continue
				}
				diag.Add(model.Finding{
					Severity: rule.Severity,
					Scope:    model.ScopePackage,
					Locator:  model.Locator{Catalog: catalogName, RowIndex: i + 1},
					Message:  ruleMessage(rule.Message, rule.Name),
					RuleName: rule.Name,
				})
			}
			continue
		}

		if !val.Bools[0] {
			diag.Add(model.Finding{
				Severity: rule.Severity,
				Scope:    model.ScopePackage,
				Message:  ruleMessage(rule.Message, rule.Name),
				RuleName: rule.Name,
			})
		}
	}
}

// firstReferencedCatalog returns the logical name of the catalog whose
// df['logical'] reference occurs earliest in expression — the catalog a
// vector cross_rule result is aligned to (spec.md §4.4, §8 scenario 3).
func firstReferencedCatalog(expression string, pkg model.Package) string {
	bestIdx := -1
	var best string
	for _, ref := range pkg.Catalogs {
		needle := "df['" + ref.LogicalName + "']"
		altNeedle := `df["` + ref.LogicalName + `"]`
		idx := strings.Index(expression, needle)
		if idx == -1 {
			idx = strings.Index(expression, altNeedle)
		}
		if idx == -1 {
			continue
		}
		if bestIdx == -1 || idx < bestIdx {
			bestIdx = idx
			best = ref.LogicalName
		}
	}
	return best
}

func firstErroredReferencedCatalog(expression string, pkg model.Package, diag *model.Diagnostic) string {
	for _, ref := range pkg.Catalogs {
		needle := "df['" + ref.LogicalName + "']"
		altNeedle := `df["` + ref.LogicalName + `"]`
		if strings.Contains(expression, needle) || strings.Contains(expression, altNeedle) {
			if diag.HasErrorsForCatalog(ref.LogicalName) {
				return ref.LogicalName
			}
		}
	}
	return ""
}

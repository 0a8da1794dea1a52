package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sage-ingest/sage/internal/dateparse"
	"github.com/sage-ingest/sage/internal/expr"
	"github.com/sage-ingest/sage/internal/model"
	"github.com/sage-ingest/sage/internal/table"
)

// validateFields runs structural field checks (presence, required, type,
// text length, allowed values, uniqueness) and each field's compiled
// rule expressions, for every declared field against every row. A number
// field's Length and Decimals are not checked.
func (v *Validator) validateFields(cat model.Catalog, tbl *table.Table, diag *model.Diagnostic) {
	for _, field := range cat.Fields {
		if !tbl.HasColumn(field.Name) {
			diag.Add(model.Finding{
				Severity: model.SeverityError,
				Scope:    model.ScopeField,
				Locator:  model.Locator{Catalog: cat.Name, Field: field.Name},
				Message:  fmt.Sprintf("required column %q is missing from the submitted file", field.Name),
				RuleName: "VAL004",
			})
			continue
		}

		for row := 1; row <= tbl.RowCount(); row++ {
			v.checkFieldValue(cat, field, tbl, row, diag)
		}

		if field.Unique {
			v.checkUnique(cat, field, tbl, diag)
		}

		for _, rule := range field.Rules {
			v.checkFieldRule(cat, field, rule, tbl, diag)
		}
	}
}

func (v *Validator) checkFieldValue(cat model.Catalog, field model.FieldSpec, tbl *table.Table, row int, diag *model.Diagnostic) {
	raw, _ := tbl.Cell(row, field.Name)
	value := strings.TrimSpace(raw)

	if value == "" {
		if field.Required {
			diag.Add(model.Finding{
				Severity: model.SeverityError,
				Scope:    model.ScopeField,
				Locator:  model.Locator{Catalog: cat.Name, Field: field.Name, RowIndex: row},
				Message:  fmt.Sprintf("required field %q is empty", field.Name),
				RuleName: "VAL003",
			})
		}
		return
	}

	switch field.Type {
	case model.FieldNumber:
		if _, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64); err != nil {
			diag.Add(model.Finding{
				Severity:      model.SeverityError,
				Scope:         model.ScopeField,
				Locator:       model.Locator{Catalog: cat.Name, Field: field.Name, RowIndex: row},
				Message:       fmt.Sprintf("%q is not a valid number", value),
				ObservedValue: strPtr(value),
				RuleName:      "VAL002",
			})
		}
	case model.FieldDate:
		if _, ok := dateparse.Parse(value); !ok {
			diag.Add(model.Finding{
				Severity:      model.SeverityError,
				Scope:         model.ScopeField,
				Locator:       model.Locator{Catalog: cat.Name, Field: field.Name, RowIndex: row},
				Message:       fmt.Sprintf("%q is not a recognizable date", value),
				ObservedValue: strPtr(value),
				RuleName:      "VAL001",
			})
		}
	case model.FieldEnum:
		if len(field.AllowedValues) > 0 && !containsFold(field.AllowedValues, value) {
			diag.Add(model.Finding{
				Severity:      model.SeverityError,
				Scope:         model.ScopeField,
				Locator:       model.Locator{Catalog: cat.Name, Field: field.Name, RowIndex: row},
				Message:       fmt.Sprintf("%q is not one of the allowed values for %q", value, field.Name),
				ObservedValue: strPtr(value),
				RuleName:      "VAL006",
			})
		}
	case model.FieldText:
		if field.Length > 0 && len(value) > field.Length {
			diag.Add(model.Finding{
				Severity:      model.SeverityError,
				Scope:         model.ScopeField,
				Locator:       model.Locator{Catalog: cat.Name, Field: field.Name, RowIndex: row},
				Message:       fmt.Sprintf("value exceeds maximum length %d", field.Length),
				ObservedValue: strPtr(value),
				RuleName:      "VAL007",
			})
		}
	}
}

func (v *Validator) checkUnique(cat model.Catalog, field model.FieldSpec, tbl *table.Table, diag *model.Diagnostic) {
	values, ok := tbl.ColumnValues(field.Name)
	if !ok {
		return
	}
	seen := make(map[string]int, len(values))
	for i, raw := range values {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		seen[val]++
		if seen[val] > 1 {
			diag.Add(model.Finding{
				Severity:      model.SeverityError,
				Scope:         model.ScopeField,
				Locator:       model.Locator{Catalog: cat.Name, Field: field.Name, RowIndex: i + 1},
				Message:       fmt.Sprintf("duplicate value for unique field %q", field.Name),
				ObservedValue: strPtr(val),
				RuleName:      "VAL008",
			})
		}
	}
}

func (v *Validator) checkFieldRule(cat model.Catalog, field model.FieldSpec, rule model.FieldRule, tbl *table.Table, diag *model.Diagnostic) {
	compiled, err := expr.Compile(rule.Expression, rule.Bitwise)
	if err != nil {
		diag.Add(model.Finding{
			Severity: model.SeverityError,
			Scope:    model.ScopeField,
			Locator:  model.Locator{Catalog: cat.Name, Field: field.Name},
			Message:  fmt.Sprintf("rule %q failed to compile: %v", rule.Name, err),
			RuleName: rule.Name,
		})
		return
	}

	ctx := v.exprContext(tbl, nil)
	for row := 1; row <= tbl.RowCount(); row++ {
		ok, err := compiled.EvalRowBool(ctx, row)
		if err != nil {
			diag.Add(model.Finding{
				Severity: model.SeverityError,
				Scope:    model.ScopeField,
				Locator:  model.Locator{Catalog: cat.Name, Field: field.Name, RowIndex: row},
				Message:  fmt.Sprintf("rule %q failed to evaluate: %v", rule.Name, err),
				RuleName: rule.Name,
			})
			continue
		}
		if !ok {
			diag.Add(model.Finding{
				Severity: rule.Severity,
				Scope:    model.ScopeField,
				Locator:  model.Locator{Catalog: cat.Name, Field: field.Name, RowIndex: row},
				Message:  ruleMessage(rule.Message, rule.Name),
				RuleName: rule.Name,
			})
		}
	}
}

func ruleMessage(message, name string) string {
	if message != "" {
		return message
	}
	return fmt.Sprintf("rule %q did not hold", name)
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }

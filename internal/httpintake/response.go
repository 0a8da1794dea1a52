package httpintake

import (
	"net/http"

	"github.com/sage-ingest/sage/internal/model"
	"github.com/sage-ingest/sage/internal/runner"
)

// findingDTO is the JSON shape of a model.Finding — the model package
// itself carries no JSON tags since it isn't an I/O type, so the adapter
// translates at the boundary.
type findingDTO struct {
	Severity string  `json:"severity"`
	Scope    string  `json:"scope"`
	Catalog  string  `json:"catalog,omitempty"`
	Field    string  `json:"field,omitempty"`
	Row      int     `json:"row,omitempty"`
	Message  string  `json:"message"`
	RuleName string  `json:"rule_name"`
	Value    *string `json:"observed_value,omitempty"`
}

type runResponseDTO struct {
	RunID        string       `json:"run_id"`
	Status       string       `json:"status"`
	Findings     []findingDTO `json:"findings"`
	Applied      bool         `json:"applied"`
	RowsInserted int64        `json:"rows_inserted,omitempty"`
}

func toRunResponse(outcome runner.RunOutcome) runResponseDTO {
	findings := make([]findingDTO, 0, len(outcome.Diagnostic.Findings))
	for _, f := range outcome.Diagnostic.Findings {
		findings = append(findings, findingDTO{
			Severity: string(f.Severity),
			Scope:    string(f.Scope),
			Catalog:  f.Locator.Catalog,
			Field:    f.Locator.Field,
			Row:      f.Locator.RowIndex,
			Message:  f.Message,
			RuleName: f.RuleName,
			Value:    f.ObservedValue,
		})
	}
	return runResponseDTO{
		RunID:        outcome.RunID,
		Status:       string(outcome.Diagnostic.Status()),
		Findings:     findings,
		Applied:      outcome.Applied,
		RowsInserted: outcome.SinkResult.RowsInserted,
	}
}

// statusFor maps a run's outcome to an HTTP status: a clean success is 200,
// a run that completed but reported only WARNING findings is still 200 (the
// caller inspects Status/Findings), and anything with an ERROR finding is
// 422 Unprocessable Entity — the payload was understood but rejected on its
// merits, not a malformed request.
func statusFor(outcome runner.RunOutcome) int {
	if outcome.Diagnostic.Status() == model.StatusError {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

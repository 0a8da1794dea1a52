// Package sink implements the Sink component: writing a validated
// submission's tables to their configured Destination, gated by a
// pre_validation HTTP check and a circuit breaker around the destination
// database (spec.md §4.5). Sink.Apply is only ever invoked once a run's
// Diagnostic has zero ERROR Findings (spec.md §4.4/§4.6 boundary).
package sink

import (
	"context"
	"fmt"

	"github.com/sage-ingest/sage/internal/model"
	"github.com/sage-ingest/sage/internal/table"
)

// Result summarizes one Apply call.
type Result struct {
	RowsInserted int64
	Skipped      bool // true when Destination.Enabled is false
}

// Sink writes validated tables to their package's destination.
type Sink struct {
	pg *postgresSink
}

// New constructs a Sink. Destinations using drivers other than postgresql
// are accepted by the Schema Loader (so a schema authored against a future
// build of SAGE still loads) but rejected at Apply time with a structured
// Finding — no other driver is implemented in this build (DESIGN.md,
// "Sink" section).
func New() *Sink {
	return &Sink{pg: newPostgresSink()}
}

// Apply writes every catalog in pkg to its Destination. Runs a
// pre_validation HTTP check first if configured; a failed pre_validation
// aborts the write and is reported as a Finding rather than attempted.
func (s *Sink) Apply(ctx context.Context, pkg model.Package, tables table.Set, runID string) (Result, model.Finding, bool) {
	dest := pkg.Destination
	if !dest.Enabled {
		return Result{Skipped: true}, model.Finding{}, true
	}

	if dest.PreValidation != nil {
		if err := runPreValidation(ctx, *dest.PreValidation, runID); err != nil {
			return Result{}, errorFinding(fmt.Sprintf("pre_validation failed: %v", err), "SINK040", firstCatalogName(pkg)), false
		}
	}

	switch dest.Connection.Driver {
	case model.DriverPostgres:
		n, failedCatalog, err := s.pg.apply(ctx, pkg, tables, runID)
		if err != nil {
			return Result{}, errorFinding(err.Error(), "SINK000", failedCatalog), false
		}
		return Result{RowsInserted: n}, model.Finding{}, true
	default:
		return Result{}, errorFinding(fmt.Sprintf("driver not available in this build: %q", dest.Connection.Driver), "SINK020", firstCatalogName(pkg)), false
	}
}

// firstCatalogName names the catalog a Sink failure is attributed to when
// the failure happens before any one catalog's write was reached (an
// unsupported driver, a failed pre_validation) — the Destination is
// package-wide, so the package's first catalog stands in as the
// catalog-scoped Finding's Locator (spec.md §4.5/§7: Sink Findings are
// scope=catalog).
func firstCatalogName(pkg model.Package) string {
	if len(pkg.Catalogs) == 0 {
		return ""
	}
	return pkg.Catalogs[0].LogicalName
}

func errorFinding(message, code, catalog string) model.Finding {
	return model.Finding{
		Severity: model.SeverityError,
		Scope:    model.ScopeCatalog,
		Locator:  model.Locator{Catalog: catalog},
		Message:  message,
		RuleName: code,
	}
}

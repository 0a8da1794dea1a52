// Package runner implements the Run Controller: SAGE's orchestration layer
// tying the Sender Gate, File Reader, Validator, and Sink together into the
// three-step Load/Validate/Process public API a CLI or HTTP adapter calls
// (spec.md §6).
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sage-ingest/sage/internal/gate"
	"github.com/sage-ingest/sage/internal/model"
	"github.com/sage-ingest/sage/internal/reader"
	"github.com/sage-ingest/sage/internal/sink"
	"github.com/sage-ingest/sage/internal/table"
	"github.com/sage-ingest/sage/internal/validate"
)

// Controller runs submissions against a loaded Schema.
type Controller struct {
	Schema model.Schema
	Sink   *sink.Sink
	Now    func() time.Time
}

// New returns a Controller bound to schema. now defaults to time.Now if nil
// — tests pass a fixed clock so the Validator's ReferenceTime stays
// deterministic (run IDs are random UUIDs).
func New(schema model.Schema, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{Schema: schema, Sink: sink.New(), Now: now}
}

// RunOutcome is everything Process reports back to the caller.
type RunOutcome struct {
	RunID      string
	Diagnostic model.Diagnostic
	SinkResult sink.Result
	Applied    bool
}

// Load resolves sub.PackageName against the Schema and decodes its payload
// into a table.Set, without running any validation yet.
func (c *Controller) Load(sub model.Submission) (model.Package, table.Set, model.Finding, bool) {
	pkg, ok := c.Schema.PackageByName(sub.PackageName)
	if !ok {
		return model.Package{}, nil, model.Finding{
			Severity: model.SeverityError,
			Scope:    model.ScopePackage,
			Message:  fmt.Sprintf("unknown package %q", sub.PackageName),
			RuleName: "RUN001",
		}, false
	}

	tables, err := reader.ReadPackage(sub.Blob, *pkg, sub.SenderID)
	if err != nil {
		return *pkg, nil, model.Finding{
			Severity: model.SeverityError,
			Scope:    model.ScopeFile,
			Message:  err.Error(),
			RuleName: "RUN002",
		}, false
	}
	return *pkg, tables, model.Finding{}, true
}

// Validate runs the Validator over an already-decoded package/table.Set.
func (c *Controller) Validate(pkg model.Package, tables table.Set) model.Diagnostic {
	v := validate.New(c.Now())
	return v.Validate(pkg, tables)
}

// Process runs the full pipeline for one Submission: Sender Gate, Load,
// Validate, and — only if the Diagnostic has zero ERROR Findings —
// Sink.Apply. A zero sub.Deadline is filled from the sender's deadline via
// gate.DeadlineForCycle before the gate runs.
func (c *Controller) Process(ctx context.Context, sub model.Submission) RunOutcome {
	runID := uuid.NewString()
	outcome := RunOutcome{RunID: runID}

	if sub.Deadline.IsZero() {
		if sender, ok := c.Schema.SenderByID(sub.SenderID); ok {
			sub.Deadline = gate.DeadlineForCycle(*sender, sub.ReceivedAt)
		}
	}

	gateResult := gate.Check(c.Schema, sub)
	if !gateResult.Allowed {
		outcome.Diagnostic.Add(gateResult.Finding)
		return outcome
	}
	for _, w := range gateResult.Warnings {
		outcome.Diagnostic.Add(w)
	}

	pkg, tables, loadFinding, ok := c.Load(sub)
	if !ok {
		outcome.Diagnostic.Add(loadFinding)
		return outcome
	}

	diag := c.Validate(pkg, tables)
	outcome.Diagnostic.Merge(diag)

	if diag.HasErrors() {
		return outcome
	}

	result, sinkFinding, applied := c.Sink.Apply(ctx, pkg, tables, runID)
	outcome.SinkResult = result
	outcome.Applied = applied
	if !applied && sinkFinding.Message != "" {
		outcome.Diagnostic.Add(sinkFinding)
	}
	return outcome
}

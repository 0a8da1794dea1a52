package runner

import (
	"context"
	"testing"
	"time"

	"github.com/sage-ingest/sage/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testSchema() model.Schema {
	return model.Schema{
		Packages: []model.Package{
			{
				Name: "orders_feed",
				Catalogs: []model.CatalogRef{
					{LogicalName: "orders", Catalog: model.Catalog{
						Name: "orders",
						Fields: []model.FieldSpec{
							{Name: "amount", Type: model.FieldNumber, Required: true},
						},
					}},
				},
				Destination: model.Destination{Enabled: false},
			},
		},
		Senders: []model.Sender{
			{
				SenderID:       "acme",
				AllowedMethods: []model.Channel{model.ChannelAPI},
				Packages:       []string{"orders_feed"},
				ChannelConfig: map[model.Channel]model.ChannelConfig{
					model.ChannelAPI: {APIKey: "secret-key"},
				},
			},
		},
	}
}

func validSubmission() model.Submission {
	return model.Submission{
		SenderID:    "acme",
		PackageName: "orders_feed",
		Channel:     model.ChannelAPI,
		APIKey:      "secret-key",
		Blob:        []byte("amount\n10\n20\n"),
		ReceivedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestProcess_GateDenialStopsBeforeLoad(t *testing.T) {
	c := New(testSchema(), fixedClock(time.Now()))
	sub := validSubmission()
	sub.APIKey = "wrong"

	outcome := c.Process(context.Background(), sub)
	if !outcome.Diagnostic.HasErrors() {
		t.Fatal("expected a gate-denial Finding")
	}
	if outcome.Diagnostic.Findings[0].RuleName != "AUTH004" {
		t.Errorf("RuleName = %q, want AUTH004", outcome.Diagnostic.Findings[0].RuleName)
	}
	if outcome.Applied {
		t.Error("Applied should be false when the gate denies the submission")
	}
}

func TestProcess_LateSubmissionStillProcessesWithWarning(t *testing.T) {
	schema := testSchema()
	schema.Senders[0].Deadline = "09:00"
	schema.Senders[0].SubmissionFrequency = model.FrequencyDaily
	c := New(schema, fixedClock(time.Now()))

	sub := validSubmission()
	sub.ReceivedAt = time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	sub.Deadline = time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	outcome := c.Process(context.Background(), sub)
	if outcome.Diagnostic.HasErrors() {
		t.Fatalf("a late submission should not be an ERROR, got %+v", outcome.Diagnostic.Findings)
	}
	var warnings int
	for _, f := range outcome.Diagnostic.Findings {
		if f.RuleName == "AUTH005" {
			warnings++
			if f.Severity != model.SeverityWarning {
				t.Errorf("AUTH005 Severity = %q, want WARNING", f.Severity)
			}
		}
	}
	if warnings != 1 {
		t.Fatalf("expected exactly one AUTH005 WARNING, got %d in %+v", warnings, outcome.Diagnostic.Findings)
	}
	if !outcome.Applied {
		t.Error("expected processing to continue through to the Sink despite the late arrival")
	}
}

func TestProcess_UnknownPackageIsLoadError(t *testing.T) {
	// The sender lists the package, so the gate lets it through and Load
	// is the step that finds it missing from the Schema.
	schema := testSchema()
	schema.Senders[0].Packages = append(schema.Senders[0].Packages, "nonexistent")
	c := New(schema, fixedClock(time.Now()))
	sub := validSubmission()
	sub.PackageName = "nonexistent"

	outcome := c.Process(context.Background(), sub)
	if !outcome.Diagnostic.HasErrors() {
		t.Fatal("expected a load-error Finding")
	}
	if outcome.Diagnostic.Findings[0].RuleName != "RUN001" {
		t.Errorf("RuleName = %q, want RUN001", outcome.Diagnostic.Findings[0].RuleName)
	}
}

func TestProcess_MalformedArchiveIsLoadError(t *testing.T) {
	c := New(testSchema(), fixedClock(time.Now()))
	sub := validSubmission()
	sub.Blob = []byte{0x00, 0x01, 0x02}

	schema := testSchema()
	schema.Packages[0].FileFormat.Archive = model.ArchiveZIP
	c2 := New(schema, fixedClock(time.Now()))
	outcome := c2.Process(context.Background(), sub)
	if !outcome.Diagnostic.HasErrors() {
		t.Fatal("expected a load-error Finding for a malformed zip archive")
	}
	if outcome.Diagnostic.Findings[0].RuleName != "RUN002" {
		t.Errorf("RuleName = %q, want RUN002", outcome.Diagnostic.Findings[0].RuleName)
	}
}

func TestProcess_ValidationErrorSkipsSink(t *testing.T) {
	c := New(testSchema(), fixedClock(time.Now()))
	sub := validSubmission()
	sub.Blob = []byte("amount,note\n,missing amount\n20,ok\n") // row 1 has an empty required field

	outcome := c.Process(context.Background(), sub)
	if !outcome.Diagnostic.HasErrors() {
		t.Fatal("expected a field-validation error")
	}
	if outcome.Applied {
		t.Error("Applied should be false when validation reports an ERROR")
	}
}

func TestProcess_CleanRunWithDisabledDestinationIsSkippedButApplied(t *testing.T) {
	c := New(testSchema(), fixedClock(time.Now()))
	outcome := c.Process(context.Background(), validSubmission())
	if outcome.Diagnostic.HasErrors() {
		t.Fatalf("expected a clean run, got %+v", outcome.Diagnostic.Findings)
	}
	if !outcome.Applied {
		t.Error("Applied should be true (the sink call itself succeeded, just skipped the write)")
	}
	if !outcome.SinkResult.Skipped {
		t.Error("expected SinkResult.Skipped when the destination is disabled")
	}
	if outcome.RunID == "" {
		t.Error("expected a non-empty RunID")
	}
}

func TestLoad_ReturnsDecodedTableSet(t *testing.T) {
	c := New(testSchema(), fixedClock(time.Now()))
	pkg, tables, finding, ok := c.Load(validSubmission())
	if !ok {
		t.Fatalf("expected Load to succeed, got Finding %+v", finding)
	}
	if pkg.Name != "orders_feed" {
		t.Errorf("pkg.Name = %q, want orders_feed", pkg.Name)
	}
	tbl, ok := tables["orders"]
	if !ok || tbl.RowCount() != 2 {
		t.Fatalf("expected 2 decoded rows for catalog 'orders', got %+v", tables)
	}
}

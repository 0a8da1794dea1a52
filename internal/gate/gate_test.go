package gate

import (
	"testing"
	"time"

	"github.com/sage-ingest/sage/internal/model"
)

func testSchema() model.Schema {
	return model.Schema{
		Senders: []model.Sender{
			{
				SenderID:       "acme",
				AllowedMethods: []model.Channel{model.ChannelAPI, model.ChannelSFTP, model.ChannelEmail},
				Packages:       []string{"orders_feed"},
				ChannelConfig: map[model.Channel]model.ChannelConfig{
					model.ChannelAPI:   {APIKey: "secret-key"},
					model.ChannelSFTP:  {AllowedHosts: []string{"sftp.acme.example"}},
					model.ChannelEmail: {AllowedSenders: []string{"finance@acme.example"}},
				},
			},
		},
	}
}

func TestCheck_UnknownSenderDenied(t *testing.T) {
	res := Check(testSchema(), model.Submission{SenderID: "unknown", PackageName: "orders_feed", Channel: model.ChannelAPI})
	if res.Allowed {
		t.Fatal("expected denial for an unregistered sender")
	}
	if res.Finding.RuleName != "AUTH001" {
		t.Errorf("RuleName = %q, want AUTH001", res.Finding.RuleName)
	}
}

func TestCheck_PackageNotAuthorizedDenied(t *testing.T) {
	res := Check(testSchema(), model.Submission{SenderID: "acme", PackageName: "invoices_feed", Channel: model.ChannelAPI})
	if res.Allowed || res.Finding.RuleName != "AUTH006" {
		t.Fatalf("expected AUTH006 denial, got %+v", res)
	}
}

func TestCheck_ChannelNotAllowedDenied(t *testing.T) {
	res := Check(testSchema(), model.Submission{SenderID: "acme", PackageName: "orders_feed", Channel: model.ChannelFilesystem})
	if res.Allowed || res.Finding.RuleName != "AUTH002" {
		t.Fatalf("expected AUTH002 denial, got %+v", res)
	}
}

func TestCheck_WrongAPIKeyDenied(t *testing.T) {
	res := Check(testSchema(), model.Submission{SenderID: "acme", PackageName: "orders_feed", Channel: model.ChannelAPI, APIKey: "wrong"})
	if res.Allowed || res.Finding.RuleName != "AUTH004" {
		t.Fatalf("expected AUTH004 denial, got %+v", res)
	}
}

func TestCheck_CorrectAPIKeyAllowed(t *testing.T) {
	res := Check(testSchema(), model.Submission{SenderID: "acme", PackageName: "orders_feed", Channel: model.ChannelAPI, APIKey: "secret-key"})
	if !res.Allowed {
		t.Fatalf("expected allow, got denial %+v", res.Finding)
	}
}

func TestCheck_HostNotAllowedDenied(t *testing.T) {
	res := Check(testSchema(), model.Submission{SenderID: "acme", PackageName: "orders_feed", Channel: model.ChannelSFTP, SourceHost: "evil.example"})
	if res.Allowed || res.Finding.RuleName != "AUTH003" {
		t.Fatalf("expected AUTH003 denial, got %+v", res)
	}
}

func TestCheck_AllowedHostCaseInsensitive(t *testing.T) {
	res := Check(testSchema(), model.Submission{SenderID: "acme", PackageName: "orders_feed", Channel: model.ChannelSFTP, SourceHost: "SFTP.ACME.EXAMPLE"})
	if !res.Allowed {
		t.Fatalf("expected allow (case-insensitive host match), got denial %+v", res.Finding)
	}
}

func TestCheck_EmailSenderNotAllowedDenied(t *testing.T) {
	res := Check(testSchema(), model.Submission{SenderID: "acme", PackageName: "orders_feed", Channel: model.ChannelEmail, EmailSender: "nobody@evil.example"})
	if res.Allowed || res.Finding.RuleName != "AUTH003" {
		t.Fatalf("expected AUTH003 denial, got %+v", res)
	}
}

func TestCheck_PastDeadlineStillAllowedWithWarning(t *testing.T) {
	sub := model.Submission{
		SenderID: "acme", PackageName: "orders_feed", Channel: model.ChannelAPI, APIKey: "secret-key",
		ReceivedAt: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		Deadline:   time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC),
	}
	res := Check(testSchema(), sub)
	if !res.Allowed {
		t.Fatalf("expected a late submission to still pass the gate, got denial %+v", res.Finding)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].RuleName != "AUTH005" {
		t.Fatalf("expected exactly one AUTH005 Warning, got %+v", res.Warnings)
	}
	if res.Warnings[0].Severity != model.SeverityWarning {
		t.Errorf("Warnings[0].Severity = %q, want WARNING", res.Warnings[0].Severity)
	}
}

func TestCheck_ZeroDeadlineIsUnenforced(t *testing.T) {
	res := Check(testSchema(), model.Submission{
		SenderID: "acme", PackageName: "orders_feed", Channel: model.ChannelAPI, APIKey: "secret-key",
		ReceivedAt: time.Now(),
	})
	if !res.Allowed {
		t.Fatalf("expected allow with a zero Deadline, got denial %+v", res.Finding)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no Warnings when Deadline is unset, got %+v", res.Warnings)
	}
}

func TestCheck_OnTimeSubmissionHasNoWarnings(t *testing.T) {
	res := Check(testSchema(), model.Submission{
		SenderID: "acme", PackageName: "orders_feed", Channel: model.ChannelAPI, APIKey: "secret-key",
		ReceivedAt: time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC),
		Deadline:   time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC),
	})
	if !res.Allowed || len(res.Warnings) != 0 {
		t.Fatalf("expected allow with no Warnings for an on-time submission, got %+v", res)
	}
}

func TestDeadlineForCycle_Daily(t *testing.T) {
	sender := model.Sender{Deadline: "17:00", SubmissionFrequency: model.FrequencyDaily}
	ref := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	got := DeadlineForCycle(sender, ref)
	want := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DeadlineForCycle(daily) = %v, want %v", got, want)
	}
}

func TestDeadlineForCycle_Weekly(t *testing.T) {
	sender := model.Sender{Deadline: "17:00", SubmissionFrequency: model.FrequencyWeekly}
	// 2026-03-10 is a Tuesday.
	ref := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	got := DeadlineForCycle(sender, ref)
	if got.Weekday() != time.Sunday {
		t.Errorf("DeadlineForCycle(weekly) weekday = %v, want Sunday (end of the submission week)", got.Weekday())
	}
	if !got.After(ref) {
		t.Errorf("DeadlineForCycle(weekly) = %v, expected it to fall after the reference time", got)
	}
}

func TestDeadlineForCycle_MonthlyRollsToNextMonthOnceCurrentCutoffPasses(t *testing.T) {
	sender := model.Sender{Deadline: "17:00", SubmissionFrequency: model.FrequencyMonthly}

	before := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	got := DeadlineForCycle(sender, before)
	want := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("before this month's cutoff: DeadlineForCycle = %v, want %v", got, want)
	}

	after := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	got = DeadlineForCycle(sender, after)
	want = time.Date(2026, 4, 10, 17, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("after this month's cutoff: DeadlineForCycle = %v, want %v (rolled to next month)", got, want)
	}
}

func TestDeadlineForCycle_MalformedDeadlineIsUnenforced(t *testing.T) {
	sender := model.Sender{Deadline: "not-a-time", SubmissionFrequency: model.FrequencyDaily}
	got := DeadlineForCycle(sender, time.Now())
	if !got.IsZero() {
		t.Errorf("DeadlineForCycle(malformed) = %v, want zero time", got)
	}
}

// Package gate implements the Sender Gate: the authorization check a
// Submission must pass before the Run Controller loads and validates its
// payload (spec.md §4.6).
package gate

import (
	"fmt"
	"time"

	"github.com/sage-ingest/sage/internal/model"
)

// Result is the outcome of a Sender Gate check: either Allowed, or not,
// with a Finding describing why. A late-but-otherwise-authorized
// submission is still Allowed, with the lateness recorded in Warnings
// rather than treated as a denial.
type Result struct {
	Allowed  bool
	Finding  model.Finding
	Warnings []model.Finding
}

// Check runs the authorization sequence against sub, in order, stopping at
// the first failure (spec.md §4.6):
//
//  1. sub.SenderID must name a registered Sender.
//  2. That Sender must be allowed to submit sub.PackageName.
//  3. That Sender must be allowed to submit via sub.Channel.
//  4. The channel's own authorization must check out: API key for api/direct_upload,
//     allowed_hosts for sftp/filesystem, allowed_senders (envelope From) for email.
//
// A submission received past the Sender's configured deadline for this
// cycle still passes the gate — it is not a denial — but carries an
// AUTH005 WARNING Finding in Result.Warnings (spec.md §4.6 step 4, §8
// scenario 5).
func Check(schema model.Schema, sub model.Submission) Result {
	sender, ok := schema.SenderByID(sub.SenderID)
	if !ok {
		return deny(model.ScopeAuth, fmt.Sprintf("%q is not an authorized sender", sub.SenderID), "AUTH001")
	}

	if !sender.AllowsPackage(sub.PackageName) {
		return deny(model.ScopeAuth, fmt.Sprintf("sender %q is not authorized to submit package %q", sub.SenderID, sub.PackageName), "AUTH006")
	}

	if !sender.AllowsChannel(sub.Channel) {
		return deny(model.ScopeAuth, fmt.Sprintf("channel %q not allowed for sender %q", sub.Channel, sub.SenderID), "AUTH002")
	}

	cfg, hasCfg := sender.ChannelConfig[sub.Channel]

	switch sub.Channel {
	case model.ChannelAPI, model.ChannelDirectUpload:
		if hasCfg && cfg.APIKey != "" && cfg.APIKey != sub.APIKey {
			return deny(model.ScopeAuth, fmt.Sprintf("invalid api key for sender %q on channel %q", sub.SenderID, sub.Channel), "AUTH004")
		}
	case model.ChannelSFTP, model.ChannelFilesystem:
		if hasCfg && len(cfg.AllowedHosts) > 0 && !containsFold(cfg.AllowedHosts, sub.SourceHost) {
			return deny(model.ScopeAuth, fmt.Sprintf("host %q not allowed for sender %q", sub.SourceHost, sub.SenderID), "AUTH003")
		}
	case model.ChannelEmail:
		if hasCfg && len(cfg.AllowedSenders) > 0 && !containsFold(cfg.AllowedSenders, sub.EmailSender) {
			return deny(model.ScopeAuth, fmt.Sprintf("email sender %q not in allowed_senders for sender %q", sub.EmailSender, sub.SenderID), "AUTH003")
		}
	}

	result := Result{Allowed: true}
	if !sub.Deadline.IsZero() && sub.ReceivedAt.After(sub.Deadline) {
		result.Warnings = append(result.Warnings, model.Finding{
			Severity: model.SeverityWarning,
			Scope:    model.ScopeAuth,
			Message:  fmt.Sprintf("submission from %q arrived past its deadline", sub.SenderID),
			RuleName: "AUTH005",
		})
	}

	return result
}

func deny(scope model.Scope, message, code string) Result {
	return Result{
		Allowed: false,
		Finding: model.Finding{
			Severity: model.SeverityError,
			Scope:    scope,
			Message:  message,
			RuleName: code,
		},
	}
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if equalFold(v, want) {
			return true
		}
	}
	return false
}

// equalFold compares a and b ignoring the case of ASCII letters only; every
// other byte, including non-ASCII letters, must match exactly.
func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// DeadlineForCycle resolves a Sender's recurring deadline string, an "HH:MM"
// time of day such as "17:00", against a reference time, producing the
// concrete cutoff for the current submission cycle; the sender's frequency
// decides which day the cutoff falls on. No weekday or day-of-month
// qualifier is parsed. Parsing failures leave the deadline unenforced (zero
// time) rather than rejecting every submission because of a malformed
// schema field; the Schema Loader does not check the deadline's format.
func DeadlineForCycle(sender model.Sender, reference time.Time) time.Time {
	clock, err := time.Parse("15:04", sender.Deadline)
	if err != nil {
		return time.Time{}
	}
	cutoff := time.Date(reference.Year(), reference.Month(), reference.Day(), clock.Hour(), clock.Minute(), 0, 0, reference.Location())

	switch sender.SubmissionFrequency {
	case model.FrequencyWeekly:
		cutoff = cutoff.AddDate(0, 0, (7+int(time.Sunday)-int(cutoff.Weekday()))%7)
	case model.FrequencyMonthly:
		if reference.After(cutoff) {
			cutoff = cutoff.AddDate(0, 1, 0)
		}
	}
	return cutoff
}

// Package apperr maps technical errors encountered during a run to the
// user-facing SAGE error codes and model.Finding shape, adapted from the
// teacher's pattern-matched error catalog (internal/core/error_messages.go):
// a fixed, ordered list of (substring pattern -> message/code), matched
// case-insensitively, first match wins, with a generic fallback code for
// anything unrecognized.
package apperr

import (
	"strings"

	"github.com/sage-ingest/sage/internal/model"
)

// UserMessage is a human-facing description of a technical error, paired
// with a stable support code.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// patterns is grouped by SAGE's own code ranges rather than the teacher's:
//
//	VAL### - Validator/Expression Engine failures
//	FILE###  - File Reader / archive decoding failures
//	SINK### - Sink / destination database failures
//	AUTH### - Sender Gate authorization failures
//	RUN###  - Run Controller / orchestration failures
//
// Patterns are matched in order, most specific first (spec.md's own
// Validator errors are raised directly as Findings and never flow through
// here; this catalog exists for the lower-level errors — decode failures,
// driver errors, HTTP failures — that a component returns as a plain `error`).
var patterns = []errorPattern{
	{"duplicate key", UserMessage{"A row collided with an existing primary key", "Use 'upsert' or 'replace' insertion_method if updates are expected", "SINK010"}},
	{"unique constraint", UserMessage{"A value violates a unique constraint on the destination table", "Check for duplicate values in the submitted file", "SINK011"}},
	{"violates unique", UserMessage{"A value violates a unique constraint on the destination table", "Check for duplicate values in the submitted file", "SINK011"}},
	{"foreign key", UserMessage{"A referenced record does not exist in the destination schema", "Ensure referenced records are loaded first", "SINK012"}},
	{"connection refused", UserMessage{"Unable to connect to the destination database", "Retry; if persistent, check destination connection settings", "SINK001"}},
	{"connection reset", UserMessage{"The destination database connection was interrupted", "Retry the run", "SINK002"}},
	{"driver not available", UserMessage{"The configured destination driver is not implemented in this build", "Use the postgresql driver or contact the SAGE maintainers", "SINK020"}},
	{"circuit breaker", UserMessage{"The destination database is currently marked unavailable", "Wait for the circuit breaker to reset and retry", "SINK030"}},
	{"context deadline exceeded", UserMessage{"The operation timed out", "Retry with a smaller file or check network conditions", "RUN005"}},
	{"context canceled", UserMessage{"The run was cancelled", "Start a new run when ready", "RUN004"}},
	{"invalid date", UserMessage{"A value could not be interpreted as a date", "Use an unambiguous date format such as YYYY-MM-DD", "VAL001"}},
	{"invalid number", UserMessage{"A value could not be interpreted as a number", "Remove thousands separators/currency symbols", "VAL002"}},
	{"unknown column", UserMessage{"An expression referenced a column that does not exist in this catalog", "Check the catalog's field list and the expression", "VAL005"}},
	{"unknown catalog", UserMessage{"A cross-rule or package expression referenced an undeclared catalog", "Check the package's catalogs list and logical names", "VAL006"}},
	{"no file in archive matches", UserMessage{"The submitted archive is missing an expected file", "Check the catalog's file_inside_archive pattern against the archive contents", "FILE010"}},
	{"files in archive match", UserMessage{"The submitted archive has more than one file matching a catalog's pattern", "Ensure each catalog's pattern matches exactly one archive member", "FILE011"}},
	{"decoding CSV", UserMessage{"The submitted file is not valid CSV", "Check the file is comma-separated with consistent quoting", "FILE001"}},
	{"opening XLSX archive", UserMessage{"The submitted file is not a valid XLSX workbook", "Re-export the workbook and resubmit", "FILE002"}},
	{"decoding JSON", UserMessage{"The submitted file is not valid JSON", "Check the file is a well-formed JSON array of records", "FILE003"}},
	{"decoding XML", UserMessage{"The submitted file is not valid XML", "Check the file is well-formed XML", "FILE004"}},
	{"not an authorized sender", UserMessage{"The submitter is not registered for this package", "Register the sender or correct the sender_id", "AUTH001"}},
	{"channel not allowed", UserMessage{"The submission channel is not permitted for this sender", "Submit via one of the sender's allowed_methods", "AUTH002"}},
	{"host not allowed", UserMessage{"The submitting host is not in the sender's allowed_hosts", "Submit from an approved host or update allowed_hosts", "AUTH003"}},
	{"invalid api key", UserMessage{"The submission's API key did not match the sender's configured key", "Check the channel_config api_key", "AUTH004"}},
	{"past deadline", UserMessage{"The submission arrived after the sender's configured deadline", "Submit earlier or update the sender's deadline", "AUTH005"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred while processing this run",
	Action:  "Check the run log for the underlying technical error",
	Code:    "ERR000",
}

// Map converts a technical error into a UserMessage via case-insensitive
// substring match against patterns, first match wins, falling back to the
// generic ERR000 message.
func Map(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	text := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(text, strings.ToLower(p.pattern)) {
			return p.msg
		}
	}
	return defaultMessage
}

// ToFinding converts a technical error into an ERROR-severity Finding at
// the given scope/locator, suitable for merging into a run's Diagnostic
// when a component fails outside the normal field/row validation path.
func ToFinding(err error, scope model.Scope, loc model.Locator) model.Finding {
	msg := Map(err)
	return model.Finding{
		Severity: model.SeverityError,
		Scope:    scope,
		Locator:  loc,
		Message:  msg.Message + ". " + msg.Action + " (code " + msg.Code + ")",
		RuleName: msg.Code,
	}
}

package apperr

import (
	"errors"
	"strings"
	"testing"

	"github.com/sage-ingest/sage/internal/model"
)

func TestMap_KnownPatterns(t *testing.T) {
	tests := []struct {
		errText  string
		wantCode string
	}{
		{"pq: duplicate key value violates unique constraint", "SINK010"},
		{"dial tcp: connection refused", "SINK001"},
		{"driver not available in this build", "SINK020"},
		{"context deadline exceeded", "RUN005"},
		{"unknown column \"foo\"", "VAL005"},
		{"no file in archive matches pattern", "FILE010"},
		{"sender is not an authorized sender for package", "AUTH001"},
		{"invalid api key supplied", "AUTH004"},
	}
	for _, tt := range tests {
		got := Map(errors.New(tt.errText))
		if got.Code != tt.wantCode {
			t.Errorf("Map(%q).Code = %q, want %q", tt.errText, got.Code, tt.wantCode)
		}
	}
}

func TestMap_IsCaseInsensitive(t *testing.T) {
	got := Map(errors.New("CONNECTION REFUSED by remote host"))
	if got.Code != "SINK001" {
		t.Errorf("Map(uppercase) Code = %q, want SINK001", got.Code)
	}
}

func TestMap_FirstMatchWins(t *testing.T) {
	// Both "duplicate key" and "unique constraint" match this text;
	// "duplicate key" comes earlier in the pattern list, so it wins.
	got := Map(errors.New("pq: unique constraint violation: duplicate key"))
	if got.Code != "SINK010" {
		t.Errorf("Map = %q, want SINK010 (duplicate key matches first)", got.Code)
	}
}

func TestMap_UnrecognizedFallsBackToERR000(t *testing.T) {
	got := Map(errors.New("something bizarre happened"))
	if got.Code != "ERR000" {
		t.Errorf("Map(unrecognized).Code = %q, want ERR000", got.Code)
	}
}

func TestMap_NilErrorReturnsZeroValue(t *testing.T) {
	got := Map(nil)
	if got != (UserMessage{}) {
		t.Errorf("Map(nil) = %+v, want zero value", got)
	}
}

func TestToFinding_BuildsErrorSeverityFinding(t *testing.T) {
	f := ToFinding(errors.New("connection refused"), model.ScopePackage, model.Locator{Catalog: "orders"})
	if f.Severity != model.SeverityError {
		t.Errorf("Severity = %q, want ERROR", f.Severity)
	}
	if f.RuleName != "SINK001" {
		t.Errorf("RuleName = %q, want SINK001", f.RuleName)
	}
	if !strings.Contains(f.Message, "code SINK001") {
		t.Errorf("Message = %q, expected it to cite the code", f.Message)
	}
	if f.Locator.Catalog != "orders" {
		t.Errorf("Locator = %+v, want Catalog orders preserved", f.Locator)
	}
}

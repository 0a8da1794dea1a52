package reader

import "testing"

func TestCompilePattern_SenderIDAndDate(t *testing.T) {
	re, err := CompilePattern("{sender_id}_{date}_invoices.csv", "acme")
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	if !re.MatchString("acme_20240315_invoices.csv") {
		t.Error("expected the pattern to match a well-formed member name")
	}
	if re.MatchString("other_20240315_invoices.csv") {
		t.Error("expected the pattern to reject a mismatched sender_id")
	}
	if re.MatchString("acme_2024-03-15_invoices.csv") {
		t.Error("expected the {date} placeholder to require an 8-digit run")
	}
}

func TestCompilePattern_UnknownPlaceholderIsFreeForm(t *testing.T) {
	re, err := CompilePattern("{any}_export.csv", "acme")
	if err != nil {
		t.Fatalf("CompilePattern: %v", err)
	}
	if !re.MatchString("whatever_export.csv") {
		t.Error("an unrecognized placeholder should match any non-separator run")
	}
}

func TestExtractDate_FindsYYYYMMDD(t *testing.T) {
	got, ok := ExtractDate("acme_20240315_invoices.csv")
	if !ok {
		t.Fatal("ExtractDate should find the embedded date")
	}
	if got.Year() != 2024 || got.Month() != 3 || got.Day() != 15 {
		t.Errorf("ExtractDate = %v, want 2024-03-15", got)
	}
}

func TestExtractDate_NoDateFound(t *testing.T) {
	if _, ok := ExtractDate("no_date_here.csv"); ok {
		t.Error("expected ok=false when no 8-digit run is present")
	}
}

func TestExtractDate_InvalidCalendarDate(t *testing.T) {
	if _, ok := ExtractDate("acme_99999999_invoices.csv"); ok {
		t.Error("expected ok=false for an 8-digit run that isn't a valid date")
	}
}

package schema

import "testing"

func TestResolveSecret_LiteralPassesThrough(t *testing.T) {
	got, err := resolveSecret("plain-value")
	if err != nil {
		t.Fatalf("resolveSecret: %v", err)
	}
	if got != "plain-value" {
		t.Errorf("resolveSecret(plain-value) = %q, want unchanged", got)
	}
}

func TestResolveSecret_ResolvesFromEnvironment(t *testing.T) {
	t.Setenv("SAGE_TEST_SECRET", "s3cr3t")
	got, err := resolveSecret("{{SAGE_TEST_SECRET}}")
	if err != nil {
		t.Fatalf("resolveSecret: %v", err)
	}
	if got != "s3cr3t" {
		t.Errorf("resolveSecret({{SAGE_TEST_SECRET}}) = %q, want s3cr3t", got)
	}
}

func TestResolveSecret_UnsetVariableIsError(t *testing.T) {
	if _, err := resolveSecret("{{SAGE_TEST_DOES_NOT_EXIST}}"); err == nil {
		t.Error("expected an error for an unresolvable secret placeholder")
	}
}

func TestResolveSecret_PartialMatchIsLiteral(t *testing.T) {
	// A value that merely contains {{...}} but isn't exactly that placeholder
	// is left as a literal; only a whole-field placeholder is resolved.
	got, err := resolveSecret("prefix-{{NAME}}-suffix")
	if err != nil {
		t.Fatalf("resolveSecret: %v", err)
	}
	if got != "prefix-{{NAME}}-suffix" {
		t.Errorf("resolveSecret(partial) = %q, want unchanged literal", got)
	}
}

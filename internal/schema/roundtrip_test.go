package schema

import "testing"

// TestRoundTrip_LoadSerializeLoad exercises spec.md's schema round-trip
// invariant: a Schema serialized back to YAML and reloaded must resolve to
// the same logical contract, even though Serialize always writes packages
// with inline `components:` catalogs rather than the original `path:` form.
func TestRoundTrip_LoadSerializeLoad(t *testing.T) {
	docs := []SourceDocument{
		{Path: "catalog.yaml", Raw: []byte(catalogYAML)},
		{Path: "package.yaml", Raw: []byte(packageYAML)},
		{Path: "sender.yaml", Raw: []byte(senderYAML)},
	}
	original, err := Load(docs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	serialized, err := Serialize(original)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(serialized) != 3 {
		t.Fatalf("Serialize produced %d documents, want 3", len(serialized))
	}

	reloaded, err := Load(serialized)
	if err != nil {
		t.Fatalf("Load(Serialize(s)): %v", err)
	}

	if len(reloaded.Catalogs) != len(original.Catalogs) {
		t.Fatalf("reloaded.Catalogs = %d, want %d", len(reloaded.Catalogs), len(original.Catalogs))
	}
	if reloaded.Catalogs[0].Name != original.Catalogs[0].Name {
		t.Errorf("catalog name = %q, want %q", reloaded.Catalogs[0].Name, original.Catalogs[0].Name)
	}
	if len(reloaded.Catalogs[0].Fields) != len(original.Catalogs[0].Fields) {
		t.Errorf("catalog field count = %d, want %d", len(reloaded.Catalogs[0].Fields), len(original.Catalogs[0].Fields))
	}

	origPkg, ok := original.PackageByName("customers_feed")
	if !ok {
		t.Fatal("original missing customers_feed")
	}
	newPkg, ok := reloaded.PackageByName("customers_feed")
	if !ok {
		t.Fatal("reloaded missing customers_feed")
	}
	if newPkg.Destination.Enabled != origPkg.Destination.Enabled {
		t.Errorf("reloaded Destination.Enabled = %v, want %v", newPkg.Destination.Enabled, origPkg.Destination.Enabled)
	}
	ref, ok := newPkg.CatalogByLogicalName("customers")
	if !ok || ref.Catalog.Name != "customers" {
		t.Errorf("reloaded package's catalog reference = %+v", ref)
	}

	origSender, ok := original.SenderByID("acme")
	if !ok {
		t.Fatal("original missing sender acme")
	}
	newSender, ok := reloaded.SenderByID("acme")
	if !ok {
		t.Fatal("reloaded missing sender acme")
	}
	if newSender.SubmissionFrequency != origSender.SubmissionFrequency {
		t.Errorf("reloaded SubmissionFrequency = %q, want %q", newSender.SubmissionFrequency, origSender.SubmissionFrequency)
	}
	if !newSender.AllowsPackage("customers_feed") {
		t.Error("reloaded sender lost its package authorization")
	}
}

package schema

import "testing"

const catalogYAML = `
kind: catalog
name: customers
fields:
  - name: id
    type: number
    required: true
`

const packageYAML = `
kind: package
name: customers_feed
catalogs:
  - logical_name: customers
    path: customers
destination:
  enabled: false
`

const senderYAML = `
kind: sender
sender_id: acme
allowed_methods: [api]
submission_frequency: daily
packages: [customers_feed]
`

func TestLoad_PackageBeforeCatalogInInputOrderStillResolves(t *testing.T) {
	docs := []SourceDocument{
		{Path: "package.yaml", Raw: []byte(packageYAML)},
		{Path: "sender.yaml", Raw: []byte(senderYAML)},
		{Path: "catalog.yaml", Raw: []byte(catalogYAML)},
	}
	s, err := Load(docs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Catalogs) != 1 || len(s.Packages) != 1 || len(s.Senders) != 1 {
		t.Fatalf("Load() = %+v", s)
	}
	pkg, ok := s.PackageByName("customers_feed")
	if !ok {
		t.Fatal("package customers_feed not resolved")
	}
	ref, ok := pkg.CatalogByLogicalName("customers")
	if !ok || ref.Catalog.Name != "customers" {
		t.Errorf("package's catalog reference did not resolve to the customers catalog: %+v", ref)
	}
}

func TestLoad_DuplicateCatalogNameIsError(t *testing.T) {
	docs := []SourceDocument{
		{Path: "a.yaml", Raw: []byte(catalogYAML)},
		{Path: "b.yaml", Raw: []byte(catalogYAML)},
	}
	if _, err := Load(docs); err == nil {
		t.Error("expected an error for duplicate catalog name")
	}
}

func TestLoad_DuplicatePackageNameIsError(t *testing.T) {
	docs := []SourceDocument{
		{Path: "cat.yaml", Raw: []byte(catalogYAML)},
		{Path: "p1.yaml", Raw: []byte(packageYAML)},
		{Path: "p2.yaml", Raw: []byte(packageYAML)},
	}
	if _, err := Load(docs); err == nil {
		t.Error("expected an error for duplicate package name")
	}
}

func TestLoad_DuplicateSenderIDIsError(t *testing.T) {
	docs := []SourceDocument{
		{Path: "cat.yaml", Raw: []byte(catalogYAML)},
		{Path: "pkg.yaml", Raw: []byte(packageYAML)},
		{Path: "s1.yaml", Raw: []byte(senderYAML)},
		{Path: "s2.yaml", Raw: []byte(senderYAML)},
	}
	if _, err := Load(docs); err == nil {
		t.Error("expected an error for duplicate sender_id")
	}
}

func TestLoad_SenderReferencingUnknownPackageIsError(t *testing.T) {
	const badSender = `
kind: sender
sender_id: acme
allowed_methods: [api]
submission_frequency: daily
packages: [no_such_package]
`
	docs := []SourceDocument{
		{Path: "cat.yaml", Raw: []byte(catalogYAML)},
		{Path: "pkg.yaml", Raw: []byte(packageYAML)},
		{Path: "sender.yaml", Raw: []byte(badSender)},
	}
	if _, err := Load(docs); err == nil {
		t.Error("expected an error for a sender referencing an unknown package")
	}
}

func TestLoad_UnknownDocumentKindIsError(t *testing.T) {
	docs := []SourceDocument{{Path: "weird.yaml", Raw: []byte("kind: widget\nname: x\n")}}
	if _, err := Load(docs); err == nil {
		t.Error("expected an error for an unrecognized document kind")
	}
}

func TestLoad_MissingKindIsError(t *testing.T) {
	docs := []SourceDocument{{Path: "weird.yaml", Raw: []byte("name: x\n")}}
	if _, err := Load(docs); err == nil {
		t.Error("expected an error for a document missing 'kind'")
	}
}

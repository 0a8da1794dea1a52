package schema

import (
	"fmt"

	"github.com/sage-ingest/sage/internal/model"
)

// Load parses a set of YAML documents (in any order) into a model.Schema.
// Catalog documents are parsed first regardless of input order so that
// package documents referencing them via `path:` always resolve, matching
// the arena-and-index model: catalogs have no forward references to
// packages or senders, so a two-pass load is sufficient — no general
// topological sort or cycle detection is needed (spec.md §9 design note).
func Load(docs []SourceDocument) (model.Schema, error) {
	var schema model.Schema
	catalogsByName := map[string]model.Catalog{}

	var packageDocs, senderDocs []SourceDocument

	for _, d := range docs {
		kind, err := sniffKind(d.Raw)
		if err != nil {
			return model.Schema{}, fmt.Errorf("%s: %w", d.Path, err)
		}
		switch kind {
		case kindCatalog:
			cat, err := parseCatalog(d)
			if err != nil {
				return model.Schema{}, err
			}
			if _, exists := catalogsByName[cat.Name]; exists {
				return model.Schema{}, fmt.Errorf("%s: duplicate catalog name %q", d.Path, cat.Name)
			}
			catalogsByName[cat.Name] = cat
			schema.Catalogs = append(schema.Catalogs, cat)
		case kindPackage:
			packageDocs = append(packageDocs, d)
		case kindSender:
			senderDocs = append(senderDocs, d)
		default:
			return model.Schema{}, fmt.Errorf("%s: unknown document kind %q", d.Path, kind)
		}
	}

	packageNames := map[string]bool{}
	for _, d := range packageDocs {
		pkg, err := parsePackage(d, catalogsByName)
		if err != nil {
			return model.Schema{}, err
		}
		if packageNames[pkg.Name] {
			return model.Schema{}, fmt.Errorf("%s: duplicate package name %q", d.Path, pkg.Name)
		}
		packageNames[pkg.Name] = true
		schema.Packages = append(schema.Packages, pkg)
	}

	senderIDs := map[string]bool{}
	for _, d := range senderDocs {
		sender, err := parseSender(d)
		if err != nil {
			return model.Schema{}, err
		}
		if senderIDs[sender.SenderID] {
			return model.Schema{}, fmt.Errorf("%s: duplicate sender_id %q", d.Path, sender.SenderID)
		}
		for _, pkgName := range sender.Packages {
			if !packageNames[pkgName] {
				return model.Schema{}, fmt.Errorf("%s: sender %q references unknown package %q", d.Path, sender.SenderID, pkgName)
			}
		}
		senderIDs[sender.SenderID] = true
		schema.Senders = append(schema.Senders, sender)
	}

	return schema, nil
}

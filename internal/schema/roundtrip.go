package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sage-ingest/sage/internal/model"
)

// Serialize renders a model.Schema back to its three document classes. It
// is the inverse of Load, used by the Schema Loader's round-trip test
// (Load(Serialize(s)) must reproduce s) and by any tooling that edits a
// Schema in memory and needs to persist it back to YAML.
//
// Serialized packages always carry inline `components:` catalogs rather
// than `path:` references, since a Package's in-memory CatalogRef no longer
// distinguishes how the catalog was originally attached (spec.md §9 design
// note: path/components are equivalent on load, so nothing is lost writing
// every package back out in the components form).
func Serialize(s model.Schema) ([]SourceDocument, error) {
	var docs []SourceDocument

	for _, cat := range s.Catalogs {
		raw, err := yaml.Marshal(catalogToDoc(cat))
		if err != nil {
			return nil, fmt.Errorf("serializing catalog %q: %w", cat.Name, err)
		}
		docs = append(docs, SourceDocument{Path: "catalog:" + cat.Name, Raw: raw})
	}

	for _, pkg := range s.Packages {
		raw, err := yaml.Marshal(packageToDoc(pkg))
		if err != nil {
			return nil, fmt.Errorf("serializing package %q: %w", pkg.Name, err)
		}
		docs = append(docs, SourceDocument{Path: "package:" + pkg.Name, Raw: raw})
	}

	for _, sender := range s.Senders {
		raw, err := yaml.Marshal(senderToDoc(sender))
		if err != nil {
			return nil, fmt.Errorf("serializing sender %q: %w", sender.SenderID, err)
		}
		docs = append(docs, SourceDocument{Path: "sender:" + sender.SenderID, Raw: raw})
	}

	return docs, nil
}

func catalogToDoc(cat model.Catalog) catalogDoc {
	doc := catalogDoc{
		Kind:        kindCatalog,
		Name:        cat.Name,
		Description: cat.Description,
	}
	for _, f := range cat.Fields {
		doc.Fields = append(doc.Fields, fieldSpecToDoc(f))
	}
	if cat.RowValidation != nil {
		d := rowCheckToDoc(*cat.RowValidation)
		doc.RowValidation = &d
	}
	if cat.CatalogValidation != nil {
		d := rowCheckToDoc(*cat.CatalogValidation)
		doc.CatalogValidation = &d
	}
	if cat.FileFormat != nil {
		d := fileFormatToDoc(*cat.FileFormat)
		doc.FileFormat = &d
	}
	return doc
}

func fieldSpecToDoc(f model.FieldSpec) fieldSpecDoc {
	doc := fieldSpecDoc{
		Name:          f.Name,
		Type:          string(f.Type),
		Length:        f.Length,
		Decimals:      f.Decimals,
		Required:      f.Required,
		Unique:        f.Unique,
		AllowedValues: f.AllowedValues,
	}
	for _, r := range f.Rules {
		doc.Rules = append(doc.Rules, fieldRuleDoc{
			Name:       r.Name,
			Expression: r.Expression,
			Message:    r.Message,
			Severity:   string(r.Severity),
			Bitwise:    r.Bitwise,
		})
	}
	return doc
}

func rowCheckToDoc(r model.RowCheck) rowCheckDoc {
	return rowCheckDoc{
		Expression:  r.Expression,
		Description: r.Description,
		Message:     r.Message,
		Severity:    string(r.Severity),
		Bitwise:     r.Bitwise,
	}
}

func fileFormatToDoc(f model.FileFormat) fileFormatDoc {
	sep := ""
	if f.Separator != 0 {
		sep = string(f.Separator)
	}
	return fileFormatDoc{
		Archive:   string(f.Archive),
		Pattern:   f.Pattern,
		Encoding:  f.Encoding,
		Separator: sep,
	}
}

func packageToDoc(pkg model.Package) packageDoc {
	doc := packageDoc{
		Kind:        kindPackage,
		Name:        pkg.Name,
		Description: pkg.Description,
		Mandatory:   pkg.Mandatory,
	}
	ff := fileFormatToDoc(pkg.FileFormat)
	doc.FileFormat = &ff

	for _, ref := range pkg.Catalogs {
		cd := catalogToDoc(ref.Catalog)
		refDoc := catalogRefDoc{
			LogicalName: ref.LogicalName,
			File:        ref.FileInsideArchive,
			Components:  &cd,
		}
		if ref.FormatOverride != nil {
			fd := fileFormatToDoc(*ref.FormatOverride)
			refDoc.FileFormat = &fd
		}
		doc.Catalogs = append(doc.Catalogs, refDoc)
	}

	for _, cr := range pkg.CrossRules {
		doc.CrossRules = append(doc.CrossRules, crossRuleDoc{
			Name:       cr.Name,
			Expression: cr.Expression,
			Severity:   string(cr.Severity),
			Message:    cr.Message,
			Bitwise:    cr.Bitwise,
		})
	}

	doc.Destination = destinationDoc{
		Enabled:     pkg.Destination.Enabled,
		TargetTable: pkg.Destination.TargetTable,
		Connection: connectionDoc{
			Driver:   string(pkg.Destination.Connection.Driver),
			Host:     pkg.Destination.Connection.Host,
			Port:     pkg.Destination.Connection.Port,
			User:     pkg.Destination.Connection.User,
			Password: pkg.Destination.Connection.Password.Raw,
			Database: pkg.Destination.Connection.Database,
			EnvKey:   pkg.Destination.Connection.EnvKey,
		},
		InsertionMethod: string(pkg.Destination.InsertionMethod),
	}
	if pkg.Destination.PreValidation != nil {
		doc.Destination.PreValidation = &preValidationDoc{
			Endpoint: pkg.Destination.PreValidation.Endpoint,
			Method:   pkg.Destination.PreValidation.Method,
			Payload:  pkg.Destination.PreValidation.Payload,
		}
	}
	return doc
}

func senderToDoc(sender model.Sender) senderDoc {
	doc := senderDoc{
		Kind:                kindSender,
		SenderID:            sender.SenderID,
		ResponsiblePerson:   sender.ResponsiblePerson,
		SubmissionFrequency: string(sender.SubmissionFrequency),
		Deadline:            sender.Deadline,
		Packages:            sender.Packages,
		ChannelConfig:       map[string]channelConfigDoc{},
	}
	for _, m := range sender.AllowedMethods {
		doc.AllowedMethods = append(doc.AllowedMethods, string(m))
	}
	for ch, cfg := range sender.ChannelConfig {
		doc.ChannelConfig[string(ch)] = channelConfigDoc{
			APIKey:         cfg.APIKey,
			AllowedSenders: cfg.AllowedSenders,
			AllowedHosts:   cfg.AllowedHosts,
		}
	}
	return doc
}

package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sage-ingest/sage/internal/model"
)

type fieldRuleDoc struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
	Message    string `yaml:"message"`
	Severity   string `yaml:"severity"`
	Bitwise    bool   `yaml:"bitwise"`
}

type fieldSpecDoc struct {
	Name          string         `yaml:"name"`
	Type          string         `yaml:"type"`
	Length        int            `yaml:"length"`
	Decimals      int            `yaml:"decimals"`
	Required      bool           `yaml:"required"`
	Unique        bool           `yaml:"unique"`
	AllowedValues []string       `yaml:"allowed_values"`
	Rules         []fieldRuleDoc `yaml:"rules"`
}

type rowCheckDoc struct {
	Expression  string `yaml:"expression"`
	Description string `yaml:"description"`
	Message     string `yaml:"message"`
	Severity    string `yaml:"severity"`
	Bitwise     bool   `yaml:"bitwise"`
}

type fileFormatDoc struct {
	Archive   string `yaml:"archive"`
	Pattern   string `yaml:"pattern"`
	Encoding  string `yaml:"encoding"`
	Separator string `yaml:"separator"`
}

type catalogDoc struct {
	Kind              docKind        `yaml:"kind"`
	Name              string         `yaml:"name"`
	Description       string         `yaml:"description"`
	Fields            []fieldSpecDoc `yaml:"fields"`
	RowValidation     *rowCheckDoc   `yaml:"row_validation"`
	CatalogValidation *rowCheckDoc   `yaml:"catalog_validation"`
	FileFormat        *fileFormatDoc `yaml:"file_format"`
}

func parseCatalog(src SourceDocument) (model.Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(src.Raw, &doc); err != nil {
		return model.Catalog{}, fmt.Errorf("%s: parsing catalog: %w", src.Path, err)
	}
	if doc.Name == "" {
		return model.Catalog{}, fmt.Errorf("%s: catalog document is missing 'name'", src.Path)
	}

	cat := model.Catalog{
		Name:        doc.Name,
		Description: doc.Description,
		SourcePath:  src.Path,
	}
	for _, f := range doc.Fields {
		cat.Fields = append(cat.Fields, toFieldSpec(f))
	}
	if doc.RowValidation != nil {
		rc := toRowCheck(*doc.RowValidation)
		cat.RowValidation = &rc
	}
	if doc.CatalogValidation != nil {
		rc := toRowCheck(*doc.CatalogValidation)
		cat.CatalogValidation = &rc
	}
	if doc.FileFormat != nil {
		ff := toFileFormat(*doc.FileFormat)
		cat.FileFormat = &ff
	}
	return cat, nil
}

func toFieldSpec(f fieldSpecDoc) model.FieldSpec {
	spec := model.FieldSpec{
		Name:          f.Name,
		Type:          model.FieldType(f.Type),
		Length:        f.Length,
		Decimals:      f.Decimals,
		Required:      f.Required,
		Unique:        f.Unique,
		AllowedValues: f.AllowedValues,
	}
	for _, r := range f.Rules {
		spec.Rules = append(spec.Rules, model.FieldRule{
			Name:       r.Name,
			Expression: r.Expression,
			Message:    r.Message,
			Severity:   severityOrDefault(r.Severity),
			Bitwise:    r.Bitwise,
		})
	}
	return spec
}

func toRowCheck(d rowCheckDoc) model.RowCheck {
	return model.RowCheck{
		Expression:  d.Expression,
		Description: d.Description,
		Message:     d.Message,
		Severity:    severityOrDefault(d.Severity),
		Bitwise:     d.Bitwise,
	}
}

func toFileFormat(d fileFormatDoc) model.FileFormat {
	sep := rune(0)
	if len(d.Separator) > 0 {
		sep = []rune(d.Separator)[0]
	}
	return model.FileFormat{
		Archive:   model.ArchiveFormat(d.Archive),
		Pattern:   d.Pattern,
		Encoding:  d.Encoding,
		Separator: sep,
	}
}

func severityOrDefault(s string) model.Severity {
	if s == "" {
		return model.SeverityError
	}
	return model.Severity(s)
}

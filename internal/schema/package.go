package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sage-ingest/sage/internal/model"
)

type catalogRefDoc struct {
	LogicalName string `yaml:"logical_name"`
	File        string `yaml:"file"`
	// Path references an already-declared catalog by name. Components
	// inline-defines one. The two are equivalent ways of attaching a
	// catalog to a package (spec.md §9 design notes): Path is shorthand for
	// a Components block that just repeats that catalog's field list, so
	// both are resolved to the same model.Catalog shape here rather than
	// carried as distinct cases downstream.
	Path       string          `yaml:"path"`
	Components *catalogDoc     `yaml:"components"`
	FileFormat *fileFormatDoc  `yaml:"file_format"`
}

type crossRuleDoc struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
	Severity   string `yaml:"severity"`
	Message    string `yaml:"message"`
	Bitwise    bool   `yaml:"bitwise"`
}

type connectionDoc struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	EnvKey   string `yaml:"env_key"`
}

type preValidationDoc struct {
	Endpoint string         `yaml:"endpoint"`
	Method   string         `yaml:"method"`
	Payload  map[string]any `yaml:"payload"`
}

type destinationDoc struct {
	Enabled         bool              `yaml:"enabled"`
	Connection      connectionDoc     `yaml:"connection"`
	TargetTable     string            `yaml:"target_table"`
	PreValidation   *preValidationDoc `yaml:"pre_validation"`
	InsertionMethod string            `yaml:"insertion_method"`
}

type packageDoc struct {
	Kind        docKind         `yaml:"kind"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Mandatory   bool            `yaml:"mandatory"`
	FileFormat  *fileFormatDoc  `yaml:"file_format"`
	Catalogs    []catalogRefDoc `yaml:"catalogs"`
	CrossRules  []crossRuleDoc  `yaml:"cross_rules"`
	Destination destinationDoc  `yaml:"destination"`
}

// parsePackage resolves a package document against the catalogs already
// collected by the loader (by name, for `path:` references); `components:`
// catalogs are built inline and never need a prior declaration.
func parsePackage(src SourceDocument, catalogsByName map[string]model.Catalog) (model.Package, error) {
	var doc packageDoc
	if err := yaml.Unmarshal(src.Raw, &doc); err != nil {
		return model.Package{}, fmt.Errorf("%s: parsing package: %w", src.Path, err)
	}
	if doc.Name == "" {
		return model.Package{}, fmt.Errorf("%s: package document is missing 'name'", src.Path)
	}

	pkg := model.Package{
		Name:        doc.Name,
		Description: doc.Description,
		Mandatory:   doc.Mandatory,
		SourcePath:  src.Path,
	}
	if doc.FileFormat != nil {
		pkg.FileFormat = toFileFormat(*doc.FileFormat)
	}

	for _, cr := range doc.Catalogs {
		ref, err := resolveCatalogRef(src.Path, cr, catalogsByName)
		if err != nil {
			return model.Package{}, err
		}
		pkg.Catalogs = append(pkg.Catalogs, ref)
	}

	for _, cr := range doc.CrossRules {
		pkg.CrossRules = append(pkg.CrossRules, model.CrossRule{
			Name:       cr.Name,
			Expression: cr.Expression,
			Severity:   severityOrDefault(cr.Severity),
			Message:    cr.Message,
			Bitwise:    cr.Bitwise,
		})
	}

	dest, err := toDestination(doc.Destination)
	if err != nil {
		return model.Package{}, fmt.Errorf("%s: %w", src.Path, err)
	}
	pkg.Destination = dest
	return pkg, nil
}

func resolveCatalogRef(docPath string, cr catalogRefDoc, catalogsByName map[string]model.Catalog) (model.CatalogRef, error) {
	if cr.LogicalName == "" {
		return model.CatalogRef{}, fmt.Errorf("%s: catalog reference is missing 'logical_name'", docPath)
	}

	ref := model.CatalogRef{
		LogicalName:       cr.LogicalName,
		FileInsideArchive: cr.File,
		CatalogReference:  cr.Path,
	}

	switch {
	case cr.Components != nil:
		inline, err := parseCatalog(SourceDocument{Path: docPath + "#" + cr.LogicalName, Raw: mustMarshal(cr.Components)})
		if err != nil {
			return model.CatalogRef{}, err
		}
		ref.Catalog = inline
	case cr.Path != "":
		cat, ok := catalogsByName[cr.Path]
		if !ok {
			return model.CatalogRef{}, fmt.Errorf("%s: catalog reference %q: no catalog named %q was loaded", docPath, cr.LogicalName, cr.Path)
		}
		ref.Catalog = cat
	default:
		return model.CatalogRef{}, fmt.Errorf("%s: catalog reference %q has neither 'path' nor 'components'", docPath, cr.LogicalName)
	}

	if cr.FileFormat != nil {
		ff := toFileFormat(*cr.FileFormat)
		ref.FormatOverride = &ff
	}
	return ref, nil
}

// mustMarshal round-trips an already-decoded components block back to YAML
// so it can go through the same parseCatalog path as a top-level catalog
// document; the component block's structure is identical to catalogDoc
// minus the `kind`/`name` envelope fields, which parseCatalog tolerates
// being empty/overridden by the caller.
func mustMarshal(c *catalogDoc) []byte {
	c.Kind = kindCatalog
	if c.Name == "" {
		c.Name = "<inline>"
	}
	out, err := yaml.Marshal(c)
	if err != nil {
		// components was already successfully unmarshalled from valid YAML;
		// re-marshalling it cannot fail.
		panic(fmt.Sprintf("re-marshalling inline catalog components: %v", err))
	}
	return out
}

func toDestination(d destinationDoc) (model.Destination, error) {
	method := model.InsertionMethod(d.InsertionMethod)
	if method == "" {
		method = model.InsertionInsert
	}
	resolved, err := resolveSecret(d.Connection.Password)
	if err != nil {
		return model.Destination{}, fmt.Errorf("connection password: %w", err)
	}
	dest := model.Destination{
		Enabled:         d.Enabled,
		TargetTable:     d.TargetTable,
		InsertionMethod: method,
		Connection: model.Connection{
			Driver:   model.Driver(d.Connection.Driver),
			Host:     d.Connection.Host,
			Port:     d.Connection.Port,
			User:     d.Connection.User,
			Database: d.Connection.Database,
			EnvKey:   d.Connection.EnvKey,
			Password: model.ConnectionSecret{Raw: d.Connection.Password, Resolved: resolved},
		},
	}
	if d.PreValidation != nil {
		dest.PreValidation = &model.PreValidation{
			Endpoint: d.PreValidation.Endpoint,
			Method:   d.PreValidation.Method,
			Payload:  d.PreValidation.Payload,
		}
	}
	return dest, nil
}

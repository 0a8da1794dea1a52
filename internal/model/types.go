// Package model holds the long-lived contract types SAGE validates submissions
// against: Catalog, Package, Sender, and the Schema that ties them together.
//
// Catalog/Package/Sender values are mutated only through internal/schema's
// Loader, outside the hot validation path. Submission and Diagnostic are
// per-run values; they do not outlive a single call to runner.Controller.Process.
package model

// FieldType is the declared data type of a catalog field.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
	FieldEnum   FieldType = "enum"
)

// Severity is one of the three Finding severities. This is the entire error
// taxonomy; every recoverable condition collapses onto this axis (spec §7).
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Scope identifies what part of a submission a Finding describes.
type Scope string

const (
	ScopeField Scope = "field"
	ScopeRow   Scope = "row"
	ScopeCatalog Scope = "catalog"
	ScopePackage Scope = "package"
	ScopeFile    Scope = "file"
	ScopeAuth    Scope = "authorization"
)

// InsertionMethod is the Sink's write semantics for a package's destination.
type InsertionMethod string

const (
	InsertionInsert  InsertionMethod = "insert"
	InsertionUpsert  InsertionMethod = "upsert"
	InsertionReplace InsertionMethod = "replace"
)

// Driver identifies the relational backend a Destination connects to.
type Driver string

const (
	DriverPostgres  Driver = "postgresql"
	DriverMySQL     Driver = "mysql"
	DriverSQLServer Driver = "sqlserver"
	DriverOracle    Driver = "oracle"
)

// ArchiveFormat is the declared container format for a package's submitted blob.
type ArchiveFormat string

const (
	ArchiveCSV  ArchiveFormat = "CSV"
	ArchiveXLSX ArchiveFormat = "XLSX"
	ArchiveJSON ArchiveFormat = "JSON"
	ArchiveXML  ArchiveFormat = "XML"
	ArchiveZIP  ArchiveFormat = "ZIP"
)

// Channel is an intake method a Sender may be authorized to submit through.
type Channel string

const (
	ChannelSFTP         Channel = "sftp"
	ChannelEmail        Channel = "email"
	ChannelAPI          Channel = "api"
	ChannelFilesystem   Channel = "filesystem"
	ChannelDirectUpload Channel = "direct_upload"
)

// Frequency is how often a Sender is expected to submit a given package.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// FieldRule attaches an extra predicate to a single field. Multiple rules may
// attach to the same field name; all of them apply, in declaration order.
type FieldRule struct {
	Name        string
	Expression  string
	Message     string
	Severity    Severity
	Bitwise     bool // see SPEC_FULL.md §9(a): per-expression &/| semantics
}

// FieldSpec is the validation contract for a single catalog column.
type FieldSpec struct {
	Name         string
	Type         FieldType
	Length       int  // max chars for FieldText; 0 = unset. Not applied to other types
	Decimals     int  // declared decimal places for FieldNumber; loaded but not checked by the Validator
	Required     bool
	Unique       bool
	AllowedValues []string // FieldEnum only
	Rules        []FieldRule
}

// RowCheck is a row- or catalog-scoped validation expression with its own
// severity and message, attached directly to a Catalog.
type RowCheck struct {
	Expression  string
	Description string
	Message     string
	Severity    Severity
	Bitwise     bool
}

// FileFormat describes how a catalog's (or package's) file is named and
// decoded: the filename pattern with {sender_id}/{date} placeholders and,
// for packages, the archive container format.
type FileFormat struct {
	Archive  ArchiveFormat
	Pattern  string
	Encoding string // default UTF-8
	Separator rune  // default ','
}

// Catalog is the shape of one tabular dataset: an ordered field list plus
// row- and catalog-scoped validation.
type Catalog struct {
	Name        string
	Description string
	Fields      []FieldSpec
	RowValidation      *RowCheck
	CatalogValidation  *RowCheck
	FileFormat  *FileFormat

	// SourcePath is the document this catalog was loaded from; a catalog
	// declared inline in a package carries "<package document>#<logical name>".
	SourcePath string
}

// FieldByName returns the catalog's FieldSpec with the given name, or ok=false.
func (c *Catalog) FieldByName(name string) (FieldSpec, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// CatalogRef is one entry in a Package's ordered catalog list: a logical name
// bound to a Catalog (inline or by reference), plus how to find/decode its
// file inside the package's archive.
type CatalogRef struct {
	LogicalName       string
	FileInsideArchive string
	CatalogReference  string // path or inline marker, resolved by the Loader
	Catalog           Catalog
	FormatOverride    *FileFormat
}

// CrossRule is a predicate over multiple catalogs' tables, evaluated after
// every per-catalog check in the package has run.
type CrossRule struct {
	Name       string
	Expression string
	Severity   Severity
	Message    string
	Bitwise    bool
}

// ConnectionSecret is a `{{NAME}}`-style placeholder resolved by the Loader
// against an external secrets provider (environment variables, by convention).
type ConnectionSecret struct {
	Raw      string // the literal "{{NAME}}" form, if used
	Resolved string
}

// Connection describes how the Sink reaches a relational backend.
type Connection struct {
	Driver   Driver
	Host     string
	Port     int
	User     string
	Password ConnectionSecret
	Database string
	EnvKey   string // loaded from the schema but not read by the Sink, which always builds its DSN from Host/Port/User/Password/Database
}

// PreValidation is an opaque HTTP check the Sink runs before committing.
type PreValidation struct {
	Endpoint string
	Method   string
	Payload  map[string]any // opaque; sent as the JSON body with a run_id key added (SPEC_FULL.md §9c)
}

// Destination is where a Package's rows are written.
type Destination struct {
	Enabled         bool
	Connection      Connection
	TargetTable     string
	PreValidation   *PreValidation
	InsertionMethod InsertionMethod
}

// Package is a bundle of catalogs that must be validated together.
type Package struct {
	Name        string
	Description string
	Mandatory   bool
	FileFormat  FileFormat
	Catalogs    []CatalogRef
	CrossRules  []CrossRule
	Destination Destination

	SourcePath string
}

// CatalogByLogicalName returns the CatalogRef with the given logical name.
func (p *Package) CatalogByLogicalName(name string) (CatalogRef, bool) {
	for _, c := range p.Catalogs {
		if c.LogicalName == name {
			return c, true
		}
	}
	return CatalogRef{}, false
}

// ChannelConfig holds per-channel submission configuration for a Sender.
type ChannelConfig struct {
	// API
	APIKey string
	// Email
	AllowedSenders []string
	// SFTP
	AllowedHosts []string
}

// Sender is an authorized producer of submissions.
type Sender struct {
	SenderID            string
	ResponsiblePerson   string
	AllowedMethods      []Channel
	ChannelConfig       map[Channel]ChannelConfig
	SubmissionFrequency Frequency
	Deadline            string // "HH:MM" local time
	Packages            []string // package names this sender may submit

	SourcePath string
}

// AllowsPackage reports whether the sender is authorized to submit pkgName.
func (s *Sender) AllowsPackage(pkgName string) bool {
	for _, p := range s.Packages {
		if p == pkgName {
			return true
		}
	}
	return false
}

// AllowsChannel reports whether ch is in the sender's allowed_methods.
func (s *Sender) AllowsChannel(ch Channel) bool {
	for _, m := range s.AllowedMethods {
		if m == ch {
			return true
		}
	}
	return false
}

package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sage-ingest/sage/internal/model"
)

// LoadDir recursively reads every *.yaml/*.yml file under dir into
// SourceDocuments and runs them through Load. No library in the retrieved
// example pack offers a directory-walking helper (no afero, no fsnotify) —
// this is plain filepath.WalkDir, justified in DESIGN.md as one of the few
// stdlib-only pieces of this package.
func LoadDir(dir string) (SchemaLoadResult, error) {
	var docs []SourceDocument
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		docs = append(docs, SourceDocument{Path: path, Raw: raw})
		return nil
	})
	if err != nil {
		return SchemaLoadResult{}, fmt.Errorf("scanning schema directory %q: %w", dir, err)
	}

	s, err := Load(docs)
	if err != nil {
		return SchemaLoadResult{}, err
	}
	return SchemaLoadResult{Schema: s, DocumentCount: len(docs)}, nil
}

// SchemaLoadResult reports what LoadDir found, for CLI/startup logging.
type SchemaLoadResult struct {
	Schema        model.Schema
	DocumentCount int
}

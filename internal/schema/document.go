// Package schema loads SAGE's three YAML document classes — catalogs,
// packages, and senders — into the flat, arena-and-index model.Schema
// (model.Schema §9 design note: a cyclic graph of pointers is harder to
// reason about and to round-trip than flat slices plus name lookups).
package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// docKind is the tagged-variant discriminator every SAGE document carries
// under its `kind` key, resolved before the document body is unmarshalled
// into its concrete shape (spec.md §9 design note).
type docKind string

const (
	kindCatalog docKind = "catalog"
	kindPackage docKind = "package"
	kindSender  docKind = "sender"
)

type envelope struct {
	Kind docKind `yaml:"kind"`
}

// sniffKind reads just the `kind` field of a document without committing to
// a concrete unmarshal target.
func sniffKind(raw []byte) (docKind, error) {
	var env envelope
	if err := yaml.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("parsing document kind: %w", err)
	}
	if env.Kind == "" {
		return "", fmt.Errorf("document is missing required 'kind' field")
	}
	return env.Kind, nil
}

// SourceDocument is one YAML file handed to Load, tagged with the path it
// came from so Findings and secret resolution can report it.
type SourceDocument struct {
	Path string
	Raw  []byte
}

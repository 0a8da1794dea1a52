package reader

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/sage-ingest/sage/internal/model"
	"github.com/sage-ingest/sage/internal/table"
)

// ReadPackage decodes a submission's raw bytes into one Table per catalog
// the package declares. When the package's file format is a ZIP archive,
// each catalog's file_inside_archive pattern (with {sender_id}/{date}
// substitution) is matched against the archive's member names; otherwise
// the package must declare exactly one catalog and blob is that catalog's
// file directly.
func ReadPackage(blob []byte, pkg model.Package, senderID string) (table.Set, error) {
	if pkg.FileFormat.Archive == model.ArchiveZIP {
		return readZippedPackage(blob, pkg, senderID)
	}

	if len(pkg.Catalogs) != 1 {
		return nil, fmt.Errorf("package %q: non-archive file format requires exactly one catalog, has %d", pkg.Name, len(pkg.Catalogs))
	}
	ref := pkg.Catalogs[0]
	tbl, err := ReadFormat(blob, resolveFormat(ref, pkg))
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", ref.LogicalName, err)
	}
	return table.Set{ref.LogicalName: tbl}, nil
}

func readZippedPackage(blob []byte, pkg model.Package, senderID string) (table.Set, error) {
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, fmt.Errorf("opening package archive: %w", err)
	}

	result := table.Set{}
	for _, ref := range pkg.Catalogs {
		member, err := matchArchiveMember(zr, ref.FileInsideArchive, senderID)
		if err != nil {
			return nil, fmt.Errorf("catalog %q: %w", ref.LogicalName, err)
		}

		data, err := readZipMember(member)
		if err != nil {
			return nil, fmt.Errorf("catalog %q: reading %q: %w", ref.LogicalName, member.Name, err)
		}

		tbl, err := ReadFormat(data, resolveFormat(ref, pkg))
		if err != nil {
			return nil, fmt.Errorf("catalog %q: decoding %q: %w", ref.LogicalName, member.Name, err)
		}
		result[ref.LogicalName] = tbl
	}
	return result, nil
}

func matchArchiveMember(zr *zip.Reader, pattern, senderID string) (*zip.File, error) {
	if pattern == "" {
		return nil, fmt.Errorf("no file_inside_archive pattern declared")
	}
	re, err := CompilePattern(pattern, senderID)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	var matches []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if re.MatchString(f.Name) {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no file in archive matches pattern %q", pattern)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%d files in archive match pattern %q, expected exactly one", len(matches), pattern)
	}
}

func readZipMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// resolveFormat picks the effective file_format for one catalog reference:
// the reference's own override, else the catalog's own declared format,
// else the enclosing package's default.
func resolveFormat(ref model.CatalogRef, pkg model.Package) model.FileFormat {
	if ref.FormatOverride != nil {
		return *ref.FormatOverride
	}
	if ref.Catalog.FileFormat != nil {
		return *ref.Catalog.FileFormat
	}
	return pkg.FileFormat
}

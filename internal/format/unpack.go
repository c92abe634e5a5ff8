package format

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

var mappingExtensions = map[string]bool{
	".tiny":     true,
	".tsrg":     true,
	".srg":      true,
	".csrg":     true,
	".rgs":      true,
	".txt":      true,
	".json":     true,
	".csv":      true,
	".mappings": true,
	".umt":      true,
}

// Unpack expands zip containers (jar, zip) into the mapping files they hold
// and decompresses gzip files. Other files are returned as-is. Entries are
// sorted by name so the result does not depend on archive order.
func Unpack(f File) ([]File, error) {
	switch {
	case bytes.HasPrefix(f.Data, []byte("PK\x03\x04")):
		return unzip(f)
	case bytes.HasPrefix(f.Data, []byte{0x1f, 0x8b}):
		reader, err := gzip.NewReader(bytes.NewReader(f.Data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}

		return Unpack(File{Name: strings.TrimSuffix(f.Name, ".gz"), Data: data})
	default:
		return []File{f}, nil
	}
}

func unzip(f File) ([]File, error) {
	archive, err := zip.NewReader(bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return nil, fmt.Errorf("%s: open archive: %w", f.Name, err)
	}

	var out []File

	for _, entry := range archive.File {
		name := entry.Name
		if entry.FileInfo().IsDir() || strings.HasPrefix(name, "META-INF/") {
			continue
		}

		if !mappingExtensions[strings.ToLower(path.Ext(name))] {
			continue
		}

		data, err := readEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("%s!%s: %w", f.Name, name, err)
		}

		out = append(out, File{Name: f.Name + "!" + name, Data: data})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

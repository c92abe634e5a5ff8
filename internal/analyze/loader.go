package analyze

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/option"
)

// Analyzer loads classes into a ClassGraph.
type Analyzer struct {
	graph *ClassGraph
}

// NewAnalyzer creates a new Analyzer with an empty graph.
func NewAnalyzer() *Analyzer {
	return &Analyzer{graph: NewClassGraph()}
}

// Graph returns the graph built so far.
func (a *Analyzer) Graph() *ClassGraph {
	return a.graph
}

// LoadClass parses a single class file.
func (a *Analyzer) LoadClass(source string, data []byte) error {
	c, err := ParseClass(data)
	if err != nil {
		if cfe, ok := err.(*ClassFormatError); ok {
			cfe.Source = source
		}

		return err
	}

	// module-info and package-info carry no hierarchy worth indexing.
	if isInfoClass(c.Name) {
		return nil
	}

	a.graph.Add(c)

	return nil
}

// LoadFiles loads class files and jars by name. Other files are ignored.
func (a *Analyzer) LoadFiles(files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if err := a.load(name, files[name]); err != nil {
			return err
		}
	}

	return nil
}

// LoadJar loads every class entry of a jar (or any zip archive).
func (a *Analyzer) LoadJar(source string, data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("failed to open jar %s: %w", source, err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".class") {
			continue
		}

		// Versioned entries shadow the base class; keep the base view.
		if strings.HasPrefix(f.Name, "META-INF/") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s!%s: %w", source, f.Name, err)
		}

		body, err := io.ReadAll(rc)
		rc.Close()

		if err != nil {
			return fmt.Errorf("failed to read %s!%s: %w", source, f.Name, err)
		}

		if err := a.LoadClass(source+"!"+f.Name, body); err != nil {
			return err
		}
	}

	return nil
}

// LoadDir loads every class file and jar found under URL, recursively.
// Any afs location works: local paths, file:// and mem:// URLs.
func (a *Analyzer) LoadDir(ctx context.Context, fs afs.Service, URL string) error {
	if fs == nil {
		fs = afs.New()
	}

	objects, err := fs.List(ctx, URL, option.NewRecursive(true))
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", URL, err)
	}

	for _, object := range objects {
		if object.IsDir() || !isClassSource(object.Name()) {
			continue
		}

		data, err := fs.Download(ctx, object)
		if err != nil {
			return fmt.Errorf("failed to download %s: %w", object.URL(), err)
		}

		if err := a.load(object.URL(), data); err != nil {
			return err
		}
	}

	return nil
}

func (a *Analyzer) load(name string, data []byte) error {
	switch path.Ext(name) {
	case ".class":
		return a.LoadClass(name, data)
	case ".jar", ".zip":
		return a.LoadJar(name, data)
	default:
		return nil
	}
}

func isClassSource(name string) bool {
	switch path.Ext(name) {
	case ".class", ".jar", ".zip":
		return true
	}

	return false
}

func isInfoClass(name string) bool {
	return name == "module-info" || strings.HasSuffix(name, "/package-info") || name == "package-info"
}

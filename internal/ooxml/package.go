// Package ooxml gives the parser and the revision engine low-level access
// to the ZIP-packaged XML parts of a .docx container, plus a small element
// builder so revision marks can be tested against tree shape instead of
// byte-exact output.
package ooxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/antchfx/xmlquery"
)

// Well-known part names.
const (
	DocumentPart = "word/document.xml"
	SettingsPart = "word/settings.xml"
)

// Package is an opened container: every entry held in memory, in archive
// order, with XML parts editable before Save.
type Package struct {
	order []string
	parts map[string][]byte
}

// OpenPackage reads every entry of the container at path.
func OpenPackage(path string) (*Package, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	defer zr.Close()

	pkg := &Package{parts: make(map[string][]byte, len(zr.File))}
	for _, zf := range zr.File {
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", zf.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", zf.Name, err)
		}
		pkg.order = append(pkg.order, zf.Name)
		pkg.parts[zf.Name] = data
	}
	return pkg, nil
}

// Part returns the raw bytes of a named part.
func (p *Package) Part(name string) ([]byte, bool) {
	data, ok := p.parts[name]
	return data, ok
}

// SetPart replaces (or adds) a part's bytes.
func (p *Package) SetPart(name string, data []byte) {
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.parts[name] = data
}

// ParsePart parses a named XML part into a document tree.
func (p *Package) ParsePart(name string) (*xmlquery.Node, error) {
	data, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("container has no part %s", name)
	}
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse part %s: %w", name, err)
	}
	return doc, nil
}

// SavePart serializes a document tree back into the named part.
func (p *Package) SavePart(name string, doc *xmlquery.Node) {
	p.SetPart(name, []byte(doc.OutputXML(true)))
}

// Save writes the whole container to path, preserving entry order.
func (p *Package) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create container: %w", err)
	}
	zw := zip.NewWriter(f)
	for _, name := range p.order {
		w, err := zw.Create(name)
		if err != nil {
			f.Close()
			return fmt.Errorf("create part %s: %w", name, err)
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			f.Close()
			return fmt.Errorf("write part %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finish container: %w", err)
	}
	return f.Close()
}

// ReadPartFromFile parses one XML part straight out of a container on disk,
// for read-only callers that do not need the whole package.
func ReadPartFromFile(path, name string) (*xmlquery.Node, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.Name != name {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", name, err)
		}
		defer rc.Close()
		doc, err := xmlquery.Parse(rc)
		if err != nil {
			return nil, fmt.Errorf("parse part %s: %w", name, err)
		}
		return doc, nil
	}
	return nil, fmt.Errorf("container has no part %s", name)
}

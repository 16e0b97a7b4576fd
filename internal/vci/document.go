// Package vci reads WIDAR correlator configuration (VCI) documents.
//
// A Document is parsed once into plain Baseband and Subband values with
// every derived quantity computed up front. Subbands carry a copy of the
// baseband fields they need rather than a pointer back into the XML tree,
// so records can be handed to other goroutines or serialized freely.
package vci

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"

	"github.com/beevik/etree"

	"github.com/leapstack-labs/widarcfg/pkg/core"
)

var scanSuffixPattern = regexp.MustCompile(`.+?_scan(\d+)`)

// Document is one parsed VCI file.
type Document struct {
	Path     string
	ScanID   int
	ConfigID string
	// ScanNum is the first scan this configuration applies to.
	ScanNum   int
	Basebands []Baseband

	tree *etree.Document
}

// ParseFile reads and parses the VCI document at path.
func ParseFile(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat vci file: %w", err)
	}

	tree := etree.NewDocument()
	if err := tree.ReadFromFile(path); err != nil {
		return nil, core.NewParseError(path, "vci", "invalid XML: %v", err)
	}
	return fromTree(path, tree)
}

// Parse parses a VCI document held in memory. name is used in errors.
func Parse(name string, data []byte) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, core.NewParseError(name, "vci", "invalid XML: %v", err)
	}
	return fromTree(name, tree)
}

func fromTree(path string, tree *etree.Document) (*Document, error) {
	root := tree.Root()
	if root == nil {
		return nil, core.NewParseError(path, "vci", "document has no root element")
	}
	subArray := root.SelectElement("subArray")
	if subArray == nil {
		return nil, core.NewParseError(path, "subArray", "element not found")
	}

	doc := &Document{Path: path, tree: tree}

	scanID, ok, err := intAttr(subArray, "scanId")
	if err != nil || !ok {
		return nil, core.NewValueError(path, "invalid or missing scanId on subArray")
	}
	doc.ScanID = scanID

	doc.ConfigID = subArray.SelectAttrValue("configId", "")
	m := scanSuffixPattern.FindStringSubmatch(doc.ConfigID)
	if m == nil {
		return nil, core.NewValueError(path, "invalid scan name convention: %q", doc.ConfigID)
	}
	doc.ScanNum, err = strconv.Atoi(m[1])
	if err != nil {
		return nil, core.NewValueError(path, "invalid scan number in %q", doc.ConfigID)
	}

	sio := subArray.SelectElement("stationInputOutput")
	if sio == nil {
		return nil, core.NewParseError(path, "stationInputOutput", "element not found")
	}
	for i, el := range sio.SelectElements("baseBand") {
		bb, err := newBaseband(i, el)
		if err != nil {
			return nil, core.NewValueError(path, "baseband %d: %v", i, err)
		}
		doc.Basebands = append(doc.Basebands, bb)
	}
	return doc, nil
}

// Tree exposes the underlying XML tree for pass-through edits.
func (d *Document) Tree() *etree.Document {
	return d.tree
}

// Baseband returns the baseband at index i.
func (d *Document) Baseband(i int) (Baseband, bool) {
	if i < 0 || i >= len(d.Basebands) {
		return Baseband{}, false
	}
	return d.Basebands[i], true
}

// intAttr parses an optional integer attribute. ok is false when the
// attribute is absent.
func intAttr(e *etree.Element, key string) (v int, ok bool, err error) {
	a := e.SelectAttr(key)
	if a == nil {
		return 0, false, nil
	}
	v, err = strconv.Atoi(a.Value)
	if err != nil {
		return 0, true, fmt.Errorf("attribute %s: invalid integer %q", key, a.Value)
	}
	return v, true, nil
}

// floatAttr parses an optional float attribute.
func floatAttr(e *etree.Element, key string) (v float64, ok bool, err error) {
	a := e.SelectAttr(key)
	if a == nil {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(a.Value, 64)
	if err != nil {
		return 0, true, fmt.Errorf("attribute %s: invalid number %q", key, a.Value)
	}
	return v, true, nil
}

func requireInt(e *etree.Element, key string) (int, error) {
	v, ok, err := intAttr(e, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("missing attribute %s", key)
	}
	return v, nil
}

func requireFloat(e *etree.Element, key string) (float64, error) {
	v, ok, err := floatAttr(e, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("missing attribute %s", key)
	}
	return v, nil
}

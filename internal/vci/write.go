package vci

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// Namespace is the prefix VCI elements live under.
const Namespace = "widar"

const declaration = `version="1.0" encoding="UTF-8" standalone="yes"`

// Element returns the first element matching an etree path expression
// relative to the root, e.g. "./subArray/stationInputOutput/baseBand[1]".
func (d *Document) Element(path string) *etree.Element {
	root := d.tree.Root()
	if root == nil {
		return nil
	}
	return root.FindElement(path)
}

// Add appends a new element named tag under parent in the document's
// widar namespace.
func (d *Document) Add(parent *etree.Element, tag string) *etree.Element {
	return parent.CreateElement(d.prefix() + tag)
}

// GetAdd returns the child of parent named tag, creating it if needed.
func (d *Document) GetAdd(parent *etree.Element, tag string) *etree.Element {
	if child := parent.SelectElement(tag); child != nil {
		return child
	}
	return d.Add(parent, tag)
}

func (d *Document) prefix() string {
	root := d.tree.Root()
	if root == nil {
		return ""
	}
	if root.SelectAttr("xmlns:"+Namespace) != nil || root.Space == Namespace {
		return Namespace + ":"
	}
	if root.Space != "" {
		return root.Space + ":"
	}
	return ""
}

// WriteTo writes the document pretty-printed as UTF-8 with a standalone
// declaration.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	root := d.tree.Root()
	if root == nil {
		return 0, fmt.Errorf("vci document %s has no root", d.Path)
	}
	out := etree.NewDocument()
	out.CreateProcInst("xml", declaration)
	out.SetRoot(root.Copy())
	out.Indent(2)
	return out.WriteTo(w)
}

// Write writes the document to path. See WriteTo.
func (d *Document) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := d.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Summary is a human-readable dump of the baseband and subband layout.
func (d *Document) Summary() string {
	var sb strings.Builder
	sb.WriteString(d.Path)
	sb.WriteByte('\n')
	for _, bb := range d.Basebands {
		fmt.Fprintf(&sb, "  %s\n", bb)
		for _, sub := range bb.Subbands {
			fmt.Fprintf(&sb, "    %s\n", sub)
		}
	}
	return sb.String()
}

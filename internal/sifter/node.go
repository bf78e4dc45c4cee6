// Package sifter parses a Sifter project export into a generic XML node
// tree and provides nil-safe typed accessors over it. Every type coercion
// in the pipeline happens here; downstream packages only see already-typed
// scalars or absence.
package sifter

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Node is one element of the export document. The export schema is open:
// every child element and attribute is captured generically rather than
// bound to a struct per element name.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Nodes    []Node     `xml:",any"`
	CharData string     `xml:",chardata"`
}

// attr returns the value of the named attribute, or "" if unset.
func (n *Node) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Child returns the first direct child element with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == name {
			return &n.Nodes[i]
		}
	}
	return nil
}

// Children returns all direct child elements with the given name, in
// document order.
func (n *Node) Children(name string) []*Node {
	var out []*Node
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == name {
			out = append(out, &n.Nodes[i])
		}
	}
	return out
}

// Descendants returns every element with the given name anywhere below n,
// in document order.
func (n *Node) Descendants(name string) []*Node {
	var out []*Node
	for i := range n.Nodes {
		c := &n.Nodes[i]
		if c.XMLName.Local == name {
			out = append(out, c)
		}
		out = append(out, c.Descendants(name)...)
	}
	return out
}

// Text returns the text content of the named child field. The second
// return is false when the field is absent: no such child, the child
// carries the export's nil="true" marker, or the child is empty.
func (n *Node) Text(name string) (string, bool) {
	c := n.Child(name)
	if c == nil || c.attr("nil") == "true" || c.CharData == "" {
		return "", false
	}
	return c.CharData, true
}

// Int returns the integer content of the named child field, with the same
// absence rule as Text. Fields carrying non-numeric text are treated as
// absent.
func (n *Node) Int(name string) (int, bool) {
	s, ok := n.Text(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Document is a parsed export.
type Document struct {
	root Node
}

// Parse reads and parses an export document. A document that cannot be
// parsed at all is fatal to the run.
func Parse(r io.Reader) (*Document, error) {
	var d Document
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&d.root); err != nil {
		return nil, fmt.Errorf("parsing export document: %w", err)
	}
	return &d, nil
}

// Milestones returns every milestone element under a milestones container,
// in document order.
func (d *Document) Milestones() []*Node {
	var out []*Node
	for _, m := range d.root.Descendants("milestones") {
		out = append(out, m.Children("milestone")...)
	}
	return out
}

// Categories returns every category element under a categories container,
// in document order.
func (d *Document) Categories() []*Node {
	var out []*Node
	for _, c := range d.root.Descendants("categories") {
		out = append(out, c.Children("category")...)
	}
	return out
}

// Issues returns every issue element in the document, in document order.
// Each issue holds its ordered comment children; comments hold any
// attachment children.
func (d *Document) Issues() []*Node {
	return d.root.Descendants("issue")
}

package lims

import (
	"context"
	"encoding/xml"
	"strings"

	"github.com/CognitoIQ/go-clarity/nsmap"
	"github.com/CognitoIQ/go-clarity/xmltree"
)

// Tag converts "name" or a prefixed tag such as "udf:field" to an
// xml.Name. It panics on unknown prefixes, and is meant for
// package-level descriptor tables.
func Tag(qname string) xml.Name {
	if strings.Contains(qname, ":") {
		return nsmap.MustResolve(qname)
	}
	return xml.Name{Local: qname}
}

// A Nesting is the chain of element names leading from a document
// root to the element that holds a field.
type Nesting []xml.Name

// Nest builds a Nesting from tag names accepted by Tag.
func Nest(tags ...string) Nesting {
	if len(tags) == 0 {
		return nil
	}
	n := make(Nesting, len(tags))
	for i, t := range tags {
		n[i] = Tag(t)
	}
	return n
}

// find walks the nesting from root. It returns nil if an intermediate
// element is missing.
func (n Nesting) find(root *xmltree.Element) *xmltree.Element {
	el := root
	for _, name := range n {
		if el = child(el, name); el == nil {
			return nil
		}
	}
	return el
}

// ensure walks the nesting from root, appending any missing
// intermediate elements.
func (n Nesting) ensure(root *xmltree.Element) *xmltree.Element {
	el := root
	for _, name := range n {
		next := child(el, name)
		if next == nil {
			next = el.NewChild(name)
		}
		el = next
	}
	return el
}

func child(el *xmltree.Element, name xml.Name) *xmltree.Element {
	for _, c := range el.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func children(el *xmltree.Element, name xml.Name) []*xmltree.Element {
	var result []*xmltree.Element
	for _, c := range el.Children {
		if c.Name == name {
			result = append(result, c)
		}
	}
	return result
}

// node addresses the element backing a field: the element named tag
// below the nesting, or the nesting target itself when tag is empty.
type node struct {
	tag     xml.Name
	nesting Nesting
}

func (n node) parent(e *Entity, create bool) *xmltree.Element {
	if e.root == nil {
		return nil
	}
	if create {
		return n.nesting.ensure(e.root)
	}
	return n.nesting.find(e.root)
}

func (n node) element(e *Entity, create bool) *xmltree.Element {
	p := n.parent(e, create)
	if p == nil || n.tag.Local == "" {
		return p
	}
	el := child(p, n.tag)
	if el == nil && create {
		el = p.NewChild(n.tag)
	}
	return el
}

func (n node) field() string {
	if n.tag.Local == "" {
		return "root"
	}
	return nsmap.QName(n.tag)
}

// load returns the entity of r after making sure its document is
// present.
func load(ctx context.Context, r Resource) (*Entity, error) {
	e := r.Base()
	if err := e.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

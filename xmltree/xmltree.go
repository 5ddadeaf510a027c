// Package xmltree represents XML documents as a mutable tree of Go structs.
//
// The xmltree package provides routines for reading an XML document
// into a tree, editing it in place, and writing it back out. Element
// names carry canonical namespace URIs; namespace prefixes are only
// chosen again when the tree is encoded.
package xmltree // import "github.com/CognitoIQ/go-clarity/xmltree"

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

const recursionLimit = 3000

var errDeepXML = errors.New("xmltree: xml document too deeply nested")

// An Element represents a single element in an XML document. Elements
// may have zero or more children. Children are held by pointer, so a
// reference to a child stays valid while its siblings are added or
// removed. An Element also captures xml namespace prefixes, so that
// arbitrary QNames in attribute values can be resolved.
type Element struct {
	xml.StartElement
	// Character data directly inside the element. For elements
	// with children, whitespace-only text is dropped.
	Text     string
	Children []*Element
	// A list of defined XML namespace prefixes, from least specific to
	// most specific. The Space field is the canonical xml namespace,
	// and the Local field is the prefix.
	Scope []xml.Name
}

// New creates a detached element with the given name and attributes.
func New(name xml.Name, attrs ...xml.Attr) *Element {
	el := &Element{StartElement: xml.StartElement{Name: name}}
	if len(attrs) > 0 {
		el.StartElement.Attr = append([]xml.Attr(nil), attrs...)
	}
	return el
}

// Attr gets the value of the first attribute whose name matches the
// space and local arguments. If space is the empty string, only
// attributes' local names are considered when looking for a match.
// If an attribute could not be found, the empty string is returned.
func (el *Element) Attr(space, local string) string {
	v, _ := el.LookupAttr(space, local)
	return v
}

// LookupAttr is like Attr, but reports whether the attribute was present.
func (el *Element) LookupAttr(space, local string) (string, bool) {
	for _, v := range el.StartElement.Attr {
		if v.Name.Local != local {
			continue
		}
		if space == "" || space == v.Name.Space {
			return v.Value, true
		}
	}
	return "", false
}

// SetAttr adds an XML attribute to an Element's existing Attributes.
// If the attribute already exists, it is replaced.
func (el *Element) SetAttr(space, local, value string) {
	for i, a := range el.StartElement.Attr {
		if a.Name.Local != local {
			continue
		}
		if space == "" || a.Name.Space == space {
			el.StartElement.Attr[i].Value = value
			return
		}
	}
	el.StartElement.Attr = append(el.StartElement.Attr, xml.Attr{
		Name:  xml.Name{Space: space, Local: local},
		Value: value,
	})
}

// RemoveAttr deletes every attribute matching space and local, with
// the same matching rules as Attr.
func (el *Element) RemoveAttr(space, local string) {
	attrs := el.StartElement.Attr[:0]
	for _, a := range el.StartElement.Attr {
		if a.Name.Local == local && (space == "" || a.Name.Space == space) {
			continue
		}
		attrs = append(attrs, a)
	}
	el.StartElement.Attr = attrs
}

// Is reports whether the element's name matches. An empty space
// matches any namespace.
func (el *Element) Is(space, local string) bool {
	if el.Name.Local != local {
		return false
	}
	return space == "" || space == el.Name.Space
}

// Child returns the first direct child named by space and local, or nil.
func (el *Element) Child(space, local string) *Element {
	for _, c := range el.Children {
		if c.Is(space, local) {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns the direct children named by space and local,
// in document order.
func (el *Element) ChildrenNamed(space, local string) []*Element {
	var result []*Element
	for _, c := range el.Children {
		if c.Is(space, local) {
			result = append(result, c)
		}
	}
	return result
}

// ChildText returns the text of the first direct child with the given
// name, and whether such a child exists.
func (el *Element) ChildText(space, local string) (string, bool) {
	c := el.Child(space, local)
	if c == nil {
		return "", false
	}
	return c.Text, true
}

// AppendChild adds child as the last child of el and returns child.
func (el *Element) AppendChild(child *Element) *Element {
	el.Children = append(el.Children, child)
	return child
}

// NewChild creates an element with the given name, appends it to
// el, and returns it.
func (el *Element) NewChild(name xml.Name, attrs ...xml.Attr) *Element {
	return el.AppendChild(New(name, attrs...))
}

// InsertChild inserts child at position i among el's children. An
// index past the end appends.
func (el *Element) InsertChild(i int, child *Element) {
	if i < 0 {
		i = 0
	}
	if i >= len(el.Children) {
		el.Children = append(el.Children, child)
		return
	}
	el.Children = append(el.Children, nil)
	copy(el.Children[i+1:], el.Children[i:])
	el.Children[i] = child
}

// Index returns the position of child among el's children, or -1.
func (el *Element) Index(child *Element) int {
	for i, c := range el.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// RemoveChild removes child from el. It reports whether child was found.
func (el *Element) RemoveChild(child *Element) bool {
	i := el.Index(child)
	if i < 0 {
		return false
	}
	copy(el.Children[i:], el.Children[i+1:])
	el.Children[len(el.Children)-1] = nil
	el.Children = el.Children[:len(el.Children)-1]
	return true
}

// Copy returns a deep copy of el.
func (el *Element) Copy() *Element {
	dup := &Element{
		StartElement: el.StartElement.Copy(),
		Text:         el.Text,
		Scope:        el.Scope[:len(el.Scope):len(el.Scope)],
	}
	if len(el.Children) > 0 {
		dup.Children = make([]*Element, len(el.Children))
		for i, c := range el.Children {
			dup.Children[i] = c.Copy()
		}
	}
	return dup
}

// Unmarshal parses the XML encoding of the Element and stores the result
// in the value pointed to by v. Unmarshal follows the same rules as
// xml.Unmarshal, and sees any modifications made to the tree.
func (el *Element) Unmarshal(v interface{}) error {
	return xml.Unmarshal(Marshal(el), v)
}

// Resolve translates an XML QName (namespace-prefixed string) to an
// xml.Name with a canonicalized namespace in its Space field. If qname
// does not have a prefix, the default namespace is used. If a namespace
// prefix cannot be resolved, the returned value's Space field will be the
// unresolved prefix. Use the ResolveNS function to detect when a namespace
// prefix cannot be resolved.
func (el *Element) Resolve(qname string) xml.Name {
	name, _ := el.ResolveNS(qname)
	return name
}

// The ResolveNS method is like Resolve, but returns false for its second
// return value if a namespace prefix cannot be resolved.
func (el *Element) ResolveNS(qname string) (xml.Name, bool) {
	var prefix, local string
	parts := strings.SplitN(qname, ":", 2)
	if len(parts) == 2 {
		prefix, local = parts[0], parts[1]
	} else {
		prefix, local = "", parts[0]
	}
	for i := len(el.Scope) - 1; i >= 0; i-- {
		if el.Scope[i].Local == prefix {
			return xml.Name{Space: el.Scope[i].Space, Local: local}, true
		}
	}
	return xml.Name{Space: prefix, Local: local}, false
}

// Prefix is the inverse of Resolve. It uses the closest prefix
// defined for a namespace to create a string of the form
// prefix:local. If the namespace cannot be found, an empty string
// is returned.
func (el *Element) Prefix(name xml.Name) (qname string) {
	for i := len(el.Scope) - 1; i >= 0; i-- {
		if el.Scope[i].Space == name.Space {
			return el.Scope[i].Local + ":" + name.Local
		}
	}
	return ""
}

func (el *Element) pushNS(tag xml.StartElement) {
	var scope []xml.Name
	for _, attr := range tag.Attr {
		if attr.Name.Space == "xmlns" {
			scope = append(scope, xml.Name{Space: attr.Value, Local: attr.Name.Local})
		} else if attr.Name.Local == "xmlns" {
			scope = append(scope, xml.Name{Space: attr.Value})
		}
	}
	if len(scope) > 0 {
		el.Scope = append(el.Scope, scope...)
		// Ensure that future additions to the scope create
		// a new backing array. This prevents the scope from
		// being clobbered during parsing.
		el.Scope = el.Scope[:len(el.Scope):len(el.Scope)]
	}
}

// Save some typing when scanning xml
type scanner struct {
	*xml.Decoder
	tok xml.Token
	err error
}

func (s *scanner) scan() bool {
	if s.err != nil {
		return false
	}
	s.tok, s.err = s.Token()
	return s.err == nil
}

// Parse builds a tree of Elements by reading an XML document.  The
// byte slice passed to Parse is expected to be a valid XML document
// with a single root element.
func Parse(doc []byte) (*Element, error) {
	return Decode(bytes.NewReader(doc))
}

// Decode is like Parse, but reads the document from r. Documents
// declaring a non-UTF-8 encoding are converted to UTF-8.
func Decode(r io.Reader) (*Element, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	scanner := scanner{Decoder: d}
	root := new(Element)

	for scanner.scan() {
		if start, ok := scanner.tok.(xml.StartElement); ok {
			root.StartElement = start.Copy()
			break
		}
	}
	if scanner.err != nil {
		if scanner.err == io.EOF {
			return nil, errors.New("xmltree: document has no root element")
		}
		return nil, scanner.err
	}
	if err := root.parse(&scanner, 0); err != nil {
		return nil, err
	}
	return root, nil
}

func (el *Element) parse(scanner *scanner, depth int) error {
	if depth > recursionLimit {
		return errDeepXML
	}
	el.pushNS(el.StartElement)

	var text strings.Builder
walk:
	for scanner.scan() {
		switch tok := scanner.tok.(type) {
		case xml.StartElement:
			child := &Element{StartElement: tok.Copy(), Scope: el.Scope}
			if err := child.parse(scanner, depth+1); err != nil {
				return err
			}
			el.Children = append(el.Children, child)
		case xml.CharData:
			text.Write(tok)
		case xml.EndElement:
			if tok.Name != el.Name {
				return fmt.Errorf("Expecting </%s>, got </%s>", el.Prefix(el.Name), el.Prefix(tok.Name))
			}
			break walk
		}
	}
	if scanner.err != nil {
		if scanner.err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return scanner.err
	}
	el.Text = text.String()
	if len(el.Children) > 0 && strings.TrimSpace(el.Text) == "" {
		el.Text = ""
	}
	return nil
}

// walkFunc is the type of the function called for each of an Element's
// children.
type walkFunc func(*Element)

// The walk method calls the walkFunc for each of the Element's children.
func (el *Element) walk(fn walkFunc) {
	for _, c := range el.Children {
		fn(c)
	}
}

// SearchFunc traverses the Element tree in depth-first order and returns
// a slice of Elements for which the function fn returns true. Note that
// SearchFunc does not search the children of Elements that match the search;
// there is no parent-child relationship between the Elements returned in
// the result.
func (root *Element) SearchFunc(fn func(*Element) bool) []*Element {
	var results []*Element
	var search func(el *Element)

	search = func(el *Element) {
		if fn(el) {
			results = append(results, el)
			return
		}
		el.walk(search)
	}
	root.walk(search)
	return results
}

// Search searches the Element tree for Elements with an xml tag
// matching the name and xml namespace. If space is the empty string,
// any namespace is matched.
func (root *Element) Search(space, local string) []*Element {
	return root.SearchFunc(func(el *Element) bool {
		return el.Is(space, local)
	})
}

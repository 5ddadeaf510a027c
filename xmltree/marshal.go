package xmltree

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// A Prefixer chooses the prefix for a namespace that is not declared
// in the scope of any element using it. The xmltree package generates
// a prefix when a Prefixer is nil or returns false.
type Prefixer func(space string) (prefix string, ok bool)

// Marshal produces the XML encoding of an Element as a self-contained
// document. All namespaces used in the tree are declared on the root
// element, reusing the prefixes found in the elements' scopes.
func Marshal(el *Element) []byte {
	return MarshalPrefixed(el, nil)
}

// MarshalPrefixed is like Marshal, but consults fn for namespaces that
// have no prefix in scope.
func MarshalPrefixed(el *Element, fn Prefixer) []byte {
	var buf bytes.Buffer
	if err := EncodePrefixed(&buf, el, fn); err != nil {
		// bytes.Buffer.Write should never return an error
		panic(err)
	}
	return buf.Bytes()
}

// Encode writes the XML encoding of the Element to w.
// Encode returns any errors encountered writing to w.
func Encode(w io.Writer, el *Element) error {
	return EncodePrefixed(w, el, nil)
}

// EncodePrefixed is like Encode, but consults fn for namespaces that
// have no prefix in scope.
func EncodePrefixed(w io.Writer, el *Element, fn Prefixer) error {
	bw := bufio.NewWriter(w)
	enc := encoder{w: bw, prefixes: make(map[string]string), bound: make(map[string]string)}
	enc.assign(el, fn, 0)
	if err := enc.encode(el, 0); err != nil {
		return err
	}
	return bw.Flush()
}

// String returns the XML encoding of an Element
// and its children as a string.
func (el *Element) String() string {
	return string(Marshal(el))
}

type encoder struct {
	w *bufio.Writer
	// namespace -> prefix
	prefixes map[string]string
	// prefix -> namespace
	bound map[string]string
	gen   int
}

// assign picks a prefix for every namespace used in the tree. The
// default namespace is never used on output, so unqualified
// elements keep their meaning wherever they are placed.
func (e *encoder) assign(el *Element, fn Prefixer, depth int) {
	if depth > recursionLimit {
		return
	}
	e.bind(el, el.Name.Space, fn)
	for _, a := range el.StartElement.Attr {
		if isNSDecl(a.Name) {
			continue
		}
		e.bind(el, a.Name.Space, fn)
	}
	for _, c := range el.Children {
		e.assign(c, fn, depth+1)
	}
}

func (e *encoder) bind(el *Element, space string, fn Prefixer) {
	if space == "" || space == xmlNamespace {
		return
	}
	if _, ok := e.prefixes[space]; ok {
		return
	}
	try := func(prefix string) bool {
		if prefix == "" || prefix == "xml" || prefix == "xmlns" {
			return false
		}
		if _, taken := e.bound[prefix]; taken {
			return false
		}
		e.prefixes[space] = prefix
		e.bound[prefix] = space
		return true
	}
	for i := len(el.Scope) - 1; i >= 0; i-- {
		if el.Scope[i].Space == space && try(el.Scope[i].Local) {
			return
		}
	}
	if fn != nil {
		if prefix, ok := fn(space); ok && try(prefix) {
			return
		}
	}
	for {
		e.gen++
		if try("ns" + strconv.Itoa(e.gen)) {
			return
		}
	}
}

func isNSDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}

func (e *encoder) qname(name xml.Name) string {
	switch name.Space {
	case "":
		return name.Local
	case xmlNamespace:
		return "xml:" + name.Local
	}
	return e.prefixes[name.Space] + ":" + name.Local
}

func (e *encoder) encode(el *Element, depth int) error {
	if depth > recursionLimit {
		// We only return I/O errors
		return nil
	}
	tag := e.qname(el.Name)
	e.w.WriteByte('<')
	e.w.WriteString(tag)
	for _, a := range el.StartElement.Attr {
		if isNSDecl(a.Name) {
			continue
		}
		e.writeAttr(e.qname(a.Name), a.Value)
	}
	if depth == 0 {
		spaces := make([]string, 0, len(e.prefixes))
		for space := range e.prefixes {
			spaces = append(spaces, space)
		}
		sort.Strings(spaces)
		for _, space := range spaces {
			e.writeAttr("xmlns:"+e.prefixes[space], space)
		}
	}
	if el.Text == "" && len(el.Children) == 0 {
		_, err := e.w.WriteString("/>")
		return err
	}
	e.w.WriteByte('>')
	if err := xml.EscapeText(e.w, []byte(el.Text)); err != nil {
		return err
	}
	for _, child := range el.Children {
		if err := e.encode(child, depth+1); err != nil {
			return err
		}
	}
	e.w.WriteString("</")
	e.w.WriteString(tag)
	_, err := e.w.WriteString(">")
	return err
}

func (e *encoder) writeAttr(name, value string) {
	e.w.WriteByte(' ')
	e.w.WriteString(name)
	e.w.WriteString(`="`)
	xml.EscapeText(e.w, []byte(value))
	e.w.WriteByte('"')
}

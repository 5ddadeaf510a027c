package xmltree

import (
	"encoding/xml"
	"sort"
	"strings"
)

// Equal returns true if two xmltree.Elements are equal, ignoring
// differences in white space, sub-element order, and namespace prefixes.
func Equal(a, b *Element) bool {
	return equal(a, b, 0)
}

func byName(children []*Element) []*Element {
	sorted := append([]*Element(nil), children...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name.Space+sorted[i].Name.Local < sorted[j].Name.Space+sorted[j].Name.Local
	})
	return sorted
}

func equal(a, b *Element, depth int) bool {
	const maxDepth = 1000
	if depth > maxDepth {
		return false
	}
	if !equalElement(a, b) {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	if len(a.Children) == 0 {
		return strings.TrimSpace(a.Text) == strings.TrimSpace(b.Text)
	}
	ac, bc := byName(a.Children), byName(b.Children)
	for i := range ac {
		if !equal(ac[i], bc[i], depth+1) {
			return false
		}
	}
	return true
}

func attrMap(el *Element) map[xml.Name]string {
	attrs := make(map[xml.Name]string)
	for _, a := range el.StartElement.Attr {
		if isNSDecl(a.Name) {
			continue
		}
		attrs[a.Name] = a.Value
	}
	return attrs
}

func equalElement(a, b *Element) bool {
	if a.Name != b.Name {
		return false
	}
	aa, ba := attrMap(a), attrMap(b)
	if len(aa) != len(ba) {
		return false
	}
	for name, v := range aa {
		if w, ok := ba[name]; !ok || v != w {
			return false
		}
	}
	return true
}

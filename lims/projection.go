package lims

import (
	"github.com/CognitoIQ/go-clarity/internal/ordered"
	"github.com/CognitoIQ/go-clarity/xmltree"
)

// A dictSource knows how a set of elements maps to key/value pairs.
type dictSource[V any] interface {
	// scan returns the element holding the entries and the entry
	// elements, creating the holder if create is set.
	scan(e *Entity, create bool) (parent *xmltree.Element, elems []*xmltree.Element)
	key(el *xmltree.Element) string
	parse(e *Entity, el *xmltree.Element) (V, error)
	// update rewrites an existing entry element.
	update(e *Entity, el *xmltree.Element, key string, v V) error
	// create builds the element for a new entry; it must not touch
	// the tree.
	create(e *Entity, key string, v V) (*xmltree.Element, error)
}

// A Dict is a live view of a set of elements, one entry per element.
// Every mutator edits the document and then re-reads the entries from
// it, so the view never holds values the document does not.
type Dict[V any] struct {
	owner  *Entity
	src    dictSource[V]
	elems  []*xmltree.Element
	keys   []string
	values map[string]V
}

func newDict[V any](owner *Entity, src dictSource[V]) (*Dict[V], error) {
	d := &Dict[V]{owner: owner, src: src}
	if err := d.rescan(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dict[V]) rescan() error {
	_, elems := d.src.scan(d.owner, false)
	keys := make([]string, 0, len(elems))
	values := make(map[string]V, len(elems))
	kept := make([]*xmltree.Element, 0, len(elems))
	for _, el := range elems {
		k := d.src.key(el)
		if _, dup := values[k]; dup {
			continue
		}
		v, err := d.src.parse(d.owner, el)
		if err != nil {
			return err
		}
		keys = append(keys, k)
		values[k] = v
		kept = append(kept, el)
	}
	d.elems, d.keys, d.values = kept, keys, values
	return nil
}

func (d *Dict[V]) find(elems []*xmltree.Element, key string) *xmltree.Element {
	for _, el := range elems {
		if d.src.key(el) == key {
			return el
		}
	}
	return nil
}

// Len returns the number of entries.
func (d *Dict[V]) Len() int { return len(d.keys) }

// Keys returns the keys in document order.
func (d *Dict[V]) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Get returns the value for key.
func (d *Dict[V]) Get(key string) (V, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Dict[V]) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Items returns a copy of the entries.
func (d *Dict[V]) Items() map[string]V {
	m := make(map[string]V, len(d.values))
	for k, v := range d.values {
		m[k] = v
	}
	return m
}

// Set stores v under key. An existing entry is rewritten in place;
// otherwise a new element is appended.
func (d *Dict[V]) Set(key string, v V) error {
	parent, elems := d.src.scan(d.owner, true)
	if el := d.find(elems, key); el != nil {
		if err := d.src.update(d.owner, el, key, v); err != nil {
			return err
		}
	} else {
		el, err := d.src.create(d.owner, key, v)
		if err != nil {
			return err
		}
		parent.AppendChild(el)
	}
	return d.rescan()
}

// Update stores every entry of m, in key order.
func (d *Dict[V]) Update(m map[string]V) error {
	return ordered.Range(m, d.Set)
}

// Delete removes the element holding key. It returns a
// *KeyNotFoundError if there is none.
func (d *Dict[V]) Delete(key string) error {
	parent, elems := d.src.scan(d.owner, false)
	var el *xmltree.Element
	if parent != nil {
		el = d.find(elems, key)
	}
	if el == nil {
		return &KeyNotFoundError{Key: key}
	}
	parent.RemoveChild(el)
	return d.rescan()
}

// Clear removes every entry element.
func (d *Dict[V]) Clear() error {
	parent, elems := d.src.scan(d.owner, false)
	for _, el := range elems {
		parent.RemoveChild(el)
	}
	return d.rescan()
}

// A listSource knows how a sequence of elements maps to list items.
type listSource[V any] interface {
	scan(e *Entity, create bool) (parent *xmltree.Element, elems []*xmltree.Element)
	parse(e *Entity, el *xmltree.Element) (V, error)
	// build creates the element for an item; it must not touch the
	// tree.
	build(e *Entity, v V) (*xmltree.Element, error)
}

// A List is a live view of a sequence of same-named elements. Item
// order is document order. Every mutator edits the document and then
// re-reads the items from it.
type List[V any] struct {
	owner *Entity
	src   listSource[V]
	elems []*xmltree.Element
	items []V
}

func newList[V any](owner *Entity, src listSource[V]) (*List[V], error) {
	l := &List[V]{owner: owner, src: src}
	if err := l.rescan(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *List[V]) rescan() error {
	_, elems := l.src.scan(l.owner, false)
	items := make([]V, 0, len(elems))
	for _, el := range elems {
		v, err := l.src.parse(l.owner, el)
		if err != nil {
			return err
		}
		items = append(items, v)
	}
	l.elems, l.items = elems, items
	return nil
}

func (l *List[V]) buildAll(vs []V) ([]*xmltree.Element, error) {
	elems := make([]*xmltree.Element, 0, len(vs))
	for _, v := range vs {
		el, err := l.src.build(l.owner, v)
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
	}
	return elems, nil
}

// Len returns the number of items.
func (l *List[V]) Len() int { return len(l.items) }

// At returns item i. It panics if i is out of range, like a slice.
func (l *List[V]) At(i int) V { return l.items[i] }

// Items returns a copy of the items.
func (l *List[V]) Items() []V {
	return append([]V(nil), l.items...)
}

// Set replaces item i, keeping its position in the document.
func (l *List[V]) Set(i int, v V) error {
	parent, elems := l.src.scan(l.owner, false)
	if i < 0 || i >= len(elems) {
		return &IndexError{Index: i, Len: len(elems)}
	}
	el, err := l.src.build(l.owner, v)
	if err != nil {
		return err
	}
	parent.Children[parent.Index(elems[i])] = el
	return l.rescan()
}

// Insert adds v before item i. Inserting at Len appends.
func (l *List[V]) Insert(i int, v V) error {
	parent, elems := l.src.scan(l.owner, true)
	if i < 0 || i > len(elems) {
		return &IndexError{Index: i, Len: len(elems)}
	}
	el, err := l.src.build(l.owner, v)
	if err != nil {
		return err
	}
	if i == len(elems) {
		parent.AppendChild(el)
	} else {
		parent.InsertChild(parent.Index(elems[i]), el)
	}
	return l.rescan()
}

// Append adds items at the end of the list.
func (l *List[V]) Append(vs ...V) error {
	built, err := l.buildAll(vs)
	if err != nil {
		return err
	}
	parent, _ := l.src.scan(l.owner, true)
	for _, el := range built {
		parent.AppendChild(el)
	}
	return l.rescan()
}

// Extend is Append for a slice.
func (l *List[V]) Extend(vs []V) error {
	return l.Append(vs...)
}

// Concat appends vs and returns the resulting items.
func (l *List[V]) Concat(vs []V) ([]V, error) {
	if err := l.Append(vs...); err != nil {
		return nil, err
	}
	return l.Items(), nil
}

// Delete removes item i.
func (l *List[V]) Delete(i int) error {
	parent, elems := l.src.scan(l.owner, false)
	if i < 0 || i >= len(elems) {
		return &IndexError{Index: i, Len: len(elems)}
	}
	parent.RemoveChild(elems[i])
	return l.rescan()
}

// Clear removes every item.
func (l *List[V]) Clear() error {
	parent, elems := l.src.scan(l.owner, false)
	for _, el := range elems {
		parent.RemoveChild(el)
	}
	return l.rescan()
}

// Replace clears the list and appends vs.
func (l *List[V]) Replace(vs []V) error {
	built, err := l.buildAll(vs)
	if err != nil {
		return err
	}
	parent, elems := l.src.scan(l.owner, true)
	for _, el := range elems {
		parent.RemoveChild(el)
	}
	for _, el := range built {
		parent.AppendChild(el)
	}
	return l.rescan()
}

// tagScan is the scan shared by sources whose entries are the
// children named tag below a nesting.
type tagScan struct{ node }

func (s tagScan) scan(e *Entity, create bool) (*xmltree.Element, []*xmltree.Element) {
	p := s.parent(e, create)
	if p == nil {
		return nil, nil
	}
	return p, children(p, s.tag)
}
